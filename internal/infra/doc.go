// Package infra resolves provider credentials and adopts the cloud
// infrastructure a cluster runs on.
//
// The provisioner in this package does not create Kubernetes clusters or
// databases itself. It reads the outputs of an out-of-band infrastructure
// run, completes them from the provider APIs, and ensures the few
// resources that are cheap and safe to create idempotently (the tenant
// data buckets on AWS). Calling EnsureInfra repeatedly is always safe.
package infra
