// Package config defines the configuration model consumed by the installer.
//
// [ClusterConfig] is the user-given, validated description of the cluster
// to create. [RunConfig] carries settings of a single create invocation that
// are not part of the cluster's identity (hold the controller, tenant API
// tokens, kubeconfig output path). [Timeouts] holds the attempt and probe
// tuning knobs, overridable through environment variables.
package config
