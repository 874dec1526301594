// Package naming provides consistent names for the cloud and Kubernetes
// resources that belong to an Opstrace cluster.
//
// Cloud resources follow the pattern {cluster}-{purpose} so that several
// clusters can share one account or project. In-cluster objects use fixed
// names because every cluster runs in its own Kubernetes API.
package naming
