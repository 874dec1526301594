// Package labels provides consistent labeling for the Kubernetes objects
// the installer creates.
//
// Labels use the well-known app.kubernetes.io keys so the objects can be
// selected by cluster and component.
package labels
