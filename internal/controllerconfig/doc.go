// Package controllerconfig assembles and validates the deployment descriptor
// of the in-cluster controller.
//
// A [Config] combines the user's cluster config with the outputs of
// infrastructure creation. It is built fresh for every create attempt and must
// pass [Validate] before it is handed to the cluster.
package controllerconfig
