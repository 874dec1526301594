// Package installer creates an opstrace instance.
//
// Installer.Run drives a bounded number of attempts. Each attempt runs the
// provisioning pipeline under a deadline: resolve credentials, adopt the
// infrastructure, write controller and tenant configuration into the
// cluster, deploy the controller, wait for the cluster to converge and
// finally wait for every public endpoint to answer. An attempt either
// completes, fails, or times out; failed and timed out attempts are retried
// after a fixed delay.
package installer
