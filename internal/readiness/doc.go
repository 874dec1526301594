// Package readiness decides when a freshly installed cluster is usable from
// the outside.
//
// A Prober polls a single endpoint until it answers as expected. A Gate
// builds the endpoint list for an instance (data API, DD API and UI for
// every tenant) and waits on all of them, one group at a time.
package readiness
