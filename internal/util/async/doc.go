// Package async provides a barrier for running named tasks concurrently.
//
// [RunParallel] starts every task, waits for all of them, and returns the
// first error. It is used to fan out readiness probes.
package async
