// Package retry provides bounded retry loops for operations that fail transiently.
//
// The [Do] function retries an operation with a configurable number of
// attempts and a fixed delay between them. It drives the
// cluster creation attempts as well as registry lookups.
package retry
