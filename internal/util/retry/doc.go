// Package retry provides exponential backoff retry logic for transient
// provider API failures.
//
// [WithExponentialBackoff] retries an operation with a configurable number
// of attempts and delays. Errors wrapped with [Fatal] stop the loop at once.
// Provider delete calls use it, classifying not-found and permission errors
// as fatal.
package retry
