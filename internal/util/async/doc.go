// Package async runs independent tasks concurrently.
//
// [RunParallel] is used by the CLI to watch or delete several servers at
// once, either collecting every error or stopping at the first one.
package async
