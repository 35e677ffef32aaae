// Package pkglock provides named, per-instance mutual exclusion.
//
// Each resource name maps to its own one-slot semaphore, so holding one
// resource never blocks another. A Manager can optionally back every resource
// with an advisory OS file lock, which serializes separate processes that
// share the same data directory.
package pkglock
