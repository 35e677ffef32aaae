// Package pkgroutine runs named background tasks with a concurrency cap.
//
// Task errors and recovered panics are collected and returned by Wait, so
// shutdown can report what failed in the background.
package pkgroutine
