// Package pkguid generates identifiers.
//
// Records and batches get time-ordered UUIDv7 strings; mutation events get
// Snowflake numbers, which stay sortable across a cluster of writers.
package pkguid
