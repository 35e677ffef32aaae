// Package pkgmetrics owns the prometheus registry exposed on /metrics.
//
// Modules register their collectors through the Registry instead of the
// prometheus default registerer so tests can build isolated registries.
package pkgmetrics
