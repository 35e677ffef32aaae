// Package pkglog configures the process-wide slog logger.
//
// Records are JSON with "ts", "severity" and "file" keys, tagged with the
// service name and, inside a request, the correlation id.
package pkglog
