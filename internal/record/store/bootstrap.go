package store

import (
	"log/slog"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgfile"
)

// Bootstrap creates the record and last-batch files with their empty defaults
// when they do not exist yet. Existing files are left untouched.
func Bootstrap(recordsPath, lastBatchPath string) error {
	created, err := pkgfile.WriteIfAbsent(recordsPath, []byte("[]"), 0o644)
	if err != nil {
		return err
	}
	if created {
		slog.Info("created records file", "path", recordsPath)
	}

	created, err = pkgfile.WriteIfAbsent(lastBatchPath, []byte(`{"lastBatchId":null}`), 0o644)
	if err != nil {
		return err
	}
	if created {
		slog.Info("created last batch file", "path", lastBatchPath)
	}

	return nil
}
