package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgfile"
	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

// RecordFile persists the record collection as a JSON array in a single file.
type RecordFile struct {
	path  string
	locks Locker
}

func NewRecordFile(path string, locks Locker) *RecordFile {
	return &RecordFile{path: path, locks: locks}
}

// Load returns the persisted collection. A missing, unreadable or corrupt file
// yields an empty collection; only lock acquisition can fail.
func (s *RecordFile) Load(ctx context.Context) ([]entity.Record, error) {
	if err := s.locks.Acquire(ctx, ResourceRecords); err != nil {
		return nil, err
	}
	defer s.locks.Release(ResourceRecords)

	return s.read(ctx), nil
}

// Replace durably swaps the persisted collection for records.
func (s *RecordFile) Replace(ctx context.Context, records []entity.Record) error {
	if err := s.locks.Acquire(ctx, ResourceRecords); err != nil {
		return err
	}
	defer s.locks.Release(ResourceRecords)

	return s.write(ctx, records)
}

// Update holds the records lock across load, fn and replace. Nothing is
// written when fn returns an error.
func (s *RecordFile) Update(ctx context.Context, fn func(records []entity.Record) ([]entity.Record, error)) error {
	if err := s.locks.Acquire(ctx, ResourceRecords); err != nil {
		return err
	}
	defer s.locks.Release(ResourceRecords)

	next, err := fn(s.read(ctx))
	if err != nil {
		return err
	}

	return s.write(ctx, next)
}

func (s *RecordFile) read(ctx context.Context) []entity.Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to read records file, starting empty", "path", s.path, "error", err)
		}
		return []entity.Record{}
	}

	records, degraded, err := entity.DecodeStoredRecords(data)
	if err != nil {
		slog.WarnContext(ctx, "records file is not a json array, starting empty", "path", s.path, "error", err)
		return []entity.Record{}
	}
	for _, d := range degraded {
		if d.Field == "" {
			slog.WarnContext(ctx, "skipping stored element that is not a record",
				"path", s.path, "index", d.Index, "error", d.Err)
			continue
		}
		slog.WarnContext(ctx, "stored field is not a scalar, keeping its json text",
			"path", s.path, "index", d.Index, "field", d.Field)
	}

	return records
}

func (s *RecordFile) write(ctx context.Context, records []entity.Record) error {
	if records == nil {
		records = []entity.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if err := pkgfile.WriteAtomic(s.path, data, 0o644); err != nil {
		slog.ErrorContext(ctx, "failed to write records file", "path", s.path, "error", err)
		return fmt.Errorf("write records: %w", err)
	}

	return nil
}
