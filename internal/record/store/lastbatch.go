package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgfile"
)

type lastBatchDoc struct {
	LastBatchID *string `json:"lastBatchId"`
}

// LastBatchFile persists the last-batch pointer as {"lastBatchId": id|null}.
// The empty string stands for null in the Go API.
type LastBatchFile struct {
	path  string
	locks Locker
}

func NewLastBatchFile(path string, locks Locker) *LastBatchFile {
	return &LastBatchFile{path: path, locks: locks}
}

// Load returns the pointer, or "" when unset or unreadable.
func (s *LastBatchFile) Load(ctx context.Context) (string, error) {
	if err := s.locks.Acquire(ctx, ResourceLastBatch); err != nil {
		return "", err
	}
	defer s.locks.Release(ResourceLastBatch)

	return s.read(ctx), nil
}

// Replace durably stores batchID; "" stores null.
func (s *LastBatchFile) Replace(ctx context.Context, batchID string) error {
	if err := s.locks.Acquire(ctx, ResourceLastBatch); err != nil {
		return err
	}
	defer s.locks.Release(ResourceLastBatch)

	return s.write(ctx, batchID)
}

// Update holds the pointer lock while fn decides the next value. The file is
// only rewritten when fn reports a change.
func (s *LastBatchFile) Update(ctx context.Context, fn func(current string) (next string, changed bool)) error {
	if err := s.locks.Acquire(ctx, ResourceLastBatch); err != nil {
		return err
	}
	defer s.locks.Release(ResourceLastBatch)

	next, changed := fn(s.read(ctx))
	if !changed {
		return nil
	}

	return s.write(ctx, next)
}

func (s *LastBatchFile) read(ctx context.Context) string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to read last batch file", "path", s.path, "error", err)
		}
		return ""
	}

	var doc lastBatchDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.WarnContext(ctx, "last batch file is not valid json", "path", s.path, "error", err)
		return ""
	}
	if doc.LastBatchID == nil {
		return ""
	}

	return *doc.LastBatchID
}

func (s *LastBatchFile) write(ctx context.Context, batchID string) error {
	doc := lastBatchDoc{}
	if batchID != "" {
		doc.LastBatchID = &batchID
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode last batch: %w", err)
	}

	if err := pkgfile.WriteAtomic(s.path, data, 0o644); err != nil {
		slog.ErrorContext(ctx, "failed to write last batch file", "path", s.path, "error", err)
		return fmt.Errorf("write last batch: %w", err)
	}

	return nil
}
