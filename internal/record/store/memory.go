package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

// InMemoryStore keeps the collection and the last-batch pointer in process
// memory. It honours the same contracts as the file stores, minus durability.
// Each half has its own mutex so holding one never blocks the other.
type InMemoryStore struct {
	recordsMu sync.RWMutex
	records   []entity.Record

	lastBatchMu sync.RWMutex
	lastBatch   string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: []entity.Record{}}
}

// Records exposes the collection half of the store.
func (s *InMemoryStore) Records() *MemoryRecords {
	return &MemoryRecords{s: s}
}

// LastBatch exposes the pointer half of the store.
func (s *InMemoryStore) LastBatch() *MemoryLastBatch {
	return &MemoryLastBatch{s: s}
}

type MemoryRecords struct {
	s *InMemoryStore
}

func (m *MemoryRecords) Load(ctx context.Context) ([]entity.Record, error) {
	m.s.recordsMu.RLock()
	defer m.s.recordsMu.RUnlock()

	return cloneRecords(m.s.records), nil
}

func (m *MemoryRecords) Replace(ctx context.Context, records []entity.Record) error {
	m.s.recordsMu.Lock()
	defer m.s.recordsMu.Unlock()

	m.s.records = cloneRecords(records)
	return nil
}

func (m *MemoryRecords) Update(ctx context.Context, fn func(records []entity.Record) ([]entity.Record, error)) error {
	m.s.recordsMu.Lock()
	defer m.s.recordsMu.Unlock()

	next, err := fn(cloneRecords(m.s.records))
	if err != nil {
		return err
	}

	m.s.records = cloneRecords(next)
	return nil
}

type MemoryLastBatch struct {
	s *InMemoryStore
}

func (m *MemoryLastBatch) Load(ctx context.Context) (string, error) {
	m.s.lastBatchMu.RLock()
	defer m.s.lastBatchMu.RUnlock()

	return m.s.lastBatch, nil
}

func (m *MemoryLastBatch) Replace(ctx context.Context, batchID string) error {
	m.s.lastBatchMu.Lock()
	defer m.s.lastBatchMu.Unlock()

	m.s.lastBatch = batchID
	return nil
}

func (m *MemoryLastBatch) Update(ctx context.Context, fn func(current string) (string, bool)) error {
	m.s.lastBatchMu.Lock()
	defer m.s.lastBatchMu.Unlock()

	if next, changed := fn(m.s.lastBatch); changed {
		m.s.lastBatch = next
	}
	return nil
}

func cloneRecords(records []entity.Record) []entity.Record {
	out := make([]entity.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	return out
}
