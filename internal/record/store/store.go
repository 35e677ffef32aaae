package store

import "context"

// Lock resources guarded by the stores. Callers that need both always take
// ResourceRecords before ResourceLastBatch.
const (
	ResourceRecords   = "records"
	ResourceLastBatch = "lastBatch"
)

// Locker grants exclusive access to a named resource.
type Locker interface {
	Acquire(ctx context.Context, name string) error
	Release(name string)
}
