package pkglock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrBusy is returned when a resource could not be acquired before the
// manager's timeout elapsed.
var ErrBusy = errors.New("lock: resource busy")

// pollInterval is how often a contended OS file lock is retried.
const pollInterval = 10 * time.Millisecond

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout bounds how long Acquire waits. Zero means wait until the
// context is done.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// WithFileLock backs each resource with an advisory lock file
// "<dir>/<name>.lock".
func WithFileLock(dir string) Option {
	return func(m *Manager) {
		m.dir = dir
	}
}

// Manager hands out exclusive ownership of named resources.
type Manager struct {
	mu        sync.Mutex
	resources map[string]*resource
	timeout   time.Duration
	dir       string
}

type resource struct {
	sema chan struct{}
	file *os.File
}

// NewManager returns a Manager with no resources held.
func NewManager(opts ...Option) *Manager {
	m := &Manager{resources: make(map[string]*resource)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) get(name string) *resource {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.resources[name]
	if !ok {
		res = &resource{sema: make(chan struct{}, 1)}
		m.resources[name] = res
	}
	return res
}

// Acquire blocks until name is exclusively held by the caller. It fails with
// ErrBusy when the manager timeout expires, or with the context error when ctx
// is done first. Waiters are not served in any particular order.
func (m *Manager) Acquire(ctx context.Context, name string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	res := m.get(name)
	select {
	case res.sema <- struct{}{}:
	case <-ctx.Done():
		return waitErr(ctx, name)
	}

	if m.dir == "" {
		return nil
	}

	f, err := m.lockFile(ctx, name)
	if err != nil {
		<-res.sema
		return err
	}
	res.file = f

	return nil
}

// Release hands name to the next waiter. It must be called exactly once by
// the caller whose Acquire succeeded; the manager does not track owners, so a
// Release from anyone else frees the holder's slot. Releasing an idle
// resource is a no-op and never adds capacity.
func (m *Manager) Release(name string) {
	res := m.get(name)

	if res.file != nil {
		_ = unlockFile(res.file)
		_ = res.file.Close()
		res.file = nil
	}

	select {
	case <-res.sema:
	default:
	}
}

func (m *Manager) lockFile(ctx context.Context, name string) (*os.File, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("lock: create dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(m.dir, name+".lock"), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock: open %s: %w", name, err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		err := tryLockExclusive(f)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, errWouldBlock) {
			_ = f.Close()
			return nil, fmt.Errorf("lock: flock %s: %w", name, err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			_ = f.Close()
			return nil, waitErr(ctx, name)
		}
	}
}

func waitErr(ctx context.Context, name string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrBusy, name)
	}
	return ctx.Err()
}
