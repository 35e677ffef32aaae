package pkglock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestManagerSerializesSameResource(t *testing.T) {
	m := NewManager()

	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Acquire(context.Background(), "records"); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				cur := atomic.LoadInt32(&maxActive)
				if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			m.Release("records")
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("expected at most one holder, got %d", maxActive)
	}
}

func TestManagerIndependentResources(t *testing.T) {
	m := NewManager(WithTimeout(50 * time.Millisecond))

	if err := m.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire records: %v", err)
	}
	defer m.Release("records")

	if err := m.Acquire(context.Background(), "lastBatch"); err != nil {
		t.Fatalf("Acquire lastBatch while records held: %v", err)
	}
	m.Release("lastBatch")
}

func TestManagerTimeoutReturnsBusy(t *testing.T) {
	m := NewManager(WithTimeout(20 * time.Millisecond))

	if err := m.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer m.Release("records")

	err := m.Acquire(context.Background(), "records")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestManagerContextCanceled(t *testing.T) {
	m := NewManager()

	if err := m.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer m.Release("records")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Acquire(ctx, "records")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestManagerReleaseIdleIsNoop(t *testing.T) {
	m := NewManager(WithTimeout(30 * time.Millisecond))
	m.Release("records")
	m.Release("records")

	if err := m.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire after idle release: %v", err)
	}
	defer m.Release("records")

	if err := m.Acquire(context.Background(), "records"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Acquire = %v, want ErrBusy (idle release must not add a slot)", err)
	}
}

func TestManagerInstancesDoNotInterfere(t *testing.T) {
	a := NewManager()
	b := NewManager(WithTimeout(50 * time.Millisecond))

	if err := a.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	defer a.Release("records")

	if err := b.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire b: %v", err)
	}
	b.Release("records")
}

func TestManagerFileLockAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	a := NewManager(WithFileLock(dir))
	b := NewManager(WithFileLock(dir), WithTimeout(50*time.Millisecond))

	if err := a.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire a: %v", err)
	}

	if err := b.Acquire(context.Background(), "records"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while file lock held, got %v", err)
	}

	a.Release("records")

	if err := b.Acquire(context.Background(), "records"); err != nil {
		t.Fatalf("Acquire b after release: %v", err)
	}
	b.Release("records")
}
