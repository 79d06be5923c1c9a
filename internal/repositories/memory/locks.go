package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
)

// lockTable hands out exclusive row locks by key. A lock is a one-slot channel so waiting can
// be bounded by a timeout or the caller's context.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[key] = ch
	}
	return ch
}

// acquire blocks until key is free, failing closed with ErrRetryable on timeout or cancellation.
func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := t.slot(key)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for lock %s: %v", apperrors.ErrRetryable, key, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: lock wait timeout on %s", apperrors.ErrRetryable, key)
	}
}

func (t *lockTable) release(key string) {
	<-t.slot(key)
}
