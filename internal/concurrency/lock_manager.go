package concurrency

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// LockManager hands out one mutex per key and forgets it once nobody holds or waits on it
type LockManager struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[uuid.UUID]*entry)}
}

func (lm *LockManager) acquireEntry(key uuid.UUID) *entry {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	e, ok := lm.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		lm.locks[key] = e
	}
	e.refs++
	return e
}

func (lm *LockManager) releaseEntry(key uuid.UUID, e *entry) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(lm.locks, key)
	}
}

// Lock blocks until the key is held or ctx is done.
// The returned func releases the key and must be called exactly once.
func (lm *LockManager) Lock(ctx context.Context, key uuid.UUID) (func(), error) {
	e := lm.acquireEntry(key)
	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		lm.releaseEntry(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			lm.releaseEntry(key, e)
		})
	}, nil
}

// LockMany acquires several keys in a stable order so two callers never deadlock.
// Duplicate keys are locked once.
func (lm *LockManager) LockMany(ctx context.Context, keys ...uuid.UUID) (func(), error) {
	uniq := make([]uuid.UUID, 0, len(keys))
	seen := make(map[uuid.UUID]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].String() < uniq[j].String() })

	unlocks := make([]func(), 0, len(uniq))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, k := range uniq {
		unlock, err := lm.Lock(ctx, k)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// Len reports how many keys are currently tracked
func (lm *LockManager) Len() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
