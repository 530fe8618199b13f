package concurrency

import (
	"fmt"
	"sync"
)

// LockManager hands out named mutexes so callers can serialize work on a
// shared key (e.g. one friend-relationship pair) without holding a
// process-wide lock.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns the mutex for the given key, creating it on first use.
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// PairKey builds a canonical key for an unordered user pair. Both
// orderings of the same two users map to the same key.
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("pair:%d:%d", a, b)
}
