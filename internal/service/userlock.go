package service

import "sync"

// userLocks hands out one mutex per user id so that trades against the same
// account execute strictly one at a time. Locks are created lazily and never
// released back; the expected user population is small enough that this
// doesn't matter.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the user's mutex and returns the unlock function. Callers
// must defer the returned function so the lock is released on every exit
// path, including failures.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
