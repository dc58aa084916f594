package util

import (
	"sync"
)

// GuardedLock is a mutex which is locked via LockGuard, so a function may release the lock early and still have a
// deferred unlock for all its error paths.
type GuardedLock struct {
	lock sync.Mutex
}

func (l *GuardedLock) Guard() LockGuard {
	return MakeLockGuard(&l.lock)
}

func (l *GuardedLock) Lock() LockGuard {
	lock := l.Guard()
	lock.Lock()
	return lock //nolint:govet
}

type LockGuard struct {
	lock   sync.Locker
	locked bool
}

func MakeLockGuard(lock sync.Locker) LockGuard {
	return LockGuard{lock: lock}
}

func (l *LockGuard) Lock() {
	l.lock.Lock()
	l.locked = true
}

func (l *LockGuard) Unlock() {
	l.lock.Unlock()
	l.locked = false
}

// UnlockIfLocked is intended to be deferred right after the lock acquisition.
func (l *LockGuard) UnlockIfLocked() {
	if l.locked {
		l.Unlock()
	}
}
