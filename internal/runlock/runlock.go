// Package runlock enforces single-instance execution via an advisory file
// lock, so overlapping syncs cannot double-add notes to the store.
package runlock

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process holds the lock.
var ErrHeld = errors.New("another sync run is already in progress")

// Lock guards a sync run.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. It fails with ErrHeld when
// a concurrent run owns it.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		return nil, errors.New("lock path is required")
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. Safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	return l.fl.Unlock()
}
