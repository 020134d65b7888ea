// Package lock serializes installer runs that share a cache root.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// RetryInterval is how often a blocked Acquire retries the lock.
const RetryInterval = 100 * time.Millisecond

// ErrLocked is returned by TryAcquire when another process holds the lock.
var ErrLocked = errors.New("cache is locked: another neo4j-mcp-installer run may be in progress")

// Lock is an advisory, cross-process lock backed by a file.
// The lock file itself is left on disk after Release.
type Lock struct {
	fl *flock.Flock
}

// Acquire blocks until the lock at path is held or ctx is done.
// Missing parent directories are created.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, RetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire lock: %w", ctx.Err())
	}

	return &Lock{fl: fl}, nil
}

// TryAcquire takes the lock without waiting. It returns ErrLocked if the
// lock is held elsewhere.
func TryAcquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. Calling it more than once is safe.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
