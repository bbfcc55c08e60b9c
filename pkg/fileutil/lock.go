package fileutil

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

// LockMode selects between shared (reader) and exclusive (writer)
// advisory locking.
type LockMode int

const (
	// LockShared permits concurrent holders; used by readers that must
	// not observe a write in progress.
	LockShared LockMode = iota

	// LockExclusive permits a single holder; used around every
	// write+rename critical section.
	LockExclusive
)

// DefaultLockTimeout bounds how long lock acquisition may block.
const DefaultLockTimeout = 5 * time.Second

// lockPollInterval is the delay between non-blocking acquisition
// attempts while waiting for a contended lock.
const lockPollInterval = 10 * time.Millisecond

// lockSuffix is appended to the protected path to form the lock file.
// Locking a dedicated sibling file rather than the target itself means
// the atomic rename in AtomicWriteFile never invalidates a held lock.
const lockSuffix = ".lock"

// LockPath returns the sibling lock file path covering path. Exposed
// so callers deleting a protected file can clean up its lock file too.
func LockPath(path string) string {
	return path + lockSuffix
}

// WithLock acquires an advisory lock covering path, runs fn, and
// releases the lock on every exit path. The lock is advisory: it is
// respected only by cooperating processes that also call WithLock.
//
// Acquisition retries non-blocking attempts until timeout; exceeding
// it returns ErrLockTimeout without running fn. A timeout <= 0 uses
// DefaultLockTimeout.
func WithLock(path string, mode LockMode, timeout time.Duration, fn func() error) error {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	f, err := os.OpenFile(path+lockSuffix, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(mcpmerrors.ErrPermissionDenied, "opening lock file for %s", path)
		}
		return errors.Wrapf(err, "opening lock file for %s", path)
	}
	defer f.Close()

	deadline := time.Now().Add(timeout)
	for {
		acquired, err := tryLock(f, mode)
		if err != nil {
			return errors.Wrapf(err, "locking %s", path)
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return errors.Wrapf(mcpmerrors.ErrLockTimeout,
				"could not acquire %s lock on %s within %s", mode, path, timeout)
		}
		time.Sleep(lockPollInterval)
	}
	defer unlock(f)

	return fn()
}

// String returns the lock mode name for diagnostics.
func (m LockMode) String() string {
	switch m {
	case LockShared:
		return "shared"
	case LockExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}
