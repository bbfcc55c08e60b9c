//go:build unix

package fileutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// tryLock makes a single non-blocking flock(2) attempt. Returns false
// without error when the lock is held by another process.
func tryLock(f *os.File, mode LockMode) (bool, error) {
	how := unix.LOCK_SH
	if mode == LockExclusive {
		how = unix.LOCK_EX
	}

	err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if err == unix.EWOULDBLOCK || err == unix.EAGAIN {
		return false, nil
	}
	return false, err
}

// unlock releases the flock. Errors are ignored: the lock is released
// by the kernel when the descriptor closes regardless.
func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
