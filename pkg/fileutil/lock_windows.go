//go:build windows

package fileutil

import (
	"os"

	"golang.org/x/sys/windows"
)

// tryLock makes a single non-blocking LockFileEx attempt. Returns
// false without error when the lock is held by another process.
func tryLock(f *os.File, mode LockMode) (bool, error) {
	flags := uint32(windows.LOCKFILE_FAIL_IMMEDIATELY)
	if mode == LockExclusive {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}

	ol := new(windows.Overlapped)
	err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, ol)
	if err == nil {
		return true, nil
	}
	if err == windows.ERROR_LOCK_VIOLATION {
		return false, nil
	}
	return false, err
}

// unlock releases the region locked by tryLock. Errors are ignored:
// the lock is released when the handle closes regardless.
func unlock(f *os.File) {
	ol := new(windows.Overlapped)
	_ = windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol)
}
