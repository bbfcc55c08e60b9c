// Package fileutil provides the file persistence primitive: atomic
// file replacement and advisory file locking.
package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

// AtomicWriteFile writes data to a file atomically using a temp file +
// fsync + rename pattern. Readers observe either the fully-old or the
// fully-new content, never a mixture; an interrupted write leaves the
// original file intact.
//
// The temp file is created in the same directory as path so the rename
// stays within one filesystem. The caller is responsible for ensuring
// the parent directory exists. Permissions are applied to the final
// file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".mcpm-atomic-*.tmp")
	if err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(mcpmerrors.ErrPermissionDenied, "creating temp file in %s", dir)
		}
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "creating temp file in %s", dir), err)
	}

	// Track temp file name for cleanup; only removed if the rename
	// never happened.
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "writing temp file for %s", path), err)
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "setting permissions for %s", path), err)
	}

	// Force the data to durable storage before the rename becomes the
	// externally observable state transition.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "syncing temp file for %s", path), err)
	}

	if err := tmp.Close(); err != nil {
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "closing temp file for %s", path), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(mcpmerrors.ErrPermissionDenied, "replacing %s", path)
		}
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "replacing %s", path), err)
	}

	return nil
}

// AtomicWriteJSON writes v as indented JSON to path atomically.
// Uses 2-space indentation and appends a trailing newline for POSIX
// compliance. The file is created with 0644 permissions.
func AtomicWriteJSON(path string, v any) error {
	return AtomicWriteJSONWithPerm(path, v, 0o644)
}

// AtomicWriteJSONWithPerm writes v as indented JSON to path atomically
// with the specified permissions.
func AtomicWriteJSONWithPerm(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WithSecondaryError(
			errors.Wrapf(mcpmerrors.ErrWriteFailed, "marshaling JSON for %s", path), err)
	}

	data = append(data, '\n')

	return AtomicWriteFile(path, data, perm)
}
