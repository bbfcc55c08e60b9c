package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// maxIDSuffix bounds same-second collision disambiguation.
const maxIDSuffix = 100

// Manager owns the set of snapshot files in one backup directory.
// It takes documents as input; it never reaches into a store.
type Manager struct {
	dir         string
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithDir sets the snapshot directory.
func WithDir(dir string) Option {
	return func(m *Manager) {
		m.dir = dir
	}
}

// WithLockTimeout sets how long lock acquisition may block.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lockTimeout = d
		}
	}
}

// WithClock replaces the time source. Used by tests to force id
// collisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a snapshot Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		dir:         paths.BackupDir(),
		lockTimeout: fileutil.DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Create snapshots a document. The id is derived from the current
// time at one-second resolution; if a snapshot with that id already
// exists, a -02, -03, ... suffix disambiguates, so bursts of snapshots
// within one second all succeed with distinct ids.
//
// The stored document is a deep copy; later mutation of cfg does not
// affect the snapshot.
func (m *Manager) Create(cfg *mcp.Config, name, reason string) (*Snapshot, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	if err := paths.EnsureDir(m.dir, 0); err != nil {
		return nil, errors.Wrapf(err, "creating backup directory %s", m.dir)
	}

	metadata := map[string]string{}
	if name != "" {
		metadata["name"] = name
	}
	if reason != "" {
		metadata["reason"] = reason
	}

	snap := &Snapshot{
		Timestamp: m.now().UTC(),
		Config:    cfg.Clone(),
		Metadata:  metadata,
	}

	id, err := m.claimID(snap.Timestamp)
	if err != nil {
		return nil, err
	}
	snap.ID = id

	path := m.snapshotPath(id)
	err = fileutil.WithLock(path, fileutil.LockExclusive, m.lockTimeout, func() error {
		return fileutil.AtomicWriteJSON(path, snap)
	})
	if err != nil {
		// Release the claimed id so a retry can reuse it.
		os.Remove(path)
		return nil, err
	}

	return snap, nil
}

// claimID claims the first free id for ts by creating the snapshot
// file with O_EXCL, suffixing on collision. Claiming through the
// filesystem rather than a stat-then-write sequence means two
// processes racing within the same second cannot both end up with the
// same id; the loser of the race moves on to the next suffix.
func (m *Manager) claimID(ts time.Time) (string, error) {
	base := ts.Format(idFormat)
	for n := 1; n < maxIDSuffix; n++ {
		id := base
		if n > 1 {
			id = fmt.Sprintf("%s-%02d", base, n)
		}
		f, err := os.OpenFile(m.snapshotPath(id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			if os.IsPermission(err) {
				return "", errors.Wrapf(mcpmerrors.ErrPermissionDenied, "claiming snapshot id %s", id)
			}
			return "", errors.Wrapf(err, "claiming snapshot id %s", id)
		}
		f.Close()
		return id, nil
	}
	return "", errors.Newf("no free snapshot id for %s after %d attempts", base, maxIDSuffix)
}

// List enumerates snapshots newest-first by id, truncated to limit.
// Unparseable entries are skipped and reported in the second return
// value; one bad file never aborts the listing. A limit <= 0 uses
// DefaultListLimit.
func (m *Manager) List(limit int) ([]Summary, []error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{errors.Wrapf(err, "reading backup directory %s", m.dir)}
	}

	var summaries []Summary
	var failures []error

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")

		snap, err := m.read(id)
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "snapshot %s", id))
			continue
		}
		summaries = append(summaries, Summary{
			ID:        snap.ID,
			Timestamp: snap.Timestamp,
			Servers:   len(snap.Config.Servers),
			Metadata:  snap.Metadata,
		})
	}

	// Ids sort chronologically as strings; suffixed collisions sort
	// after their base, which is creation order.
	slices.SortFunc(summaries, func(a, b Summary) int {
		return strings.Compare(b.ID, a.ID)
	})

	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, failures
}

// Restore returns a deep copy of the document stored in a snapshot.
// It does not write the live configuration; committing the returned
// document is the caller's explicit next step.
func (m *Manager) Restore(id string) (*mcp.Config, error) {
	snap, err := m.read(id)
	if err != nil {
		return nil, err
	}
	return snap.Config.Clone(), nil
}

// Prune deletes old snapshots: those beyond the keep most recent by
// id, plus, when olderThan is positive, any snapshot whose id
// timestamp predates now minus olderThan, regardless of position.
// A zero olderThan disables age-based pruning. Deletion is
// best-effort per file: failures are collected and returned alongside
// the count of snapshots actually removed.
func (m *Manager) Prune(keep int, olderThan time.Duration) (int, []error) {
	if keep < 0 {
		keep = 0
	}

	var cutoff time.Time
	if olderThan > 0 {
		cutoff = m.now().Add(-olderThan)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, []error{errors.Wrapf(err, "reading backup directory %s", m.dir)}
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}

	// Newest first, same ordering as List.
	slices.SortFunc(ids, func(a, b string) int {
		return strings.Compare(b, a)
	})

	removed := 0
	var failures []error
	for i, id := range ids {
		expired := false
		if !cutoff.IsZero() {
			if ts, ok := idTimestamp(id); ok && ts.Before(cutoff) {
				expired = true
			}
		}
		if i < keep && !expired {
			continue
		}
		if err := os.Remove(m.snapshotPath(id)); err != nil {
			failures = append(failures, errors.Wrapf(err, "removing snapshot %s", id))
			continue
		}
		// The lock file is only ever advisory; leftovers are harmless
		// but pointless.
		_ = os.Remove(fileutil.LockPath(m.snapshotPath(id)))
		removed++
	}
	return removed, failures
}

// idTimestamp parses the creation time encoded in a snapshot id,
// ignoring any collision suffix. Ids not derived from the time layout
// report false and are never age-pruned.
func idTimestamp(id string) (time.Time, bool) {
	base := id
	if len(base) > len(idFormat) {
		base = base[:len(idFormat)]
	}
	ts, err := time.ParseInLocation(idFormat, base, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// read loads and parses one snapshot under a shared lock.
func (m *Manager) read(id string) (*Snapshot, error) {
	path := m.snapshotPath(id)

	var data []byte
	err := fileutil.WithLock(path, fileutil.LockShared, m.lockTimeout, func() error {
		var readErr error
		data, readErr = fileutil.ReadFileWithLimit(path)
		return readErr
	})
	if err != nil {
		switch {
		case errors.Is(err, mcpmerrors.ErrLockTimeout):
			return nil, err
		case errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(mcpmerrors.ErrNotFound, "snapshot %s", id)
		case errors.Is(err, os.ErrPermission) || errors.Is(err, mcpmerrors.ErrPermissionDenied):
			return nil, errors.Wrapf(mcpmerrors.ErrPermissionDenied, "snapshot %s", id)
		case errors.Is(err, fileutil.ErrFileTooLarge):
			return nil, errors.Wrapf(mcpmerrors.ErrCorrupted, "snapshot %s: %s", id, err)
		default:
			return nil, errors.Wrapf(err, "reading snapshot %s", id)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(mcpmerrors.ErrCorrupted, "snapshot %s: %s", id, err)
	}
	if snap.Config == nil {
		return nil, errors.Wrapf(mcpmerrors.ErrCorrupted, "snapshot %s: missing config document", id)
	}

	snap.ID = id
	return &snap, nil
}

// snapshotPath returns the file path for a snapshot id.
func (m *Manager) snapshotPath(id string) string {
	return filepath.Join(m.dir, id+".json")
}
