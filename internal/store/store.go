package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Store owns one scope's configuration document: it loads the file,
// serves reads from the in-memory document, and persists every
// mutation atomically under an exclusive lock.
//
// Every mutating call does a full load-modify-save rather than an
// incremental patch. The resulting consistency model is last writer
// wins, never corrupt. The Store is not safe for concurrent use within
// a process; it targets safety across processes.
type Store struct {
	path        string
	lockTimeout time.Duration
	validator   *validator.Validator

	doc *mcp.Config
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets how long lock acquisition may block.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithValidator replaces the validation pipeline used by AddServer.
func WithValidator(v *validator.Validator) Option {
	return func(s *Store) {
		s.validator = v
	}
}

// New creates a Store for the configuration file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		lockTimeout: fileutil.DefaultLockTimeout,
		validator:   validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the configuration file path this store owns.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the configuration file under a shared lock.
// An absent file is ErrNotFound; callers for whom absence is
// acceptable use LoadOrInit instead. Parse and schema failures are
// ErrCorrupted with a human-readable reason.
func (s *Store) Load() (*mcp.Config, error) {
	var data []byte
	err := fileutil.WithLock(s.path, fileutil.LockShared, s.lockTimeout, func() error {
		var readErr error
		data, readErr = fileutil.ReadFileWithLimit(s.path)
		return readErr
	})
	if err != nil {
		switch {
		case errors.Is(err, mcpmerrors.ErrLockTimeout):
			return nil, err
		case errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(mcpmerrors.ErrNotFound, "configuration file %s", s.path)
		case errors.Is(err, os.ErrPermission) || errors.Is(err, mcpmerrors.ErrPermissionDenied):
			return nil, errors.Wrapf(mcpmerrors.ErrPermissionDenied, "reading %s", s.path)
		case errors.Is(err, fileutil.ErrFileTooLarge):
			return nil, errors.Wrapf(mcpmerrors.ErrCorrupted, "%s: %s", s.path, err)
		default:
			return nil, errors.Wrapf(err, "reading %s", s.path)
		}
	}

	cfg := mcp.NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		// Never a silent partial load: a registry that parses as JSON
		// but does not fit the descriptor schema is corruption too.
		return nil, errors.Wrapf(mcpmerrors.ErrCorrupted, "%s: %s", s.path, err)
	}

	s.doc = cfg
	return cfg, nil
}

// LoadOrInit is Load, except an absent file yields an empty document
// instead of ErrNotFound.
func (s *Store) LoadOrInit() (*mcp.Config, error) {
	cfg, err := s.Load()
	if errors.Is(err, mcpmerrors.ErrNotFound) {
		cfg = mcp.NewConfig()
		s.doc = cfg
		return cfg, nil
	}
	return cfg, err
}

// Save serializes the document, recognized fields plus preserved
// unknown fields, and persists it atomically under an exclusive lock.
// The critical section covers only the write+rename, so concurrent
// saves settle on exactly one complete payload.
func (s *Store) Save(cfg *mcp.Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	err := fileutil.WithLock(s.path, fileutil.LockExclusive, s.lockTimeout, func() error {
		return fileutil.AtomicWriteJSON(s.path, cfg)
	})
	if err != nil {
		return err
	}

	s.doc = cfg
	return nil
}

// AddServer validates the descriptor, then inserts it and saves.
// The name must not already be present. On validation failure the
// returned error wraps ErrValidationFailed and the Result carries the
// full issue list; on acceptance the Result still carries any warnings
// for the caller to surface.
func (s *Store) AddServer(name string, server *mcp.Server) (*validator.Result, error) {
	result := s.validator.Validate(name, server)
	if !result.Accepted() {
		return result, errors.Wrapf(mcpmerrors.ErrValidationFailed, "server %q", name)
	}

	cfg, err := s.LoadOrInit()
	if err != nil {
		return result, err
	}

	if _, ok := cfg.Servers[name]; ok {
		return result, errors.Wrapf(mcpmerrors.ErrAlreadyExists, "server %q", name)
	}

	cfg.Servers[name] = server
	if err := s.Save(cfg); err != nil {
		return result, err
	}
	return result, nil
}

// RemoveServer removes a named server and saves. ErrNotFound if the
// name is absent.
func (s *Store) RemoveServer(name string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}

	if _, ok := cfg.Servers[name]; !ok {
		return errors.Wrapf(mcpmerrors.ErrNotFound, "server %q", name)
	}

	delete(cfg.Servers, name)
	return s.Save(cfg)
}

// SetDisabled flips a server's disabled flag and saves. ErrNotFound if
// the name is absent.
func (s *Store) SetDisabled(name string, disabled bool) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}

	srv, ok := cfg.Servers[name]
	if !ok {
		return errors.Wrapf(mcpmerrors.ErrNotFound, "server %q", name)
	}

	srv.Disabled = disabled
	return s.Save(cfg)
}

// GetServer returns the named server from the currently loaded
// document, or nil if absent. Pure in-memory read; callers needing
// freshness call Load first.
func (s *Store) GetServer(name string) *mcp.Server {
	if s.doc == nil {
		return nil
	}
	return s.doc.Servers[name]
}

// Filter narrows ListServers results. Zero value means no filtering.
type Filter struct {
	// Type keeps only servers of the given transport type.
	Type string

	// IncludeDisabled keeps disabled servers in the result.
	IncludeDisabled bool
}

// ListServers returns the subset of the currently loaded document
// matching the filter. Pure in-memory read.
func (s *Store) ListServers(f Filter) map[string]*mcp.Server {
	out := make(map[string]*mcp.Server)
	if s.doc == nil {
		return out
	}
	for name, srv := range s.doc.Servers {
		if f.Type != "" && srv.Type != f.Type {
			continue
		}
		if srv.Disabled && !f.IncludeDisabled {
			continue
		}
		out[name] = srv
	}
	return out
}
