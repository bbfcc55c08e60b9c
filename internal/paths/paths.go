package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// Scope identifies one of the well-known configuration file locations.
type Scope string

const (
	// ScopeUser is the user-wide configuration: ~/.claude.json.
	ScopeUser Scope = "user"

	// ScopeProject is the project-shared configuration: ./.mcp.json,
	// typically checked into version control.
	ScopeProject Scope = "project"

	// ScopeLocal is the project-local personal configuration:
	// ./.claude/settings.json.
	ScopeLocal Scope = "local"
)

// Scopes returns all scopes in precedence-agnostic declaration order.
// Precedence between scopes is the caller's concern.
func Scopes() []Scope {
	return []Scope{ScopeUser, ScopeProject, ScopeLocal}
}

// ValidScope reports whether s names a known scope.
func ValidScope(s string) bool {
	switch Scope(s) {
	case ScopeUser, ScopeProject, ScopeLocal:
		return true
	}
	return false
}

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not
	// be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrUnknownScope indicates an unrecognized scope name.
	ErrUnknownScope = errors.New("unknown scope")
)

// DefaultDirPerm is the permission for newly created directories.
const DefaultDirPerm = 0o700

// ConfigPath resolves the configuration file path for a scope.
// Project and local scopes resolve relative to the current working
// directory.
func ConfigPath(scope Scope) (string, error) {
	switch scope {
	case ScopeUser:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
		}
		return filepath.Join(home, ".claude.json"), nil
	case ScopeProject:
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "resolving working directory")
		}
		return filepath.Join(cwd, ".mcp.json"), nil
	case ScopeLocal:
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "resolving working directory")
		}
		return filepath.Join(cwd, ".claude", "settings.json"), nil
	default:
		return "", errors.Wrapf(ErrUnknownScope, "%q", scope)
	}
}

// BackupDir returns the default snapshot directory:
// <XDG data home>/mcpm/backups.
func BackupDir() string {
	return filepath.Join(xdg.DataHome, "mcpm", "backups")
}

// SettingsDir returns the directory for mcpm's own settings file:
// <XDG config home>/mcpm.
func SettingsDir() string {
	return filepath.Join(xdg.ConfigHome, "mcpm")
}

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm is used. Idempotent.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}
