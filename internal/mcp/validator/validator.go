// Package validator implements the three-stage validation pipeline for
// server descriptors: shape, business rules, then security. Stages run
// in order and short-circuit on failure; the outcome is always a
// tagged [Result], never a panic or a raw error.
package validator

import (
	"fmt"
	"net/url"
	"os/exec"
	"regexp"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// namePattern is the restricted identifier pattern for server names:
// lowercase letter first, then lowercase letters, digits, hyphen, or
// underscore, 1-64 characters total.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

// reservedNames are rejected regardless of pattern.
var reservedNames = []string{"system", "root", "admin", "config"}

// defaultAllowedCommands is the command allow-list. Commands not on it
// must resolve to an existing executable on the current system.
var defaultAllowedCommands = []string{"uvx", "npx", "node", "python", "python3", "docker"}

// dangerousEnvKeys are environment variables known to affect process
// or library loading. Setting one produces a warning, not a rejection.
var dangerousEnvKeys = []string{
	"PATH",
	"LD_LIBRARY_PATH",
	"LD_PRELOAD",
	"DYLD_LIBRARY_PATH",
	"DYLD_INSERT_LIBRARIES",
	"PYTHONPATH",
	"NODE_PATH",
}

// shellMetacharacters are hard-rejected inside environment values.
// The pipeline only validates identifiers; it never builds a shell
// command line, so a value carrying these is treated as hostile input
// rather than escaped.
const shellMetacharacters = ";&|`$()"

// Result is the outcome of running the pipeline over one descriptor.
type Result struct {
	// Issues holds every finding, errors and warnings both.
	Issues []*Issue
}

// Accepted reports whether the descriptor passed: no error-severity
// issues. A descriptor can be accepted with warnings.
func (r *Result) Accepted() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the error-severity issues.
func (r *Result) Errors() []*Issue {
	var out []*Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns only the warning-severity issues.
func (r *Result) Warnings() []*Issue {
	var out []*Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Option configures a Validator.
type Option func(*Validator)

// WithAllowedCommands replaces the default command allow-list.
func WithAllowedCommands(commands []string) Option {
	return func(v *Validator) {
		v.allowedCommands = commands
	}
}

// WithLookPath replaces the executable resolver. Used by tests and by
// callers that want to disable filesystem lookups entirely.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(v *Validator) {
		v.lookPath = lookPath
	}
}

// Validator runs the validation pipeline.
type Validator struct {
	allowedCommands []string
	lookPath        func(string) (string, error)
}

// New creates a Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{
		allowedCommands: defaultAllowedCommands,
		lookPath:        exec.LookPath,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the pipeline over a named descriptor. Stages run in
// order (shape, rule, security) and a stage with error-severity
// findings stops the stages after it.
func (v *Validator) Validate(name string, server *mcp.Server) *Result {
	r := &Result{}

	r.Issues = append(r.Issues, v.checkShape(server)...)
	if !r.Accepted() {
		return r
	}

	r.Issues = append(r.Issues, v.checkRules(name, server)...)
	if !r.Accepted() {
		return r
	}

	r.Issues = append(r.Issues, v.checkSecurity(server)...)
	return r
}

// checkShape validates structural well-formedness.
func (v *Validator) checkShape(server *mcp.Server) []*Issue {
	if server == nil {
		return []*Issue{{
			Kind:     KindShape,
			Message:  "server descriptor is nil",
			Severity: SeverityError,
		}}
	}

	var issues []*Issue
	if !mcp.ValidType(server.Type) {
		issues = append(issues, &Issue{
			Kind:     KindShape,
			Field:    "type",
			Message:  fmt.Sprintf("type must be one of %s", strings.Join(mcp.Types, ", ")),
			Severity: SeverityError,
			Err:      ErrInvalidType,
		})
	}
	return issues
}

// checkRules validates the name and the cross-field transport
// requirements.
func (v *Validator) checkRules(name string, server *mcp.Server) []*Issue {
	var issues []*Issue

	if !namePattern.MatchString(name) {
		issues = append(issues, &Issue{
			Kind:     KindRule,
			Field:    "name",
			Message:  fmt.Sprintf("name %q must match %s (lowercase, start with letter, 1-64 chars)", name, namePattern),
			Severity: SeverityError,
			Err:      ErrInvalidName,
		})
	} else if slices.Contains(reservedNames, name) {
		issues = append(issues, &Issue{
			Kind:     KindRule,
			Field:    "name",
			Message:  fmt.Sprintf("name %q is reserved (reserved: %s)", name, strings.Join(reservedNames, ", ")),
			Severity: SeverityError,
			Err:      ErrReservedName,
		})
	}

	switch server.Type {
	case mcp.TypeStdio:
		if server.Command == "" {
			issues = append(issues, &Issue{
				Kind:     KindRule,
				Field:    "command",
				Message:  "stdio servers require a command",
				Severity: SeverityError,
				Err:      ErrMissingCommand,
			})
		}
	case mcp.TypeHTTP, mcp.TypeSSE:
		if server.URL == "" {
			issues = append(issues, &Issue{
				Kind:     KindRule,
				Field:    "url",
				Message:  server.Type + " servers require a url",
				Severity: SeverityError,
				Err:      ErrMissingURL,
			})
		} else if issue := checkURL(server.URL); issue != nil {
			issues = append(issues, issue)
		}
	}

	return issues
}

// checkURL validates that raw is an absolute http(s) URL with a host.
func checkURL(raw string) *Issue {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &Issue{
			Kind:     KindRule,
			Field:    "url",
			Message:  fmt.Sprintf("%q is not a valid absolute http(s) URL", raw),
			Severity: SeverityError,
			Err:      ErrInvalidURL,
		}
	}
	return nil
}

// checkSecurity validates the command against the allow-list and the
// environment variables against the deny-list.
func (v *Validator) checkSecurity(server *mcp.Server) []*Issue {
	var issues []*Issue

	if server.IsLocal() && !slices.Contains(v.allowedCommands, server.Command) {
		if _, err := v.lookPath(server.Command); err != nil {
			issues = append(issues, &Issue{
				Kind:  KindSecurity,
				Field: "command",
				Message: fmt.Sprintf("command %q is not on the allow-list (%s) and was not found on this system",
					server.Command, strings.Join(v.allowedCommands, ", ")),
				Severity: SeverityError,
				Err:      ErrCommandNotAllowed,
			})
		}
	}

	for key, value := range server.Env {
		if slices.Contains(dangerousEnvKeys, key) {
			issues = append(issues, &Issue{
				Kind:     KindSecurity,
				Field:    "env",
				Message:  fmt.Sprintf("environment variable %s affects process/library loading", key),
				Severity: SeverityWarning,
				Err:      ErrDangerousEnvKey,
			})
		}
		if strings.ContainsAny(value, shellMetacharacters) {
			issues = append(issues, &Issue{
				Kind:     KindSecurity,
				Field:    "env",
				Message:  fmt.Sprintf("environment value for %s contains shell metacharacters", key),
				Severity: SeverityError,
				Err:      ErrShellMetacharacter,
			})
		}
	}

	return issues
}
