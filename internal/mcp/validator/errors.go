package validator

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for individual validation failures.
var (
	// ErrInvalidType indicates an unrecognized transport type.
	ErrInvalidType = errors.New("invalid server type")

	// ErrInvalidName indicates the server name does not match the
	// required pattern.
	ErrInvalidName = errors.New("invalid server name")

	// ErrReservedName indicates the server name is on the reserved list.
	ErrReservedName = errors.New("server name is reserved")

	// ErrMissingCommand indicates a stdio server has no command.
	ErrMissingCommand = errors.New("stdio server requires command")

	// ErrMissingURL indicates an http/sse server has no URL.
	ErrMissingURL = errors.New("remote server requires url")

	// ErrInvalidURL indicates a URL that is not a valid absolute
	// http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrCommandNotAllowed indicates the command is neither on the
	// allow-list nor resolvable to an executable on this system.
	ErrCommandNotAllowed = errors.New("command not allowed")

	// ErrDangerousEnvKey flags an environment variable known to affect
	// process or library loading. Warning severity: the caller decides
	// whether to proceed.
	ErrDangerousEnvKey = errors.New("dangerous environment variable")

	// ErrShellMetacharacter indicates an environment value containing
	// shell metacharacters.
	ErrShellMetacharacter = errors.New("shell metacharacter in environment value")
)

// Kind classifies which pipeline stage rejected a descriptor.
type Kind int

const (
	// KindShape covers structural and type well-formedness failures.
	KindShape Kind = iota

	// KindRule covers cross-field business rules: transport field
	// requirements, name pattern, URL syntax.
	KindRule

	// KindSecurity covers command allow-listing and environment
	// variable checks.
	KindSecurity
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindRule:
		return "rule"
	case KindSecurity:
		return "security"
	default:
		return "unknown"
	}
}

// Severity indicates whether a validation issue blocks acceptance.
type Severity int

const (
	// SeverityError indicates a hard rejection.
	SeverityError Severity = iota

	// SeverityWarning indicates a non-blocking issue surfaced to the
	// caller, never silently dropped.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Issue is a single validation finding with enough structured detail
// for a caller to render a precise message.
type Issue struct {
	// Kind identifies the pipeline stage that produced the issue.
	Kind Kind

	// Field identifies which descriptor field has the issue, when one
	// applies.
	Field string

	// Message is a human-readable description of the problem.
	Message string

	// Severity indicates whether this issue blocks acceptance.
	Severity Severity

	// Err is the underlying sentinel error, if any.
	Err error
}

// Error implements the error interface.
func (i *Issue) Error() string {
	if i.Field != "" {
		return fmt.Sprintf("%s %s: field %q: %s", i.Kind, i.Severity, i.Field, i.Message)
	}
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Severity, i.Message)
}

// Unwrap returns the underlying sentinel error.
func (i *Issue) Unwrap() error {
	return i.Err
}

// Is reports whether the issue matches the target sentinel.
func (i *Issue) Is(target error) bool {
	return i.Err != nil && errors.Is(i.Err, target)
}
