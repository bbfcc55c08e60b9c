// Package errors defines the error taxonomy for the mcpm configuration
// core.
//
// The core classifies every failure as one of a small set of sentinel
// errors so that callers can branch with [errors.Is] without knowing
// anything about the underlying file system or parser:
//
//	doc, err := st.Load()
//	if errors.Is(err, mcpmerrors.ErrCorrupted) {
//	    // point the user at backup list / backup restore
//	}
//
// Sentinels carry structured context via cockroachdb/errors wrapping;
// the chain preserves the original cause for diagnostics while the
// sentinel drives control flow.
//
// The package also provides [ExitError] for mapping errors to CLI exit
// codes, following the usual Unix convention of 1 for user errors and
// 2 for system errors.
package errors
