// Package paths resolves the well-known filesystem locations used by
// mcpm: the three configuration scopes and the XDG-based directories
// for snapshots and settings.
//
// Scope precedence (which scope wins when the same server name exists
// in several) is deliberately not decided here; callers resolve a
// scope to a path and hand it to the store.
package paths
