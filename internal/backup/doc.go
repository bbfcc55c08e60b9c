// Package backup creates, lists, restores, and prunes point-in-time
// snapshots of a full configuration document.
//
// # Layout
//
// Each snapshot is one JSON file in the backup directory, named by its
// id:
//
//	<backup dir>/
//	├── 20260830-101502.json
//	├── 20260830-101502-02.json
//	└── 20260830-114711.json
//
// The file holds the complete document, including preserved unknown
// fields, plus a timestamp and free-form metadata.
//
// # Identifiers
//
// Ids derive from creation time at one-second resolution. When two
// snapshots land in the same second, the second and later ones get a
// zero-padded -02, -03, ... suffix rather than failing, so callers
// that snapshot around every mutation never see a spurious error. An
// id is claimed by creating its file exclusively, so concurrent
// processes racing within one second get distinct ids. Ids order
// lexicographically in creation order, which is what List and Prune
// sort by.
//
// # Semantics
//
// Snapshots are immutable after creation and removed only by Prune.
// Restore returns a deep copy of the stored document and deliberately
// does not write the live configuration; reading a snapshot and
// committing it as current config are separately observable steps.
package backup
