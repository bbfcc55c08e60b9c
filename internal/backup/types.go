package backup

import (
	"time"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Default configuration values.
const (
	// DefaultRetentionCount is the default number of snapshots kept by
	// Prune.
	DefaultRetentionCount = 5

	// DefaultListLimit is the default number of snapshots returned by
	// List.
	DefaultListLimit = 10
)

// idFormat is the time layout snapshot ids are derived from, at
// one-second resolution.
const idFormat = "20060102-150405"

// Snapshot is an immutable point-in-time copy of a configuration
// document, stored as a single JSON file named <id>.json.
type Snapshot struct {
	// Timestamp is when the snapshot was created.
	Timestamp time.Time `json:"timestamp"`

	// Config is the full document at creation time, including
	// preserved unknown fields.
	Config *mcp.Config `json:"config"`

	// Metadata carries free-form context such as reason and name.
	Metadata map[string]string `json:"metadata,omitempty"`

	// ID is the snapshot identifier, derived from the file name on
	// load. Not stored inside the JSON body.
	ID string `json:"-"`
}

// Summary is one List entry: identity and metadata without the full
// document.
type Summary struct {
	// ID is the snapshot identifier.
	ID string

	// Timestamp is when the snapshot was created.
	Timestamp time.Time

	// Servers is the number of servers in the snapshot document.
	Servers int

	// Metadata carries the snapshot's free-form context.
	Metadata map[string]string
}
