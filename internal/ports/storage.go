// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// RunStore persists the ledger of cleaning runs to durable storage.
// The backing store (bbolt) is project-scoped: one database per corpus
// project directory. Concurrent reads are safe; writes are serialized by
// the adapter.
//
// Crash safety: SaveRun must be transactional. A crash mid-write must not
// corrupt previously committed runs.
type RunStore interface {
	// SaveRun appends a run to the ledger and assigns its ID when empty.
	SaveRun(run *RunRecord) error

	// LoadRun retrieves a run by ID.
	// Returns nil, nil if no run has that ID.
	LoadRun(id string) (*RunRecord, error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(limit int) ([]*RunRecord, error)

	// ClearRuns removes every run.
	// Idempotent: clearing an empty ledger is not an error.
	ClearRuns() error
}

// Run modes.
const (
	ModeClean  = "clean"  // cross-corpus span removal
	ModePrefix = "prefix" // shared-prefix removal keeping one copy
)

// RunRecord describes one CLI run over a corpus directory.
type RunRecord struct {
	ID              string           `json:"id"`
	Mode            string           `json:"mode"`
	StartedAt       int64            `json:"started_at"` // unix seconds
	ElapsedMs       int64            `json:"elapsed_ms"`
	MinSize         int              `json:"min_size"`
	Input           string           `json:"input"`
	Output          string           `json:"output"`
	Batches         int              `json:"batches"`
	DuplicateHashes int              `json:"duplicate_hashes"`
	DryRun          bool             `json:"dry_run"`
	Documents       []DocumentRecord `json:"documents"`
}

// DocumentRecord holds per-document sizes before and after cleaning.
type DocumentRecord struct {
	ID       string `json:"id"`
	CharsIn  int    `json:"chars_in"`
	CharsOut int    `json:"chars_out"`
	BytesIn  int    `json:"bytes_in"`
	BytesOut int    `json:"bytes_out"`
	Ranges   int    `json:"ranges"`
}

// RemovedChars sums removed characters over all documents.
func (r *RunRecord) RemovedChars() int {
	n := 0
	for _, d := range r.Documents {
		n += d.CharsIn - d.CharsOut
	}
	return n
}

// ChangedDocuments counts documents that lost any text.
func (r *RunRecord) ChangedDocuments() int {
	n := 0
	for _, d := range r.Documents {
		if d.CharsOut != d.CharsIn {
			n++
		}
	}
	return n
}
