package ports

// Document is one corpus member as read from storage. ID is stable for the
// lifetime of a run (for the filesystem adapter: the slash-separated path
// relative to the corpus root).
type Document struct {
	ID   string
	Text string
}

// Source enumerates and reads a corpus. The filesystem adapter walks a
// directory; PDF files are reduced to their extractable text.
//
// Load must return documents in a deterministic order so that batching and
// output mapping are reproducible across runs.
type Source interface {
	// Load reads every document of the corpus. Read failures abort the
	// whole load: partial corpora would change which spans count as shared.
	Load() ([]Document, error)

	// Root returns the location the corpus was read from.
	Root() string
}

// Sink persists cleaned documents.
type Sink interface {
	// Write stores text under the given document ID, replacing any prior
	// content. Implementations must not leave a partially written file
	// visible under the final name.
	Write(id, text string) error

	// Root returns the location documents are written to.
	Root() string
}
