package dedup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUTF8 is returned when a document is not valid UTF-8 text.
	// Invalid bytes are never substituted or dropped.
	ErrInvalidUTF8 = errors.New("document is not valid UTF-8")

	// ErrRangeInvariant means a delete range reached the mutator out of
	// order, overlapping its predecessor, or past the end of the document.
	// Correct run merging never produces one.
	ErrRangeInvariant = errors.New("delete range invariant violated")
)

// DocumentError ties a failure to the position of the document in the batch.
type DocumentError struct {
	Index int
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.Index, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
