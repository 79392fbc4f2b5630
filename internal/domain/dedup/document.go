package dedup

import (
	"unicode/utf8"

	"github.com/corey/xdedup/internal/domain/window"
)

// Document owns one input text and the window hashes computed from it.
//
// The hash sequence and the distinct set describe the original text and are
// never recomputed: a document is filtered exactly once per batch.
type Document struct {
	text       string
	windowSize int
	offsets    []int // char index -> byte offset, len = chars+1
	seq        window.Sequence
}

// NewDocument validates text and hashes every window of windowSize
// characters. windowSize < 1 or larger than the character count produces a
// non-reducible document that passes through unchanged.
func NewDocument(text string, windowSize int) (*Document, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	offsets, projected := window.Layout(text)
	return &Document{
		text:       text,
		windowSize: windowSize,
		offsets:    offsets,
		seq:        window.Hash(projected, windowSize),
	}, nil
}

// Text returns the document's current content.
func (d *Document) Text() string { return d.text }

// CharCount returns the number of characters in the original text.
func (d *Document) CharCount() int { return len(d.offsets) - 1 }

// Reducible reports whether at least one full window fits in the document.
// Lengths are always compared in characters, never bytes.
func (d *Document) Reducible() bool {
	return window.Count(d.CharCount(), d.windowSize) > 0
}

// Hashes returns the per-window hash sequence.
func (d *Document) Hashes() []uint64 { return d.seq.Hashes }

// Distinct returns the set of distinct window hashes.
func (d *Document) Distinct() map[uint64]struct{} { return d.seq.Distinct }

// DeleteRanges returns the character ranges this document loses given the
// corpus duplicate set. Windows overlapping a protected character are
// never flagged; protected may be nil.
func (d *Document) DeleteRanges(dups *DuplicateSet, protected []bool) []Range {
	if !d.Reducible() {
		return nil
	}
	mask := DuplicateMask(d.seq.Hashes, dups)
	if protected != nil {
		Unflag(mask, protected, d.windowSize)
	}
	return MergeRuns(mask, d.windowSize)
}

// Filter removes ranges from the text. It is the only mutation a document
// sees; offsets still describe the original text afterwards, so it must
// not be called twice.
func (d *Document) Filter(ranges []Range) error {
	if len(ranges) == 0 {
		return nil
	}
	out, err := Apply(d.text, d.offsets, ranges)
	if err != nil {
		return err
	}
	d.text = out
	return nil
}

// protectedChars converts protected byte spans into a per-character mask.
// Returns nil when no span touches the text.
func (d *Document) protectedChars(spans []Span) []bool {
	if len(spans) == 0 {
		return nil
	}
	mask := make([]bool, d.CharCount())
	touched := false
	for _, sp := range spans {
		start := charIndexAtOrAfter(d.offsets, sp.Start)
		// A span starting mid-character still protects that character.
		if start > 0 && d.offsets[start] > sp.Start {
			start--
		}
		end := charIndexAtOrAfter(d.offsets, sp.End)
		for i := start; i < end && i < len(mask); i++ {
			mask[i] = true
			touched = true
		}
	}
	if !touched {
		return nil
	}
	return mask
}

// charIndexAtOrAfter returns the first character whose byte offset is
// >= b, or the character count when b is past the last character start.
func charIndexAtOrAfter(offsets []int, b int) int {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if offsets[mid] < b {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
