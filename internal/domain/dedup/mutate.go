package dedup

import (
	"fmt"
	"strings"
)

// Apply removes the character ranges from text and returns the result.
// offsets maps character index to byte offset and ends with len(text).
//
// Surviving spans are copied in ascending order into a fresh buffer, so no
// offset is ever invalidated by an earlier deletion. Ranges must be
// ascending, non-empty, non-overlapping and end within the text; anything
// else is reported as ErrRangeInvariant.
func Apply(text string, offsets []int, ranges []Range) (string, error) {
	chars := len(offsets) - 1
	removed := 0
	prevEnd := 0
	for i, r := range ranges {
		if r.Start < prevEnd || r.Start >= r.End || r.End > chars {
			return "", fmt.Errorf("%w: range %d [%d, %d) after %d in %d chars",
				ErrRangeInvariant, i, r.Start, r.End, prevEnd, chars)
		}
		removed += offsets[r.End] - offsets[r.Start]
		prevEnd = r.End
	}

	var sb strings.Builder
	sb.Grow(len(text) - removed)
	keep := 0 // byte offset of the first byte not yet copied or skipped
	for _, r := range ranges {
		sb.WriteString(text[keep:offsets[r.Start]])
		keep = offsets[r.End]
	}
	sb.WriteString(text[keep:])
	return sb.String(), nil
}
