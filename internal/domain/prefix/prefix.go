// Package prefix strips leading text shared between documents while keeping
// at least one copy of it in the corpus.
//
// Documents are visited in order and each is compared against the current
// state of every other document. A document that shares a long enough
// prefix loses it; a later document that shared the same prefix with it no
// longer matches, so the last holder keeps its copy:
//
//	["aaaaaaaacccc", "aaaaaaaabbbb", "aaaaaaaaddddd"], 4
//	  -> ["cccc", "bbbb", "aaaaaaaaddddd"]
package prefix

import (
	"fmt"
	"unicode/utf8"

	"github.com/corey/xdedup/internal/domain/dedup"
)

// StripShared removes from each document the longest prefix of at least
// minSize characters it shares with any other document. A document that is
// itself entirely a shared prefix is left unchanged. minSize < 1 is a no-op.
func StripShared(docs []string, minSize int) ([]string, error) {
	out := make([]string, len(docs))
	copy(out, docs)
	for i, d := range out {
		if !utf8.ValidString(d) {
			return nil, &dedup.DocumentError{Index: i, Err: dedup.ErrInvalidUTF8}
		}
	}
	if minSize < 1 {
		return out, nil
	}

	for i := range out {
		cur := out[i]
		if utf8.RuneCountInString(cur) < minSize {
			continue
		}
		best := 0 // bytes
		for j := range out {
			if j == i {
				continue
			}
			if n := commonPrefix(cur, out[j]); n > best {
				best = n
			}
		}
		if best == len(cur) {
			continue
		}
		if utf8.RuneCountInString(cur[:best]) >= minSize {
			out[i] = cur[best:]
		}
	}
	return out, nil
}

// commonPrefix returns the byte length of the longest common prefix of a
// and b that ends on a character boundary.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	// Back off to the start of a character cut in half.
	for i > 0 && i < len(a) && !utf8.RuneStart(a[i]) {
		i--
	}
	return i
}

// Describe summarizes how many characters each document lost.
func Describe(before, after []string) string {
	if len(before) != len(after) {
		return fmt.Sprintf("length mismatch: %d in, %d out", len(before), len(after))
	}
	stripped, chars := 0, 0
	for i := range before {
		if d := utf8.RuneCountInString(before[i]) - utf8.RuneCountInString(after[i]); d > 0 {
			stripped++
			chars += d
		}
	}
	return fmt.Sprintf("%d of %d documents lost %d prefix characters", stripped, len(before), chars)
}
