// Package window computes rolling hashes over fixed-size character windows.
//
// Each character (Unicode code point) is projected to a single byte before
// hashing, and the window slides one character at a time using a Rabin-Karp
// polynomial hash so every shift costs O(1) regardless of window size.
package window

import (
	"unicode/utf8"

	"github.com/chmduquesne/rollinghash/rabinkarp64"
)

// polynomial is the irreducible polynomial over GF(2) every hasher uses.
// Fixed so hashes compare across documents and runs.
const polynomial = rabinkarp64.Pol(0x3DA3358B4DC173)

// newHasher returns a rolling hasher over the fixed polynomial. Equal bytes
// never cancel, whatever the window length.
func newHasher() *rabinkarp64.RabinKarp64 {
	return rabinkarp64.NewFromPol(polynomial)
}

// Sequence is the hash of every window of a document, in order, plus the
// set of distinct values among them.
type Sequence struct {
	Hashes   []uint64            // Hashes[i] covers characters [i, i+size)
	Distinct map[uint64]struct{} // unique values in Hashes
}

// Len returns the number of windows.
func (s Sequence) Len() int {
	return len(s.Hashes)
}

// Count returns the number of windows of the given size in a text of
// chars characters. Zero when the window does not fit or size < 1.
func Count(chars, size int) int {
	if size < 1 || size > chars {
		return 0
	}
	return chars - size + 1
}

// Project reduces each code point to its low-order byte. Distinct non-ASCII
// characters sharing a low byte project identically; that is accepted.
func Project(r rune) byte {
	return byte(r)
}

// Layout walks text once and returns the byte offset of every character
// (with a trailing sentinel equal to len(text)) and the projected bytes.
// Invalid UTF-8 sequences decode as utf8.RuneError; callers validate first.
func Layout(text string) (offsets []int, projected []byte) {
	n := utf8.RuneCountInString(text)
	offsets = make([]int, 0, n+1)
	projected = make([]byte, 0, n)
	for i, r := range text {
		offsets = append(offsets, i)
		projected = append(projected, Project(r))
	}
	offsets = append(offsets, len(text))
	return offsets, projected
}

// Hash computes the rolling hash of every size-character window over the
// projected bytes. A size larger than the input (or < 1) yields an empty
// Sequence: the document is non-reducible.
func Hash(projected []byte, size int) Sequence {
	count := Count(len(projected), size)
	if count == 0 {
		return Sequence{Distinct: map[uint64]struct{}{}}
	}

	hashes := make([]uint64, 0, count)
	distinct := make(map[uint64]struct{}, count)

	h := newHasher()
	h.Write(projected[:size])
	sum := h.Sum64()
	hashes = append(hashes, sum)
	distinct[sum] = struct{}{}

	for add := size; add < len(projected); add++ {
		h.Roll(projected[add])
		sum = h.Sum64()
		hashes = append(hashes, sum)
		distinct[sum] = struct{}{}
	}

	return Sequence{Hashes: hashes, Distinct: distinct}
}
