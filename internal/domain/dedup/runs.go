package dedup

// Range is a half-open [Start, End) interval in character coordinates.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of characters covered.
func (r Range) Len() int { return r.End - r.Start }

// Span is a half-open [Start, End) interval in byte coordinates.
type Span struct {
	Start int
	End   int
}

// DuplicateMask flags every window whose hash is in the duplicate set.
func DuplicateMask(hashes []uint64, dups *DuplicateSet) []bool {
	mask := make([]bool, len(hashes))
	for i, h := range hashes {
		mask[i] = dups.Contains(h)
	}
	return mask
}

// Unflag clears every window of the given size that overlaps a protected
// character. protected is indexed by character.
func Unflag(mask []bool, protected []bool, size int) {
	// prefix[i] = protected characters before index i
	prefix := make([]int, len(protected)+1)
	for i, p := range protected {
		prefix[i+1] = prefix[i]
		if p {
			prefix[i+1]++
		}
	}
	for i := range mask {
		end := i + size
		if end > len(protected) {
			end = len(protected)
		}
		if prefix[end]-prefix[i] > 0 {
			mask[i] = false
		}
	}
}

// MergeRuns turns the per-window flags into the minimal list of ascending,
// non-overlapping character ranges covering every flagged window. A run of
// consecutive flagged starts i..j becomes [i, j+size). Runs separated by
// fewer than size unflagged windows overlap in characters and are joined.
func MergeRuns(mask []bool, size int) []Range {
	var ranges []Range
	var cur Range
	prev := false
	// The loop runs one step past the mask; that trailing false closes
	// a run touching the last window.
	for i := 0; i <= len(mask); i++ {
		next := i < len(mask) && mask[i]
		switch {
		case !prev && next:
			cur = Range{Start: i, End: i + size}
		case prev && next:
			cur.End++
		case prev && !next:
			if n := len(ranges); n > 0 && cur.Start <= ranges[n-1].End {
				ranges[n-1].End = max(ranges[n-1].End, cur.End)
			} else {
				ranges = append(ranges, cur)
			}
		}
		prev = next
	}
	return ranges
}
