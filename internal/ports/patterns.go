package ports

// PhraseScanner finds protected phrases in content using multi-pattern
// matching (Aho-Corasick). A single pass over the content finds all phrases
// simultaneously, regardless of how many are configured: O(n + m + z) where
// n=content length, m=total pattern length, z=number of matches.
//
// Matching is case-sensitive and byte-exact. Overlapping occurrences are all
// reported.
type PhraseScanner interface {
	// Spans returns the [start, end) byte offsets of every occurrence of
	// every phrase in content. Returns nil if nothing matches.
	Spans(content string) [][2]int

	// Found returns each distinct phrase present in content, in first-match
	// order. Returns nil if nothing matches.
	Found(content string) []string

	// PhraseCount returns the number of phrases in the automaton.
	PhraseCount() int
}
