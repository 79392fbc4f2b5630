// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching
// of protected phrases.
package ahocorasick

import (
	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/xdedup/internal/ports"
)

// Scanner implements ports.PhraseScanner.
// Build once with NewScanner; safe for concurrent use after construction.
type Scanner struct {
	automaton aho.AhoCorasick
	phrases   []string
}

var _ ports.PhraseScanner = (*Scanner)(nil)

// NewScanner compiles an automaton from phrases. Empty and repeated
// phrases are dropped.
func NewScanner(phrases []string) *Scanner {
	seen := make(map[string]bool, len(phrases))
	p := make([]string, 0, len(phrases))
	for _, ph := range phrases {
		if ph == "" || seen[ph] {
			continue
		}
		seen[ph] = true
		p = append(p, ph)
	}

	s := &Scanner{phrases: p}
	if len(p) == 0 {
		return s
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	s.automaton = builder.Build(p)
	return s
}

// Spans returns the byte span of every occurrence, overlapping ones included,
// ordered by end offset.
func (s *Scanner) Spans(content string) [][2]int {
	if len(s.phrases) == 0 || content == "" {
		return nil
	}
	iter := s.automaton.IterOverlappingByte([]byte(content))
	var spans [][2]int
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		spans = append(spans, [2]int{m.Start(), m.End()})
	}
	return spans
}

// Found returns each distinct phrase present in content, in first-match order.
func (s *Scanner) Found(content string) []string {
	if len(s.phrases) == 0 || content == "" {
		return nil
	}
	iter := s.automaton.IterOverlappingByte([]byte(content))

	// Deduplicate by phrase
	seen := make(map[int]bool)
	var result []string
	for next := iter.Next(); next != nil; next = iter.Next() {
		idx := (*next).Pattern()
		if !seen[idx] {
			seen[idx] = true
			result = append(result, s.phrases[idx])
		}
	}
	return result
}

// PhraseCount returns the number of phrases in the automaton.
func (s *Scanner) PhraseCount() int {
	return len(s.phrases)
}
