// Package dedup removes text shared across the documents of a corpus.
//
// A batch runs in three stages. Every document hashes its windows
// independently; one aggregation collects the hashes present in two or more
// documents; every document then deletes the character ranges covered by
// those duplicate windows. Stages one and three run concurrently across
// documents. The duplicate set is published only after aggregation finishes
// and is read-only from then on.
package dedup

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Protector reports byte spans of a text that must survive cleaning.
type Protector interface {
	Protected(text string) []Span
}

// ProtectorFunc adapts a function to Protector.
type ProtectorFunc func(text string) []Span

// Protected calls f(text).
func (f ProtectorFunc) Protected(text string) []Span { return f(text) }

// Options controls a batch run.
type Options struct {
	// MinSize is the window size in characters: the shortest shared span
	// eligible for removal. < 1 disables filtering.
	MinSize int
	// Workers bounds per-document concurrency. <= 0 uses GOMAXPROCS.
	Workers int
	// Protect, when set, shields matching spans from deletion.
	Protect Protector
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Outcome describes what cleaning did to one document.
type Outcome struct {
	Text         string
	Chars        int // characters before cleaning
	RemovedChars int
	RemovedBytes int
	Ranges       []Range
}

// Report is the result of one batch run, in input order.
type Report struct {
	Outcomes        []Outcome
	DuplicateHashes int
}

// Texts returns the cleaned documents in input order.
func (r *Report) Texts() []string {
	out := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Text
	}
	return out
}

// RemovedChars sums removed characters over all documents.
func (r *Report) RemovedChars() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.RemovedChars
	}
	return n
}

// Clean deletes every window of at least minSize characters that occurs in
// two or more documents. The result has the same length and order as docs.
func Clean(docs []string, minSize int) ([]string, error) {
	report, err := Run(docs, Options{MinSize: minSize})
	if err != nil {
		return nil, err
	}
	return report.Texts(), nil
}

// Run cleans one batch and reports per-document statistics. On error no
// documents are returned.
func Run(docs []string, opts Options) (*Report, error) {
	report := &Report{Outcomes: make([]Outcome, len(docs))}
	if len(docs) == 0 {
		return report, nil
	}
	workers := opts.workers()

	// Stage 1: hash every document.
	hashed := make([]*Document, len(docs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, text := range docs {
		g.Go(func() error {
			d, err := NewDocument(text, opts.MinSize)
			if err != nil {
				return &DocumentError{Index: i, Err: err}
			}
			hashed[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stage 2: partitioned reduction, merged after every partition is done.
	dups := aggregate(hashed, workers)
	report.DuplicateHashes = dups.Len()

	// Stage 3: filter every document against the published set.
	g = errgroup.Group{}
	g.SetLimit(workers)
	for i, d := range hashed {
		g.Go(func() error {
			var protected []bool
			if opts.Protect != nil && d.Reducible() {
				protected = d.protectedChars(opts.Protect.Protected(d.Text()))
			}
			ranges := d.DeleteRanges(dups, protected)
			before := d.Text()
			if err := d.Filter(ranges); err != nil {
				return &DocumentError{Index: i, Err: err}
			}
			removed := 0
			for _, r := range ranges {
				removed += r.Len()
			}
			report.Outcomes[i] = Outcome{
				Text:         d.Text(),
				Chars:        d.CharCount(),
				RemovedChars: removed,
				RemovedBytes: len(before) - len(d.Text()),
				Ranges:       ranges,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// aggregate builds the duplicate set. Documents are split into contiguous
// partitions, each reduced by its own goroutine into a private tracker;
// partial trackers are merged only after all of them finish.
func aggregate(docs []*Document, workers int) *DuplicateSet {
	parts := workers
	if parts > len(docs) {
		parts = len(docs)
	}
	if parts <= 1 {
		t := NewTracker()
		for _, d := range docs {
			t.Observe(d.Distinct())
		}
		return t.Duplicates()
	}

	trackers := make([]*Tracker, parts)
	chunk := (len(docs) + parts - 1) / parts
	var g errgroup.Group
	for p := 0; p < parts; p++ {
		lo := p * chunk
		hi := min(lo+chunk, len(docs))
		trackers[p] = NewTracker()
		if lo >= hi {
			continue
		}
		t := trackers[p]
		g.Go(func() error {
			for _, d := range docs[lo:hi] {
				t.Observe(d.Distinct())
			}
			return nil
		})
	}
	_ = g.Wait()

	root := trackers[0]
	for _, t := range trackers[1:] {
		root.Merge(t)
	}
	return root.Duplicates()
}
