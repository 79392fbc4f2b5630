package dedup

// Tracker accumulates, across documents, which window hashes have been seen
// once and which have been seen in two or more documents.
//
// Each Observe call must receive one document's distinct set, so repeats
// inside a single document are never mistaken for cross-document sharing.
// Trackers built over disjoint partitions of a batch combine with Merge in
// any order.
type Tracker struct {
	once  map[uint64]struct{} // seen in at least one document
	twice map[uint64]struct{} // seen in at least two documents
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		once:  make(map[uint64]struct{}),
		twice: make(map[uint64]struct{}),
	}
}

// Observe records one document's distinct hashes.
func (t *Tracker) Observe(distinct map[uint64]struct{}) {
	for h := range distinct {
		if _, seen := t.once[h]; seen {
			t.twice[h] = struct{}{}
		} else {
			t.once[h] = struct{}{}
		}
	}
}

// Merge folds another tracker, built over a disjoint set of documents, into t.
// o must not be used afterwards.
func (t *Tracker) Merge(o *Tracker) {
	for h := range o.twice {
		t.twice[h] = struct{}{}
	}
	for h := range o.once {
		if _, seen := t.once[h]; seen {
			t.twice[h] = struct{}{}
		} else {
			t.once[h] = struct{}{}
		}
	}
}

// Duplicates publishes the hashes seen in two or more documents. The
// tracker hands over its set and must not be used afterwards.
func (t *Tracker) Duplicates() *DuplicateSet {
	set := &DuplicateSet{hashes: t.twice}
	t.once, t.twice = nil, nil
	return set
}

// DuplicateSet is the read-only set of hashes shared by two or more
// documents. Safe for concurrent readers once published.
type DuplicateSet struct {
	hashes map[uint64]struct{}
}

// Contains reports whether h was seen in two or more documents.
func (s *DuplicateSet) Contains(h uint64) bool {
	if s == nil {
		return false
	}
	_, ok := s.hashes[h]
	return ok
}

// Len returns the number of duplicate hashes.
func (s *DuplicateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.hashes)
}
