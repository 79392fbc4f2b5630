// Package bbolt implements the ports.RunStore interface using bbolt (embedded B+ tree).
// Runs live in a single "runs" bucket keyed by a big-endian sequence number, so a
// reverse cursor walk yields newest first. Writes are transactional; a crash
// mid-write cannot corrupt previously committed runs.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	"github.com/corey/xdedup/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketRuns = []byte("runs")
)

// Store implements ports.RunStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.RunStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun appends a run. An empty ID is assigned from the bucket sequence.
func (s *Store) SaveRun(run *ports.RunRecord) error {
	if run == nil {
		return fmt.Errorf("nil run")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return err
		}
		var seq uint64
		if run.ID == "" {
			seq, err = b.NextSequence()
			if err != nil {
				return err
			}
			run.ID = formatRunID(seq)
		} else {
			seq, err = parseRunID(run.ID)
			if err != nil {
				return err
			}
			// Keep NextSequence ahead of explicitly numbered runs.
			if seq > b.Sequence() {
				if err := b.SetSequence(seq); err != nil {
					return err
				}
			}
		}
		data, err := encodeRun(run)
		if err != nil {
			return fmt.Errorf("encode run: %w", err)
		}
		return b.Put(runKey(seq), data)
	})
}

// LoadRun retrieves a run by ID.
// Returns nil, nil if no run has that ID.
func (s *Store) LoadRun(id string) (*ports.RunRecord, error) {
	seq, err := parseRunID(id)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get(runKey(seq)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	run, err := decodeRun(data)
	if err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(limit int) ([]*ports.RunRecord, error) {
	var runs []*ports.RunRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			run, err := decodeRun(v) // decode copies out of the mmap
			if err != nil {
				return fmt.Errorf("decode run %x: %w", k, err)
			}
			runs = append(runs, run)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// ClearRuns removes every run.
// Idempotent: clearing an empty ledger is not an error.
func (s *Store) ClearRuns() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(bucketRuns)
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		}
		return err
	})
}
