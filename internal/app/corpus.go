package app

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/corey/xdedup/internal/adapters/bbolt"
	"github.com/corey/xdedup/internal/adapters/fsdocs"
	"github.com/corey/xdedup/internal/domain/batch"
	"github.com/corey/xdedup/internal/domain/dedup"
	"github.com/corey/xdedup/internal/domain/prefix"
	"github.com/corey/xdedup/internal/ports"
)

// CleanCorpus removes cross-document duplicate spans from every document
// under the input directory and writes the results to the output directory.
func (a *App) CleanCorpus() (*ports.RunRecord, error) {
	return a.runCorpus(ports.ModeClean)
}

// PrefixCorpus removes shared leading text from every document, keeping one
// copy of each shared prefix.
func (a *App) PrefixCorpus() (*ports.RunRecord, error) {
	return a.runCorpus(ports.ModePrefix)
}

// batchResult is one processed batch before anything is written.
type batchResult struct {
	docs   []ports.Document
	texts  []string
	ranges []int // delete ranges per document; zero for prefix runs
}

// runCorpus loads the corpus, processes every batch, and only then writes
// output: a failing batch leaves the output directory untouched.
func (a *App) runCorpus(mode string) (*ports.RunRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	run := &ports.RunRecord{
		Mode:      mode,
		StartedAt: start.Unix(),
		MinSize:   a.cfg.MinSize,
		Input:     a.cfg.Input,
		Output:    a.cfg.Output,
		DryRun:    a.cfg.DryRun,
	}

	docs, err := a.Source.Load()
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	batches := batch.Split(docs, a.cfg.BatchSize)
	run.Batches = len(batches)
	results := make([]batchResult, 0, len(batches))
	for i, b := range batches {
		res, dupHashes, err := a.processBatch(mode, b)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
		run.DuplicateHashes += dupHashes
		results = append(results, res)
	}

	removed := 0
	for _, res := range results {
		for j, d := range res.docs {
			rec := ports.DocumentRecord{
				ID:       d.ID,
				CharsIn:  utf8.RuneCountInString(d.Text),
				CharsOut: utf8.RuneCountInString(res.texts[j]),
				BytesIn:  len(d.Text),
				BytesOut: len(res.texts[j]),
				Ranges:   res.ranges[j],
			}
			removed += rec.CharsIn - rec.CharsOut
			run.Documents = append(run.Documents, rec)
		}
	}

	if !a.cfg.DryRun {
		if err := a.writeOutput(results); err != nil {
			return nil, err
		}
	}

	run.ElapsedMs = time.Since(start).Milliseconds()
	a.log.Info().
		Str("mode", mode).
		Int("batches", run.Batches).
		Int("documents", len(run.Documents)).
		Int("changed", run.ChangedDocuments()).
		Int("removed_chars", removed).
		Int("duplicate_hashes", run.DuplicateHashes).
		Bool("dry_run", run.DryRun).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")

	if !a.cfg.NoHistory {
		if err := a.withStore(func(s *bbolt.Store) error { return s.SaveRun(run) }); err != nil {
			a.log.Warn().Err(err).Msg("run not recorded")
		}
	}
	return run, nil
}

// processBatch cleans one batch. Errors name the failing document.
func (a *App) processBatch(mode string, docs []ports.Document) (batchResult, int, error) {
	start := time.Now()
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	res := batchResult{docs: docs, ranges: make([]int, len(docs))}
	dupHashes := 0
	var err error
	switch mode {
	case ports.ModeClean:
		var report *dedup.Report
		report, err = dedup.Run(texts, a.options(a.cfg.MinSize))
		if err == nil {
			res.texts = report.Texts()
			dupHashes = report.DuplicateHashes
			for i, o := range report.Outcomes {
				res.ranges[i] = len(o.Ranges)
			}
			a.logProtected(docs)
		}
	case ports.ModePrefix:
		res.texts, err = prefix.StripShared(texts, a.cfg.MinSize)
		if err == nil {
			a.log.Debug().Msg(prefix.Describe(texts, res.texts))
		}
	default:
		return res, 0, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		var docErr *dedup.DocumentError
		if errors.As(err, &docErr) && docErr.Index < len(docs) {
			return res, 0, fmt.Errorf("%s: %w", docs[docErr.Index].ID, docErr.Err)
		}
		return res, 0, err
	}

	a.log.Debug().
		Str("mode", mode).
		Int("documents", len(docs)).
		Int("duplicate_hashes", dupHashes).
		Dur("elapsed", time.Since(start)).
		Msg("batch processed")
	return res, dupHashes, nil
}

// logProtected reports, at debug level, which protected phrases each
// document contains.
func (a *App) logProtected(docs []ports.Document) {
	if a.Phrases == nil || a.log.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, d := range docs {
		if found := a.Phrases.Found(d.Text); len(found) > 0 {
			a.log.Debug().Str("document", d.ID).Strs("phrases", found).Msg("protected phrases kept")
		}
	}
}

func (a *App) writeOutput(results []batchResult) error {
	sink, err := fsdocs.NewWriter(a.cfg.Output)
	if err != nil {
		return err
	}
	for _, res := range results {
		for j, d := range res.docs {
			if err := sink.Write(d.ID, res.texts[j]); err != nil {
				return fmt.Errorf("write %s: %w", d.ID, err)
			}
		}
	}
	return nil
}

// History returns up to limit recorded runs, newest first.
func (a *App) History(limit int) ([]*ports.RunRecord, error) {
	var runs []*ports.RunRecord
	err := a.withStore(func(s *bbolt.Store) error {
		var err error
		runs, err = s.ListRuns(limit)
		return err
	})
	return runs, err
}

// LoadRun returns one recorded run, or nil if the ID is unknown.
func (a *App) LoadRun(id string) (*ports.RunRecord, error) {
	var run *ports.RunRecord
	err := a.withStore(func(s *bbolt.Store) error {
		var err error
		run, err = s.LoadRun(id)
		return err
	})
	return run, err
}

// ClearHistory deletes every recorded run.
func (a *App) ClearHistory() error {
	return a.withStore(func(s *bbolt.Store) error { return s.ClearRuns() })
}

// withStore opens the ledger for the duration of fn only, so history
// queries do not block on a running watch.
func (a *App) withStore(fn func(s *bbolt.Store) error) error {
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", a.Paths.Root, err)
	}
	store, err := bbolt.NewStore(a.Paths.DB)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}
