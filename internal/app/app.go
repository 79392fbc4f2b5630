// Package app wires together all adapters and domain logic.
// It runs whole-corpus cleaning from a directory, records runs in the
// ledger, and serves batch requests for other processes.
package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/corey/xdedup/internal/adapters/ahocorasick"
	"github.com/corey/xdedup/internal/adapters/fsdocs"
	"github.com/corey/xdedup/internal/domain/dedup"
	"github.com/corey/xdedup/internal/domain/prefix"
	"github.com/corey/xdedup/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	Paths   *Paths
	Source  *fsdocs.Reader
	Phrases ports.PhraseScanner // nil without protected phrases

	cfg Config
	log zerolog.Logger
	mu  sync.Mutex // serializes corpus runs

	rateMu sync.Mutex
	rates  *RateTracker // served batch throughput
}

// rateWindow is how far back served batches count toward throughput.
const rateWindow = 15 * time.Minute

// New creates an App with all dependencies wired. Nothing is read or
// written until a run starts.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exclude := []string{cfg.Output}
	for _, x := range cfg.Exclude {
		if !filepath.IsAbs(x) {
			x = filepath.Join(cfg.Input, x)
		}
		exclude = append(exclude, x)
	}
	reader, err := fsdocs.NewReader(cfg.Input, cfg.Extensions, exclude...)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	a := &App{
		Paths:  NewPaths(cfg.ProjectRoot),
		Source: reader,
		cfg:    cfg,
		log:    cfg.Logger,
		rates:  NewRateTracker(rateWindow),
	}
	if len(cfg.Keep) > 0 {
		scanner := ahocorasick.NewScanner(cfg.Keep)
		if scanner.PhraseCount() > 0 {
			a.Phrases = scanner
		}
	}
	return a, nil
}

// Config returns the validated configuration.
func (a *App) Config() Config {
	return a.cfg
}

// Clean removes spans shared across docs. It serves the socket "clean"
// method and uses the configured workers and protected phrases.
func (a *App) Clean(docs []string, minSize int) ([]string, error) {
	start := time.Now()
	report, err := dedup.Run(docs, a.options(minSize))
	if err != nil {
		a.log.Warn().Err(err).Int("documents", len(docs)).Msg("clean request failed")
		return nil, err
	}
	a.log.Debug().
		Int("documents", len(docs)).
		Int("removed_chars", report.RemovedChars()).
		Int("duplicate_hashes", report.DuplicateHashes).
		Dur("elapsed", time.Since(start)).
		Msg("clean request")
	a.recordRate(time.Since(start), docs)
	return report.Texts(), nil
}

// StripPrefixes removes shared leading text keeping one copy. It serves
// the socket "prefix" method.
func (a *App) StripPrefixes(docs []string, minSize int) ([]string, error) {
	start := time.Now()
	out, err := prefix.StripShared(docs, minSize)
	if err != nil {
		a.log.Warn().Err(err).Int("documents", len(docs)).Msg("prefix request failed")
		return nil, err
	}
	a.log.Debug().Int("documents", len(docs)).Dur("elapsed", time.Since(start)).Msg("prefix request")
	a.recordRate(time.Since(start), docs)
	return out, nil
}

// CharsPerSecond reports the median throughput of recently served
// batches, or 0 until enough batches have been served.
func (a *App) CharsPerSecond() float64 {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()
	return a.rates.CharsPerSecond()
}

func (a *App) recordRate(elapsed time.Duration, docs []string) {
	chars := 0
	for _, d := range docs {
		chars += utf8.RuneCountInString(d)
	}
	a.rateMu.Lock()
	a.rates.Record(elapsed, chars)
	a.rateMu.Unlock()
}

// options builds the batch options for a window size.
func (a *App) options(minSize int) dedup.Options {
	return dedup.Options{
		MinSize: minSize,
		Workers: a.cfg.Workers,
		Protect: a.protector(),
	}
}

// protector adapts the phrase scanner to the cleaner, or nil without phrases.
func (a *App) protector() dedup.Protector {
	if a.Phrases == nil {
		return nil
	}
	return dedup.ProtectorFunc(func(text string) []dedup.Span {
		raw := a.Phrases.Spans(text)
		if len(raw) == 0 {
			return nil
		}
		spans := make([]dedup.Span, len(raw))
		for i, s := range raw {
			spans[i] = dedup.Span{Start: s[0], End: s[1]}
		}
		return spans
	})
}
