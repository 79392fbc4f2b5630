package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/corey/xdedup/internal/adapters/fsdocs"
)

// DefaultMinSize is the window size used when none is given: the shortest
// shared span, in characters, that is removed.
const DefaultMinSize = 50

// DefaultSettle is how long watch mode waits for changes to stop before
// re-cleaning the corpus.
const DefaultSettle = 500 * time.Millisecond

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string   // holds .xdedup/ (default: Input)
	Input       string   // corpus directory
	Output      string   // cleaned corpus directory (default: <Input>.clean)
	MinSize     int      // window size in characters
	Workers     int      // per-document concurrency (default: GOMAXPROCS)
	BatchSize   int      // documents per independently cleaned batch; 0 = one batch
	Extensions  []string // document extensions (default: .txt)
	Exclude     []string // directories under Input to skip
	Keep        []string // protected phrases
	DryRun      bool     // compute and report, write nothing
	NoHistory   bool     // do not record runs in the ledger
	Settle      time.Duration

	Logger zerolog.Logger
}

// Validate fills defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input directory required")
	}
	in, err := filepath.Abs(c.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	c.Input = in

	if c.ProjectRoot == "" {
		c.ProjectRoot = c.Input
	}
	if c.ProjectRoot, err = filepath.Abs(c.ProjectRoot); err != nil {
		return fmt.Errorf("project root: %w", err)
	}

	if c.Output == "" {
		c.Output = c.Input + ".clean"
	}
	if c.Output, err = filepath.Abs(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.Output == c.Input {
		return fmt.Errorf("output directory must differ from input %s", c.Input)
	}

	if c.MinSize < 0 {
		return fmt.Errorf("min size must be >= 0, got %d", c.MinSize)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch size must be >= 0, got %d", c.BatchSize)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	exts := c.Extensions
	if len(exts) == 0 {
		exts = fsdocs.DefaultExtensions
	}
	c.Extensions = make([]string, len(exts))
	for i, e := range exts {
		c.Extensions[i] = fsdocs.NormalizeExt(e)
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	return nil
}
