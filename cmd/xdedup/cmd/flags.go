package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/app"
)

// runFlags are shared by clean, prefix and watch.
type runFlags struct {
	out       string
	minSize   int
	workers   int
	batchSize int
	exts      []string
	exclude   []string
	keep      []string
	keepFile  string
	dryRun    bool
	noHistory bool
	settle    time.Duration
}

var runOpts runFlags

func addRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVarP(&runOpts.out, "out", "o", "", "Output directory (default: <DIR>.clean)")
	f.IntVarP(&runOpts.minSize, "min-size", "n", app.DefaultMinSize, "Shortest shared span to remove, in characters")
	f.IntVarP(&runOpts.workers, "workers", "j", 0, "Parallel workers (default: number of CPUs)")
	f.IntVar(&runOpts.batchSize, "batch-size", 0, "Documents per independently cleaned batch (0 = whole corpus)")
	f.StringSliceVar(&runOpts.exts, "ext", []string{".txt"}, "Document extensions to read (.txt, .pdf)")
	f.StringSliceVar(&runOpts.exclude, "exclude", nil, "Directories under DIR to skip")
	f.StringArrayVar(&runOpts.keep, "keep", nil, "Phrase that must never be removed (repeatable)")
	f.StringVar(&runOpts.keepFile, "keep-file", "", "File of protected phrases, one per line")
	f.BoolVar(&runOpts.dryRun, "dry-run", false, "Report what would be removed without writing")
	f.BoolVar(&runOpts.noHistory, "no-history", false, "Do not record the run in the ledger")
}

// config builds the app configuration for a corpus directory.
func (f *runFlags) config(input string) (app.Config, error) {
	keep := append([]string(nil), f.keep...)
	if f.keepFile != "" {
		phrases, err := readPhrases(f.keepFile)
		if err != nil {
			return app.Config{}, err
		}
		keep = append(keep, phrases...)
	}
	return app.Config{
		ProjectRoot: input,
		Input:       input,
		Output:      f.out,
		MinSize:     f.minSize,
		Workers:     f.workers,
		BatchSize:   f.batchSize,
		Extensions:  f.exts,
		Exclude:     f.exclude,
		Keep:        keep,
		DryRun:      f.dryRun,
		NoHistory:   f.noHistory,
		Settle:      f.settle,
		Logger:      logger,
	}, nil
}

// readPhrases reads one phrase per line. Blank lines and lines starting
// with # are skipped; surrounding whitespace is kept.
func readPhrases(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keep file: %w", err)
	}
	defer f.Close()

	var phrases []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		phrases = append(phrases, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("keep file: %w", err)
	}
	return phrases, nil
}
