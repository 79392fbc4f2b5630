package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/app"
	"github.com/corey/xdedup/internal/ports"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [DIR]",
	Short: "Remove text shared across documents",
	Long: "Reads every document under DIR (default: current directory), deletes each span of at\n" +
		"least --min-size characters that occurs in two or more documents, and writes the\n" +
		"results under --out with the same relative paths.",
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

var prefixCmd = &cobra.Command{
	Use:   "prefix [DIR]",
	Short: "Remove shared leading text, keeping one copy",
	Long: "Strips from each document the longest prefix of at least --min-size characters that it\n" +
		"shares with another document. The last document holding a shared prefix keeps it.",
	Args: cobra.MaximumNArgs(1),
	RunE: runPrefix,
}

func init() {
	addRunFlags(cleanCmd)
	addRunFlags(prefixCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	return runCorpus(args, (*app.App).CleanCorpus)
}

func runPrefix(cmd *cobra.Command, args []string) error {
	return runCorpus(args, (*app.App).PrefixCorpus)
}

func runCorpus(args []string, op func(*app.App) (*ports.RunRecord, error)) error {
	dir, err := corpusDir(args)
	if err != nil {
		return err
	}
	cfg, err := runOpts.config(dir)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	run, err := op(a)
	if err != nil {
		return err
	}
	fmt.Print(formatRun(run))
	return nil
}
