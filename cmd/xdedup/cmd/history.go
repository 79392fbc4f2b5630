package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/app"
)

var (
	historyLimit int
	historyClear bool
	historyForce bool
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN-ID]",
	Short: "List recorded runs, or show one run per document",
	Long:  "Reads the run ledger in .xdedup/xdedup.db under the current directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to list (0 = all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every recorded run")
	historyCmd.Flags().BoolVar(&historyForce, "force", false, "Skip confirmation prompt for --clear")
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	if _, err := os.Stat(paths.DB); os.IsNotExist(err) {
		fmt.Println("⚡ no runs recorded")
		return nil
	}

	a, err := app.New(app.Config{ProjectRoot: root, Input: root, Logger: logger})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	switch {
	case historyClear:
		if !historyForce && !confirm("⚠ This will delete every recorded run. Continue? [y/N] ") {
			fmt.Println("cancelled")
			return nil
		}
		if err := a.ClearHistory(); err != nil {
			return ledgerError(root, err)
		}
		fmt.Println("⚡ history cleared")

	case len(args) == 1:
		run, err := a.LoadRun(args[0])
		if err != nil {
			return ledgerError(root, err)
		}
		if run == nil {
			return fmt.Errorf("no run with id %s", args[0])
		}
		fmt.Print(formatRunDetail(run))

	default:
		runs, err := a.History(historyLimit)
		if err != nil {
			return ledgerError(root, err)
		}
		fmt.Print(formatHistory(runs))
	}
	return nil
}

// ledgerError adds lock diagnosis to ledger failures.
func ledgerError(root string, err error) error {
	if isDBLockError(err) {
		return fmt.Errorf("cannot read history: %s", diagnoseDBLock(root))
	}
	return err
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
