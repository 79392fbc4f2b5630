package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xdedup",
	Short: "xdedup — cross-document duplicate text removal",
	Long: "Removes every span of at least --min-size characters that appears in two or more\n" +
		"documents of a corpus: boilerplate headers, footers, navigation and license text.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// corpusDir returns the corpus directory from the first argument, or cwd.
func corpusDir(args []string) (string, error) {
	if len(args) == 0 {
		return projectRoot(), nil
	}
	return filepath.Abs(args[0])
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "Log JSON lines instead of console output")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(prefixCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}
