package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/app"
	"github.com/corey/xdedup/internal/ports"
)

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Clean the corpus, then re-clean whenever documents change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	addRunFlags(watchCmd)
	watchCmd.Flags().DurationVar(&runOpts.settle, "settle", app.DefaultSettle, "Quiet period after the last change before re-cleaning")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := corpusDir(args)
	if err != nil {
		return err
	}
	cfg, err := runOpts.config(dir)
	if err != nil {
		return err
	}

	var closeLog func()
	cfg.Logger, closeLog = withLogFile(app.NewPaths(dir))
	defer closeLog()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("⚡ watching %s (ctrl-c to stop)\n", a.Config().Input)
	err = a.Watch(ctx, func(run *ports.RunRecord, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", colorYellow, err, colorReset)
			return
		}
		fmt.Print(formatRun(run))
	})
	fmt.Println("\n⚡ stopped")
	return err
}
