package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/adapters/socket"
	"github.com/corey/xdedup/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clean and prefix requests on a Unix socket",
	Long: "Listens on .xdedup/run/xdedup.sock under the current directory. Each request carries\n" +
		"a batch of documents and a minimum size; the reply is the processed batch.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

var (
	serveWorkers int
	serveKeep    []string
)

func init() {
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "j", 0, "Parallel workers per request (default: number of CPUs)")
	serveCmd.Flags().StringArrayVar(&serveKeep, "keep", nil, "Phrase that must never be removed (repeatable)")
	rootCmd.AddCommand(stopCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	// Check if already running
	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ server already running")
		return nil
	}

	l, closeLog := withLogFile(app.NewPaths(root))
	defer closeLog()

	a, err := app.New(app.Config{
		ProjectRoot: root,
		Input:       root,
		Workers:     serveWorkers,
		Keep:        serveKeep,
		NoHistory:   true,
		Logger:      l,
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = a.Serve(ctx, func(addr string) {
		fmt.Printf("⚡ xdedup serving at %s\n", addr)
	})
	fmt.Println("⚡ shutting down...")
	return err
}

func runStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))

	if !client.Ping() {
		fmt.Println("⚡ server is not running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Println("⚡ server stopped")
	return nil
}
