package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/adapters/socket"
	"github.com/corey/xdedup/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project root, ledger, log and socket paths, and server status. No server required.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	client := socket.NewClient(paths.Socket)
	serverStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if client.Ping() {
		serverStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	fmt.Printf("%s⚡ xdedup config%s\n", colorBold, colorReset)
	fmt.Printf("  Root:       %s\n", root)
	fmt.Printf("  Ledger:     %s\n", paths.DB)
	fmt.Printf("  Log:        %s\n", paths.LogFile)
	fmt.Printf("  Socket:     %s\n", paths.Socket)
	fmt.Printf("  Server:     %s\n", serverStatus)
	fmt.Printf("  Min size:   %d (default)\n", app.DefaultMinSize)
	return nil
}
