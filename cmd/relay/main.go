package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Real-time notification relay for the PC parts store",
	Long: `relay pushes new-order and expiring-promotion notifications from the
store backend to connected admin dashboards over WebSocket.

  relay serve       run the relay
  relay publish     send an event to a running relay
  relay console     watch the admin channel from a terminal`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newPublishCmd(), newConsoleCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
