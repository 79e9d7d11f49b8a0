package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pcparts/notify-relay/internal/client"
	"github.com/pcparts/notify-relay/internal/console"
	"github.com/pcparts/notify-relay/internal/inbox"
	"github.com/pcparts/notify-relay/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConsoleCmd() *cobra.Command {
	var (
		wsURL    string
		stateDir string
		logFile  string
	)
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Watch admin notifications in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Discard()
			if logFile != "" {
				zc := zap.NewDevelopmentConfig()
				zc.OutputPaths = []string{logFile}
				zc.ErrorOutputPaths = []string{logFile}
				l, err := zc.Build()
				if err != nil {
					return err
				}
				log = l
				defer log.Sync()
			}

			store := inbox.NewStore(stateDir)
			box := inbox.New()
			items, err := store.Load()
			if err != nil {
				log.Warn("inbox not restored", zap.String("path", store.Path()), zap.Error(err))
			}
			box.Restore(items)

			m := console.New(client.NewWSClient(wsURL, log), box, store)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&wsURL, "url", "ws://127.0.0.1:3003/admin", "WebSocket URL of the relay admin channel")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "Directory for the saved inbox (default $XDG_STATE_HOME/pcparts-relay)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	return cmd
}
