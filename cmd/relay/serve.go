package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pcparts/notify-relay/internal/config"
	"github.com/pcparts/notify-relay/internal/health"
	"github.com/pcparts/notify-relay/internal/ingest"
	"github.com/pcparts/notify-relay/internal/logging"
	"github.com/pcparts/notify-relay/internal/mock"
	"github.com/pcparts/notify-relay/internal/notify"
	"github.com/pcparts/notify-relay/internal/registry"
	"github.com/pcparts/notify-relay/internal/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	configPath string
	port       int
	mock       bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notification relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "config.yaml", "Path to config file")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Override server port")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "Publish synthetic orders and promotions")
	return cmd
}

func runServe(parent context.Context, opts serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	admins := registry.New(notify.ChannelAdmin, log)
	router := ws.NewRouter(ws.HubOptions{
		SendBuffer:     cfg.Broadcast.SendBuffer,
		WriteTimeout:   cfg.Broadcast.WriteTimeout,
		MaxConnections: cfg.Broadcast.MaxConnections,
	}, map[notify.Channel]ws.Membership{
		notify.ChannelAdmin: admins,
	}, log)

	svc := ingest.NewService(router, admins, log)
	server := ws.NewServer(router, cfg.AllowedOrigins(), log,
		ingest.NewHandler(svc, cfg.Ingest.Token, log),
		health.NewReporter(router, admins, log),
	)

	if opts.mock {
		log.Info("starting in mock mode", zap.Duration("interval", cfg.Mock.Interval))
		mock.NewGenerator(svc, cfg.Mock.Interval, time.Now().UnixNano(), log).Start(ctx)
	}

	if cfg.Ingest.Token == "" {
		log.Warn("INGEST_TOKEN not set, ingestion endpoints are unauthenticated")
	}

	err = ws.ListenAndServe(ctx, cfg.Server.Host, cfg.Server.Port, server.Handler(), log)
	log.Info("relay stopped")
	return err
}
