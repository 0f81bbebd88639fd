package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FeedSentinel/internal/app"
	"FeedSentinel/internal/config"
	"FeedSentinel/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	daemon := app.NewDaemon(cfg, logger)

	if err := daemon.Run(ctx); err != nil {
		logger.Error("daemon stopped", "error", err)
		os.Exit(1)
	}
}
