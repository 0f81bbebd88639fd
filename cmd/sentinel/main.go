package main

import (
	"context"
	"errors"
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

	agent := app.NewAgent(cfg, logger)

	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("agent stopped", "error", err)
		os.Exit(1)
	}
}
