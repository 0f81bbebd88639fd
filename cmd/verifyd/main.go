package main

import (
	"context"
	"os"

	"FeedSentinel/internal/app"
	"FeedSentinel/internal/config"
	"FeedSentinel/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	verifier := app.NewVerifier(cfg, logger)

	if err := verifier.Run(ctx); err != nil {
		logger.Error("verification service stopped", "error", err)
		os.Exit(1)
	}
}
