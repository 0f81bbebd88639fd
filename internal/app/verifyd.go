package app

import (
	"context"
	"log/slog"

	"FeedSentinel/internal/config"
	"FeedSentinel/internal/logging"
	"FeedSentinel/internal/verify"
)

// Verifier hosts the analysis backend: search grounding, image provenance,
// and the LLM judge behind the HTTP analysis endpoints.
type Verifier struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewVerifier builds a verification service instance.
func NewVerifier(cfg config.Config, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Verifier{cfg: cfg, logger: logger}
}

// Run serves the analysis endpoints until the listener fails.
func (v *Verifier) Run(_ context.Context) error {
	service := verify.NewService(
		verify.NewBraveSearcher(v.cfg.Verify.Search),
		verify.NewChatJudge(v.cfg.Verify.Judge),
		verify.NewWebDetector(v.cfg.Verify.Vision),
		v.cfg.Verify,
		v.logger.With("component", "verify"),
	)

	if v.cfg.Verify.MockMode {
		v.logger.Warn("mock mode enabled, verdicts are canned")
	}

	server := verify.NewServer(service, v.cfg.Verify.ListenAddr, v.logger.With("component", "verify.http"))
	v.logger.Info("verification service listening", "addr", v.cfg.Verify.ListenAddr)
	return server.Run()
}
