// Package app wires configuration into the three runnable binaries: the
// page-attached agent, the relay daemon, and the verification service.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"FeedSentinel/internal/analysis"
	"FeedSentinel/internal/config"
	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/extract"
	"FeedSentinel/internal/feed"
	"FeedSentinel/internal/infrastructure/bus"
	"FeedSentinel/internal/logging"
	"FeedSentinel/internal/relay"
)

// Agent is the page-attached side of the pipeline. It consumes a capture
// event stream, detects feed items as they become visible, extracts their
// records, and drives each item's analysis through the relay client.
type Agent struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewAgent builds an agent instance.
func NewAgent(cfg config.Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Agent{cfg: cfg, logger: logger}
}

// Run connects the bus, resolves the configured event source, and consumes
// its stream until ctx ends or the stream closes.
func (a *Agent) Run(ctx context.Context) error {
	conn, err := bus.Connect(a.cfg.Bus.URL, a.logger.With("component", "bus"))
	if err != nil {
		return err
	}
	defer conn.Close()

	client := relay.NewClient(conn, a.logger.With("component", "relay.client"))

	badgeLog := a.logger.With("component", "badge")
	coordinator := analysis.New(client, func(item domain.ItemAnalysis) {
		// Stand-in for the display layer: every transition becomes a log
		// line the badge renderer would consume.
		badgeLog.Debug("badge update",
			"item", item.ItemID,
			"state", item.State,
			"risk", item.Risk,
			"message", item.Message,
		)
	}, a.logger.With("component", "coordinator"))

	onItem := func(ctx context.Context, itemID string, item *goquery.Selection) {
		coordinator.Submit(ctx, itemID, extract.Record(item))
	}
	onLifecycle := func(_ context.Context, name string) {
		if err := client.NotifyLifecycle(name); err != nil {
			a.logger.Warn("lifecycle forward failed", "event", name, "error", err)
		}
	}

	watcher, err := feed.NewWatcher(a.cfg.Watcher, onItem, onLifecycle, a.logger.With("component", "watcher"))
	if err != nil {
		return fmt.Errorf("build watcher: %w", err)
	}

	registry := feed.NewRegistry()
	registry.Register(feed.NewReplaySource(a.logger.With("component", "source.replay")))
	registry.Register(feed.NewBusSource(conn, a.logger.With("component", "source.bus")))

	source, err := registry.Resolve(a.cfg.Source.Driver)
	if err != nil {
		return err
	}

	events, err := source.Stream(ctx, feed.Request{Options: a.cfg.Source.Options})
	if err != nil {
		return fmt.Errorf("open %s event stream: %w", source.Name(), err)
	}

	a.logger.Info("agent running", "source", source.Name())
	return watcher.Run(ctx, events)
}
