package app

import (
	"context"
	"log/slog"

	"FeedSentinel/internal/config"
	"FeedSentinel/internal/infrastructure/bus"
	"FeedSentinel/internal/infrastructure/classifier"
	"FeedSentinel/internal/infrastructure/history"
	"FeedSentinel/internal/logging"
	"FeedSentinel/internal/relay"
)

// Daemon is the privileged side of the pipeline: the relay service, the
// classifier HTTP client, and the history store, optionally hosting the
// embedded bus broker.
type Daemon struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewDaemon builds a daemon instance.
func NewDaemon(cfg config.Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Daemon{cfg: cfg, logger: logger}
}

// Run starts the relay service and blocks until ctx ends.
func (d *Daemon) Run(ctx context.Context) error {
	busURL := d.cfg.Bus.URL
	if d.cfg.Bus.EmbeddedBroker() {
		embedded, err := bus.StartEmbedded(d.cfg.Bus.Host, d.cfg.Bus.Port)
		if err != nil {
			return err
		}
		defer embedded.Shutdown()
		busURL = embedded.ClientURL()
		d.logger.Info("embedded bus started", "url", busURL)
	}

	conn, err := bus.Connect(busURL, d.logger.With("component", "bus"))
	if err != nil {
		return err
	}
	defer conn.Close()

	store, err := history.Open(d.cfg.History.Path, d.cfg.History.Limit)
	if err != nil {
		return err
	}
	defer store.Close()

	service := relay.NewService(
		conn,
		classifier.NewClient(d.cfg.Classifier.URL),
		store,
		store,
		bus.NewNotifier(conn),
		d.logger.With("component", "relay"),
	)
	if err := service.Start(); err != nil {
		return err
	}
	defer service.Stop()

	d.logger.Info("relay daemon ready", "bus", busURL, "classifier", d.cfg.Classifier.URL)
	<-ctx.Done()
	return nil
}
