// Package bus manages the NATS connection shared by the agent and the
// daemon, plus the embedded broker used in single-host deployments.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
	"FeedSentinel/internal/relay"
)

// Connect dials the bus, retrying the initial connection.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1 * time.Second),
	}
	if logger != nil {
		opts = append(opts,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("bus disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("bus reconnected", "url", nc.ConnectedUrl())
			}),
		)
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to bus at %s: %w", url, err)
	}
	return nc, nil
}

// Embedded is an in-process broker so a single host needs no external NATS.
type Embedded struct {
	srv *natsserver.Server
}

// StartEmbedded boots the broker and waits until it accepts connections.
func StartEmbedded(host string, port int) (*Embedded, error) {
	opts := &natsserver.Options{
		Host:   host,
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("configure embedded bus: %w", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		return nil, errors.New("embedded bus not ready")
	}
	return &Embedded{srv: srv}, nil
}

// ClientURL is the address local clients should dial.
func (e *Embedded) ClientURL() string {
	return e.srv.ClientURL()
}

// Shutdown stops the broker and waits for it to exit.
func (e *Embedded) Shutdown() {
	e.srv.Shutdown()
	e.srv.WaitForShutdown()
}

// Notifier broadcasts history collections over the bus.
type Notifier struct {
	conn *nats.Conn
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wraps an established connection.
func NewNotifier(conn *nats.Conn) *Notifier {
	return &Notifier{conn: conn}
}

// PublishHistory pushes the full collection to every display-layer listener.
func (n *Notifier) PublishHistory(_ context.Context, entries []domain.HistoryEntry) error {
	data, err := json.Marshal(relay.HistoryPayload{Entries: entries})
	if err != nil {
		return fmt.Errorf("encode history payload: %w", err)
	}
	if err := n.conn.Publish(relay.SubjectHistoryChanged, data); err != nil {
		return fmt.Errorf("publish history: %w", err)
	}
	return nil
}
