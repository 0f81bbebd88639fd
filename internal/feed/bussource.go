package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"FeedSentinel/pkg/obswire"
)

// BusSource streams observer events published on the bus by a live capture
// bridge.
type BusSource struct {
	conn   *nats.Conn
	logger *slog.Logger
}

var _ Source = (*BusSource)(nil)

// NewBusSource wires an established bus connection.
func NewBusSource(conn *nats.Conn, logger *slog.Logger) *BusSource {
	return &BusSource{conn: conn, logger: logger}
}

// Name identifies the source inside the registry.
func (s *BusSource) Name() string {
	return "bus"
}

// Stream subscribes to the capture subject (the "subject" option, defaulting
// to all pages) and forwards decoded events until ctx is done.
func (s *BusSource) Stream(ctx context.Context, req Request) (<-chan obswire.Event, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("bus connection is not configured")
	}

	subject := req.Options["subject"]
	if subject == "" {
		subject = obswire.SubjectEvents + ".>"
	}

	msgs := make(chan *nats.Msg, 64)
	sub, err := s.conn.ChanSubscribe(subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	out := make(chan obswire.Event)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				s.debug("unsubscribe", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var ev obswire.Event
				if err := json.Unmarshal(msg.Data, &ev); err != nil {
					s.debug("skip malformed bus event", "subject", msg.Subject, "error", err)
					continue
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *BusSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
