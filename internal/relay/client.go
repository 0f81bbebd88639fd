package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

var _ ports.Analyzer = (*Client)(nil)

// Client is the agent side of the relay. It satisfies ports.Analyzer by
// sending each record over the bus and waiting for the daemon's reply.
type Client struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewClient wraps an established bus connection.
func NewClient(conn *nats.Conn, logger *slog.Logger) *Client {
	return &Client{conn: conn, subject: SubjectAnalyze, logger: logger}
}

// Ready reports whether the relay boundary is still usable. A closed or
// missing connection maps to domain.ErrRelayGone so callers can fail items
// without issuing a request.
func (c *Client) Ready() error {
	if c.conn == nil || c.conn.IsClosed() {
		return domain.ErrRelayGone
	}
	return nil
}

// Analyze sends the record and blocks until the daemon replies or ctx ends.
// No deadline is imposed here; slow verdicts arrive whenever they arrive.
func (c *Client) Analyze(ctx context.Context, record domain.ExtractedRecord) (domain.Verdict, error) {
	req := AnalyzeRequest{ID: uuid.NewString(), Record: record}
	data, err := json.Marshal(req)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("encode analyze request: %w", err)
	}

	msg, err := c.conn.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) || errors.Is(err, nats.ErrConnectionClosed) {
			return domain.Verdict{}, domain.ErrRelayGone
		}
		return domain.Verdict{}, fmt.Errorf("analyze request: %w", err)
	}

	var reply AnalyzeReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode analyze reply: %w", err)
	}
	if reply.Error != "" {
		return domain.Verdict{}, errors.New(reply.Error)
	}
	if reply.Verdict == nil {
		return domain.Verdict{}, errors.New("analyze reply carried no verdict")
	}
	return *reply.Verdict, nil
}

// NotifyLifecycle forwards a capture-layer lifecycle event to the daemon.
func (c *Client) NotifyLifecycle(name string) error {
	data, err := json.Marshal(LifecycleNotice{Name: name})
	if err != nil {
		return fmt.Errorf("encode lifecycle notice: %w", err)
	}
	if err := c.conn.Publish(SubjectLifecycle, data); err != nil {
		return fmt.Errorf("publish lifecycle notice: %w", err)
	}
	return nil
}
