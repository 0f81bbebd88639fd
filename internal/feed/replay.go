package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"FeedSentinel/pkg/obswire"
)

// ReplaySource streams observer events from a JSONL capture file, one event
// per line. Used for recorded sessions and tests.
type ReplaySource struct {
	logger *slog.Logger
}

var _ Source = (*ReplaySource)(nil)

// NewReplaySource wires an optional logger.
func NewReplaySource(logger *slog.Logger) *ReplaySource {
	return &ReplaySource{logger: logger}
}

// Name identifies the source inside the registry.
func (s *ReplaySource) Name() string {
	return "replay"
}

// Stream reads the capture file named by the "path" option and emits its
// events in order. The channel is closed after the last line; malformed
// lines are skipped.
func (s *ReplaySource) Stream(ctx context.Context, req Request) (<-chan obswire.Event, error) {
	path := req.Options["path"]
	if path == "" {
		return nil, fmt.Errorf("replay source requires a path option")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}

	out := make(chan obswire.Event)
	go func() {
		defer close(out)
		defer file.Close()

		sc := bufio.NewScanner(file)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}

			var ev obswire.Event
			if err := json.Unmarshal(line, &ev); err != nil {
				s.debug("skip malformed capture line", "error", err)
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			s.debug("capture file read stopped", "error", err)
		}
	}()

	return out, nil
}

func (s *ReplaySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
