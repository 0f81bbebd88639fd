package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
	"FeedSentinel/pkg/obswire"
)

// OnboardingFlag marks that the first-install notice has been handled.
const OnboardingFlag = "onboarded"

// Service is the daemon side of the relay. It answers analysis requests by
// calling the backend classifier, persists every successful verdict to the
// history log, and republishes the collection after each append. Failed
// analyses are replied to but never stored.
type Service struct {
	conn       *nats.Conn
	classifier ports.Classifier
	history    ports.HistoryLog
	flags      ports.FlagStore
	notifier   ports.Notifier
	logger     *slog.Logger
	now        func() time.Time
	subs       []*nats.Subscription
}

// NewService wires the daemon handlers onto an established bus connection.
func NewService(conn *nats.Conn, classifier ports.Classifier, history ports.HistoryLog, flags ports.FlagStore, notifier ports.Notifier, logger *slog.Logger) *Service {
	return &Service{
		conn:       conn,
		classifier: classifier,
		history:    history,
		flags:      flags,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Start subscribes the analyze, history and lifecycle handlers.
func (s *Service) Start() error {
	if len(s.subs) > 0 {
		return nil
	}

	analyze, err := s.conn.Subscribe(SubjectAnalyze, s.handleAnalyze)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectAnalyze, err)
	}
	s.subs = append(s.subs, analyze)

	list, err := s.conn.Subscribe(SubjectHistoryList, s.handleHistoryList)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectHistoryList, err)
	}
	s.subs = append(s.subs, list)

	lifecycle, err := s.conn.Subscribe(SubjectLifecycle, s.handleLifecycle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectLifecycle, err)
	}
	s.subs = append(s.subs, lifecycle)

	return nil
}

// Stop drains the subscriptions.
func (s *Service) Stop() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.debug("unsubscribe failed", "subject", sub.Subject, "error", err)
		}
	}
	s.subs = nil
}

func (s *Service) handleAnalyze(msg *nats.Msg) {
	var req AnalyzeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.reply(msg, AnalyzeReply{Error: fmt.Sprintf("decode analyze request: %v", err)})
		return
	}

	ctx := context.Background()
	verdict, err := s.classifier.AnalyzePost(ctx, req.Record)
	if err != nil {
		s.debug("analysis failed", "request", req.ID, "error", err)
		s.reply(msg, AnalyzeReply{ID: req.ID, Error: err.Error()})
		return
	}

	entry := domain.NewHistoryEntry(req.Record, verdict, s.now())
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Error("history append failed", "entry", entry.ID, "error", err)
	} else {
		s.publishHistory(ctx)
	}

	s.reply(msg, AnalyzeReply{ID: req.ID, Verdict: &verdict})
}

func (s *Service) handleHistoryList(msg *nats.Msg) {
	entries, err := s.history.List(context.Background())
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		entries = nil
	}
	data, err := json.Marshal(HistoryPayload{Entries: entries})
	if err != nil {
		s.logger.Error("encode history payload failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.debug("history reply failed", "error", err)
	}
}

// handleLifecycle marks the first install exactly once so onboarding material
// is not shown again after reloads or restarts.
func (s *Service) handleLifecycle(msg *nats.Msg) {
	var notice LifecycleNotice
	if err := json.Unmarshal(msg.Data, &notice); err != nil {
		s.debug("decode lifecycle notice failed", "error", err)
		return
	}
	if notice.Name != obswire.LifecycleInstall {
		return
	}

	ctx := context.Background()
	done, err := s.flags.Flag(ctx, OnboardingFlag)
	if err != nil {
		s.logger.Error("read onboarding flag failed", "error", err)
		return
	}
	if done {
		return
	}
	if err := s.flags.SetFlag(ctx, OnboardingFlag, true); err != nil {
		s.logger.Error("set onboarding flag failed", "error", err)
		return
	}
	s.logger.Info("first install recorded")
}

func (s *Service) publishHistory(ctx context.Context) {
	entries, err := s.history.List(ctx)
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		return
	}
	if err := s.notifier.PublishHistory(ctx, entries); err != nil {
		s.logger.Error("history broadcast failed", "error", err)
	}
}

func (s *Service) reply(msg *nats.Msg, reply AnalyzeReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("encode analyze reply failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.debug("analyze reply failed", "error", err)
	}
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
