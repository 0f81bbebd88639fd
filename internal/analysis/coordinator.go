// Package analysis drives each feed item through its single analysis
// attempt: Idle, then Loading, then exactly one of Result or Error.
package analysis

import (
	"context"
	"log/slog"
	"sync"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// ChangeFunc observes every state transition with a snapshot of the item.
// The display layer renders badges from these snapshots.
type ChangeFunc func(item domain.ItemAnalysis)

// Coordinator owns the per-item state machines. Terminal states are final:
// there is no retry and no re-entry, and an item whose record is inert
// stays Idle forever.
type Coordinator struct {
	analyzer ports.Analyzer
	onChange ChangeFunc
	logger   *slog.Logger

	mu    sync.Mutex
	items map[string]domain.ItemAnalysis
}

// New constructs a coordinator. onChange may be nil.
func New(analyzer ports.Analyzer, onChange ChangeFunc, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		analyzer: analyzer,
		onChange: onChange,
		logger:   logger,
		items:    map[string]domain.ItemAnalysis{},
	}
}

// Submit registers a freshly extracted item and, when the record carries
// analyzable content, launches its one round trip. A second submission for
// the same item id is ignored. The boundary is checked before anything is
// sent: an already-invalidated relay fails the item without a network call.
func (c *Coordinator) Submit(ctx context.Context, itemID string, record domain.ExtractedRecord) {
	c.mu.Lock()
	if _, exists := c.items[itemID]; exists {
		c.mu.Unlock()
		return
	}
	item := domain.ItemAnalysis{ItemID: itemID, State: domain.StateIdle, Record: record}
	c.items[itemID] = item
	c.mu.Unlock()

	c.emit(item)

	if record.Inert() {
		c.debug("inert record stays idle", "item", itemID)
		return
	}

	if c.analyzer == nil {
		return
	}

	if err := c.analyzer.Ready(); err != nil {
		c.fail(itemID, err.Error())
		return
	}

	c.transition(itemID, domain.StateIdle, func(item *domain.ItemAnalysis) {
		item.State = domain.StateLoading
	})

	go c.analyze(ctx, itemID, record)
}

// analyze performs the round trip. No timeout is imposed here: the call
// settles when the relay settles.
func (c *Coordinator) analyze(ctx context.Context, itemID string, record domain.ExtractedRecord) {
	verdict, err := c.analyzer.Analyze(ctx, record)
	if err != nil {
		c.fail(itemID, err.Error())
		return
	}

	c.transition(itemID, domain.StateLoading, func(item *domain.ItemAnalysis) {
		item.State = domain.StateResult
		item.Verdict = verdict
		item.Risk = domain.RiskFor(verdict)
	})
}

func (c *Coordinator) fail(itemID, message string) {
	c.transition(itemID, "", func(item *domain.ItemAnalysis) {
		item.State = domain.StateError
		item.Message = message
	})
}

// transition applies mutate when the item exists, is not terminal, and
// matches the expected state (empty means any non-terminal state).
func (c *Coordinator) transition(itemID string, from domain.AnalysisState, mutate func(*domain.ItemAnalysis)) {
	c.mu.Lock()
	item, ok := c.items[itemID]
	if !ok || item.State == domain.StateResult || item.State == domain.StateError {
		c.mu.Unlock()
		return
	}
	if from != "" && item.State != from {
		c.mu.Unlock()
		return
	}

	mutate(&item)
	c.items[itemID] = item
	c.mu.Unlock()

	c.emit(item)
}

// State returns the current snapshot for an item.
func (c *Coordinator) State(itemID string) (domain.ItemAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[itemID]
	return item, ok
}

func (c *Coordinator) emit(item domain.ItemAnalysis) {
	if c.onChange != nil {
		c.onChange(item)
	}

	switch item.State {
	case domain.StateResult:
		c.debug("analysis settled", "item", item.ItemID, "risk", item.Risk)
	case domain.StateError:
		c.debug("analysis failed", "item", item.ItemID, "message", item.Message)
	}
}

func (c *Coordinator) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
