package feed

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"FeedSentinel/internal/config"
	"FeedSentinel/pkg/obswire"
)

// ItemFunc receives each qualifying feed item exactly once, at the moment
// its visible-area ratio first reaches the threshold.
type ItemFunc func(ctx context.Context, itemID string, item *goquery.Selection)

// LifecycleFunc receives opaque platform triggers (install, reload).
type LifecycleFunc func(ctx context.Context, name string)

// Watcher turns the capture-layer event stream into exactly-once item
// detections. It tracks candidate items found in the snapshot and in added
// subtrees, and hands an item off the first time a viewport event reports
// it sufficiently visible. Both membership sets are size-capped LRUs, so
// membership is weak: a candidate that never becomes visible is eventually
// evicted by newer detections instead of pinning its parsed subtree forever,
// and a handed-off id evicted after enough newer detections could in
// principle fire again.
type Watcher struct {
	selector    string
	threshold   float64
	candidates  *lru.Cache[string, *goquery.Selection]
	seen        *lru.Cache[string, struct{}]
	onItem      ItemFunc
	onLifecycle LifecycleFunc
	logger      *slog.Logger
	stop        chan struct{}
}

// NewWatcher builds a watcher from config. onLifecycle may be nil.
func NewWatcher(cfg config.WatcherConfig, onItem ItemFunc, onLifecycle LifecycleFunc, logger *slog.Logger) (*Watcher, error) {
	selector := cfg.ItemSelector
	if selector == "" {
		selector = "article"
	}

	threshold := cfg.VisibilityThreshold
	if threshold <= 0 {
		threshold = 0.3
	}

	size := cfg.SeenCacheSize
	if size <= 0 {
		size = 512
	}

	seen, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	candidates, err := lru.New[string, *goquery.Selection](size)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		selector:    selector,
		threshold:   threshold,
		candidates:  candidates,
		seen:        seen,
		onItem:      onItem,
		onLifecycle: onLifecycle,
		logger:      logger,
	}, nil
}

// Start launches the event loop in the background.
func (w *Watcher) Start(ctx context.Context, events <-chan obswire.Event) error {
	if w.stop != nil {
		return nil
	}

	w.stop = make(chan struct{})
	go func() {
		_ = w.Run(ctx, events)
	}()
	return nil
}

// Stop halts a loop started with Start.
func (w *Watcher) Stop() {
	if w.stop == nil {
		return
	}
	close(w.stop)
	w.stop = nil
}

// Run consumes events until the channel closes or ctx is done. All watcher
// state is touched only from this loop.
func (w *Watcher) Run(ctx context.Context, events <-chan obswire.Event) error {
	stop := w.stop
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev obswire.Event) {
	switch ev.Type {
	case obswire.TypeSnapshot:
		w.scanMarkup(ev.HTML)
	case obswire.TypeAdded:
		for _, node := range ev.Nodes {
			// Insertions inside an existing item never introduce new items.
			if node.WithinItem != "" {
				continue
			}
			w.scanMarkup(node.HTML)
		}
	case obswire.TypeViewport:
		w.viewport(ctx, ev.ID, ev.Ratio)
	case obswire.TypeLifecycle:
		if w.onLifecycle != nil {
			w.onLifecycle(ctx, ev.Name)
		}
	default:
		w.debug("skip unknown event", "type", ev.Type)
	}
}

// scanMarkup registers every topmost item-selector match in the fragment.
// Parse and traversal failures are swallowed: a bad subtree must never take
// the watcher down.
func (w *Watcher) scanMarkup(html string) {
	if strings.TrimSpace(html) == "" {
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		w.debug("skip unparseable markup", "error", err)
		return
	}

	doc.Find(w.selector).Each(func(_ int, sel *goquery.Selection) {
		w.register(sel)
	})
}

func (w *Watcher) register(sel *goquery.Selection) {
	// Only the topmost match counts: nested matches belong to their
	// enclosing item.
	if sel.ParentsFiltered(w.selector).Length() > 0 {
		return
	}

	id := sel.AttrOr(obswire.IDAttr, "")
	if id == "" {
		w.debug("skip item without capture id")
		return
	}

	if w.seen.Contains(id) {
		return
	}
	if w.candidates.Contains(id) {
		return
	}

	w.candidates.Add(id, sel)
	w.debug("track candidate", "item", id, "candidates", w.candidates.Len())
}

func (w *Watcher) viewport(ctx context.Context, id string, ratio float64) {
	if ratio < w.threshold {
		return
	}
	if w.seen.Contains(id) {
		return
	}

	sel, ok := w.candidates.Get(id)
	if !ok {
		return
	}

	w.seen.Add(id, struct{}{})
	w.candidates.Remove(id)

	w.debug("item visible", "item", id, "ratio", ratio)
	if w.onItem != nil {
		w.onItem(ctx, id, sel)
	}
}

func (w *Watcher) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
