// Package history persists analyzed items in sqlite, bounded to the newest
// entries, and fans updated collections out to subscribers.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// Store is a sqlite-backed history log. Appends run in a transaction that
// inserts the entry and evicts everything beyond the retention limit, so
// concurrent appends serialize instead of racing.
type Store struct {
	db    *sql.DB
	limit int
	sb    sq.StatementBuilderType

	mu      sync.Mutex
	subs    map[int]func(entries []domain.HistoryEntry)
	nextSub int
}

var _ ports.HistoryLog = (*Store)(nil)
var _ ports.FlagStore = (*Store)(nil)

// Open opens or creates the database at path. A limit of zero or less falls
// back to domain.HistoryLimit.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = domain.HistoryLimit
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS history_entries (
  seq          INTEGER PRIMARY KEY AUTOINCREMENT,
  id           TEXT NOT NULL UNIQUE,
  image_url    TEXT NOT NULL DEFAULT '',
  text_excerpt TEXT NOT NULL DEFAULT '',
  author       TEXT NOT NULL DEFAULT '',
  verdict      TEXT NOT NULL,
  risk         TEXT NOT NULL,
  created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta_flags (
  name  TEXT PRIMARY KEY,
  value INTEGER NOT NULL CHECK (value IN (0,1))
);
	`); err != nil {
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{
		db:    db,
		limit: limit,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Question),
		subs:  make(map[int]func(entries []domain.HistoryEntry)),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores one entry and drops the oldest entries beyond the limit.
// Subscribers receive the updated collection after the transaction commits.
func (s *Store) Append(ctx context.Context, entry domain.HistoryEntry) error {
	verdict, err := json.Marshal(entry.Verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := s.sb.Insert("history_entries").
		Columns("id", "image_url", "text_excerpt", "author", "verdict", "risk", "created_at").
		Values(entry.ID, entry.ImageURL, entry.TextExcerpt, entry.Author, string(verdict), string(entry.Risk), entry.CreatedAt.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	query, args, err = s.sb.Delete("history_entries").
		Where(sq.Expr("seq NOT IN (SELECT seq FROM history_entries ORDER BY seq DESC LIMIT ?)", s.limit)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build eviction: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("evict entries: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}

	s.notify(ctx)
	return nil
}

// List returns all retained entries in insertion order, oldest first.
func (s *Store) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	query, args, err := s.sb.Select("id", "image_url", "text_excerpt", "author", "verdict", "risk", "created_at").
		From("history_entries").
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			e       domain.HistoryEntry
			verdict string
			risk    string
			created string
		)
		if err := rows.Scan(&e.ID, &e.ImageURL, &e.TextExcerpt, &e.Author, &verdict, &risk, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(verdict), &e.Verdict); err != nil {
			return nil, fmt.Errorf("decode verdict for %s: %w", e.ID, err)
		}
		e.Risk = domain.RiskLevel(risk)
		if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// Subscribe registers fn for collection updates. The current collection is
// delivered immediately, then again after every successful append. The
// returned cancel removes the subscription.
func (s *Store) Subscribe(fn func(entries []domain.HistoryEntry)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	if entries, err := s.List(context.Background()); err == nil {
		fn(entries)
	}

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetFlag persists a named boolean.
func (s *Store) SetFlag(ctx context.Context, name string, value bool) error {
	stored := 0
	if value {
		stored = 1
	}
	query, args, err := s.sb.Insert("meta_flags").
		Columns("name", "value").
		Values(name, stored).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build flag upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set flag %s: %w", name, err)
	}
	return nil
}

// Flag reads a named boolean. Unknown names are false.
func (s *Store) Flag(ctx context.Context, name string) (bool, error) {
	query, args, err := s.sb.Select("value").
		From("meta_flags").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build flag select: %w", err)
	}

	var value int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read flag %s: %w", name, err)
	}
	return value == 1, nil
}

func (s *Store) notify(ctx context.Context) {
	s.mu.Lock()
	fns := make([]func(entries []domain.HistoryEntry), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	entries, err := s.List(ctx)
	if err != nil {
		return
	}
	for _, fn := range fns {
		fn(entries)
	}
}
