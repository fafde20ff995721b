// Package store persists player preferences and play history in SQLite.
package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNoPreferences is returned when nothing has been saved yet.
var ErrNoPreferences = errors.New("no saved preferences")

// Preferences is the state restored on the next start.
type Preferences struct {
	Volume      float64
	Repeat      string
	LastIndex   int
	LastTrackID string
	UpdatedAt   time.Time
}

// HistoryEntry records one track that was played.
type HistoryEntry struct {
	ID       string
	TrackID  string
	Title    string
	Outcome  string // "ended", "skipped" or "errored"
	Position time.Duration
	PlayedAt time.Time
}

// Store is a SQLite-backed preference and history store.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (or creates) the database at path. ":memory:" gives a private in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open store")
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		volume        REAL NOT NULL,
		repeat        TEXT NOT NULL DEFAULT 'none',
		last_index    INTEGER NOT NULL DEFAULT 0,
		last_track_id TEXT NOT NULL DEFAULT '',
		updated_at    INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create preferences table")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS play_history (
		id          TEXT PRIMARY KEY,
		track_id    TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		outcome     TEXT NOT NULL,
		position_ms INTEGER NOT NULL DEFAULT 0,
		played_at   INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create play_history table")
	}

	return &Store{db: db, now: time.Now}, nil
}

// LoadPreferences returns the saved preferences or ErrNoPreferences.
func (s *Store) LoadPreferences(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		p         Preferences
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT volume, repeat, last_index, last_track_id, updated_at FROM preferences WHERE id = 1`,
	).Scan(&p.Volume, &p.Repeat, &p.LastIndex, &p.LastTrackID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, ErrNoPreferences
	}
	if err != nil {
		return Preferences{}, errors.Wrap(err, "failed to load preferences")
	}
	p.UpdatedAt = time.UnixMilli(updatedAt)
	return p, nil
}

// SavePreferences replaces the saved preferences.
func (s *Store) SavePreferences(ctx context.Context, p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences (id, volume, repeat, last_index, last_track_id, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume=excluded.volume,
			repeat=excluded.repeat,
			last_index=excluded.last_index,
			last_track_id=excluded.last_track_id,
			updated_at=excluded.updated_at`,
		p.Volume, p.Repeat, p.LastIndex, p.LastTrackID, s.now().UnixMilli())
	if err != nil {
		return errors.Wrap(err, "failed to save preferences")
	}
	return nil
}

// AppendHistory records a played track and returns the stored entry.
func (s *Store) AppendHistory(ctx context.Context, e HistoryEntry) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.PlayedAt.IsZero() {
		e.PlayedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO play_history (id, track_id, title, outcome, position_ms, played_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.TrackID, e.Title, e.Outcome, e.Position.Milliseconds(), e.PlayedAt.UnixMilli())
	if err != nil {
		return HistoryEntry{}, errors.Wrap(err, "failed to append history")
	}
	return e, nil
}

// RecentHistory returns up to limit entries, newest first.
func (s *Store) RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, track_id, title, outcome, position_ms, played_at FROM play_history
		ORDER BY played_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query history")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e          HistoryEntry
			positionMs int64
			playedAt   int64
		)
		if err := rows.Scan(&e.ID, &e.TrackID, &e.Title, &e.Outcome, &positionMs, &playedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan history")
		}
		e.Position = time.Duration(positionMs) * time.Millisecond
		e.PlayedAt = time.UnixMilli(playedAt)
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "failed to read history")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
