// Package store keeps named save slots and a message journal in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/samlin1112/CitySim/pkg/persist"
	"github.com/samlin1112/CitySim/pkg/session"
	"github.com/samlin1112/CitySim/pkg/sim"
)

// ErrNotFound is returned when no save slot matches.
var ErrNotFound = errors.New("save slot not found")

// Store wraps a SQLite connection.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Slot describes a stored save without its document.
type Slot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	TickCount  int       `json:"tick_count"`
	Money      int       `json:"money"`
	Population int       `json:"population"`
	CreatedAt  time.Time `json:"created_at"`
}

type slotRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Width      int    `db:"width"`
	Height     int    `db:"height"`
	TickCount  int    `db:"tick_count"`
	Money      int    `db:"money"`
	Population int    `db:"population"`
	CreatedAt  int64  `db:"created_at"`
}

func (r slotRow) slot() Slot {
	return Slot{
		ID:         r.ID,
		Name:       r.Name,
		Width:      r.Width,
		Height:     r.Height,
		TickCount:  r.TickCount,
		Money:      r.Money,
		Population: r.Population,
		CreatedAt:  time.Unix(0, r.CreatedAt).UTC(),
	}
}

// JournalEntry is one persisted session message.
type JournalEntry struct {
	SessionID string    `json:"session_id"`
	Time      time.Time `json:"time"`
	Message   string    `json:"message"`
}

// Open opens or creates a SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		tick_count INTEGER NOT NULL,
		money INTEGER NOT NULL,
		population INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		document BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		at INTEGER NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_name ON saves(name);
	CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session_id);
	`)
	return err
}

// SaveCity stores c as a new slot under name. Names need not be unique;
// loading by name picks the newest.
func (s *Store) SaveCity(ctx context.Context, name string, c *sim.City) (Slot, error) {
	var doc bytes.Buffer
	if err := persist.Encode(&doc, c, persist.FormatXML); err != nil {
		return Slot{}, err
	}
	row := slotRow{
		ID:         uuid.NewString(),
		Name:       name,
		Width:      c.Width,
		Height:     c.Height,
		TickCount:  c.TickCount,
		Money:      c.Money,
		Population: c.Population,
		CreatedAt:  s.now().UnixNano(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO saves
		(id, name, width, height, tick_count, money, population, created_at, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Name, row.Width, row.Height, row.TickCount, row.Money, row.Population, row.CreatedAt, doc.Bytes())
	if err != nil {
		return Slot{}, fmt.Errorf("insert save: %w", err)
	}
	return row.slot(), nil
}

// LoadCity restores the slot whose id is ref, or else the newest slot
// named ref.
func (s *Store) LoadCity(ctx context.Context, ref string) (*sim.City, Slot, error) {
	var rec struct {
		slotRow
		Document []byte `db:"document"`
	}
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM saves
		WHERE id = ? OR name = ?
		ORDER BY id = ? DESC, created_at DESC, rowid DESC
		LIMIT 1`, ref, ref, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Slot{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	if err != nil {
		return nil, Slot{}, fmt.Errorf("query save: %w", err)
	}
	c, err := persist.Decode(bytes.NewReader(rec.Document), persist.FormatXML)
	if err != nil {
		return nil, Slot{}, fmt.Errorf("slot %s: %w", rec.ID, err)
	}
	return c, rec.slot(), nil
}

// List returns every slot, newest first.
func (s *Store) List(ctx context.Context) ([]Slot, error) {
	var rows []slotRow
	err := s.db.SelectContext(ctx, &rows, `SELECT
		id, name, width, height, tick_count, money, population, created_at
		FROM saves ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	slots := make([]Slot, len(rows))
	for i, r := range rows {
		slots[i] = r.slot()
	}
	return slots, nil
}

// Delete removes a slot by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// AppendJournal records a session message.
func (s *Store) AppendJournal(ctx context.Context, sessionID uuid.UUID, msg string) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO journal (session_id, at, message) VALUES (?, ?, ?)",
		sessionID.String(), s.now().UnixNano(), msg)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// Journal returns up to limit messages of a session, oldest first. A limit
// below 1 returns all of them.
func (s *Store) Journal(ctx context.Context, sessionID uuid.UUID, limit int) ([]JournalEntry, error) {
	if limit < 1 {
		limit = -1
	}
	var rows []struct {
		SessionID string `db:"session_id"`
		At        int64  `db:"at"`
		Message   string `db:"message"`
	}
	err := s.db.SelectContext(ctx, &rows, `SELECT session_id, at, message FROM (
		SELECT id, session_id, at, message FROM journal
		WHERE session_id = ? ORDER BY id DESC LIMIT ?
	) ORDER BY id ASC`, sessionID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	out := make([]JournalEntry, len(rows))
	for i, r := range rows {
		out[i] = JournalEntry{SessionID: r.SessionID, Time: time.Unix(0, r.At).UTC(), Message: r.Message}
	}
	return out, nil
}

// JournalSink records every message of sessionID. Write failures are
// logged, not returned, since sinks cannot fail.
func (s *Store) JournalSink(sessionID uuid.UUID, logger *slog.Logger) session.Sink {
	return session.SinkFunc(func(msg string) {
		if err := s.AppendJournal(context.Background(), sessionID, msg); err != nil {
			logger.Error("journal write failed", "error", err)
		}
	})
}
