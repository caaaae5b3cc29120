// Package ledger persists the set of already-processed message IDs and the
// set of already-sent auto-replies. Both survive restarts; the message set is
// what guarantees each application is scored and notified at most once.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrLedgerUnavailable means the ledger store could not be read at startup.
// The monitor refuses to start in that case rather than risk re-notifying
// every historical application.
var ErrLedgerUnavailable = errors.New("dedup ledger unavailable")

const schema = `
CREATE TABLE IF NOT EXISTS processed_messages (
	message_id TEXT PRIMARY KEY,
	uid        TEXT NOT NULL DEFAULT '',
	marked_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sent_replies (
	identifier TEXT PRIMARY KEY,
	sent_at    INTEGER NOT NULL
);
`

// Ledger is a durable processed-message set with an in-memory cache for O(1)
// membership checks. Writes go to sqlite first, then the cache; the cache is
// written by the polling loop only.
type Ledger struct {
	db *sql.DB

	mu      sync.RWMutex
	seen    map[string]struct{}
	replied map[string]struct{}
}

// Open opens (creating if needed) the ledger database and loads both tables
// into memory. Every failure here wraps ErrLedgerUnavailable.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLedgerUnavailable, path, err)
	}
	// The polling loop is the only writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrLedgerUnavailable, err)
	}

	l := &Ledger{
		db:      db,
		seen:    make(map[string]struct{}),
		replied: make(map[string]struct{}),
	}

	if err := l.load(); err != nil {
		db.Close()
		return nil, err
	}

	return l, nil
}

func (l *Ledger) load() error {
	if err := loadColumn(l.db, `SELECT message_id FROM processed_messages`, l.seen); err != nil {
		return fmt.Errorf("%w: load processed messages: %v", ErrLedgerUnavailable, err)
	}
	if err := loadColumn(l.db, `SELECT identifier FROM sent_replies`, l.replied); err != nil {
		return fmt.Errorf("%w: load sent replies: %v", ErrLedgerUnavailable, err)
	}
	return nil
}

func loadColumn(db *sql.DB, query string, into map[string]struct{}) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		into[v] = struct{}{}
	}
	return rows.Err()
}

// Contains reports whether the message ID has already been processed.
func (l *Ledger) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// Mark durably records a processed message ID. Marking twice is a no-op.
// The database write happens before the cache update so a crash can only
// leave a marked-but-uncached entry until the next restart reloads it.
func (l *Ledger) Mark(ctx context.Context, id, uid string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO processed_messages (message_id, uid, marked_at) VALUES (?, ?, ?)
		 ON CONFLICT(message_id) DO NOTHING`,
		id, uid, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("mark message %s: %w", id, err)
	}

	l.mu.Lock()
	l.seen[id] = struct{}{}
	l.mu.Unlock()
	return nil
}

// HasReplied reports whether an auto-reply was already sent for the
// identifier (sender plus day, so one reply per sender per day).
func (l *Ledger) HasReplied(identifier string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.replied[identifier]
	return ok
}

// MarkReplied durably records a sent auto-reply. Idempotent.
func (l *Ledger) MarkReplied(ctx context.Context, identifier string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO sent_replies (identifier, sent_at) VALUES (?, ?)
		 ON CONFLICT(identifier) DO NOTHING`,
		identifier, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("mark reply %s: %w", identifier, err)
	}

	l.mu.Lock()
	l.replied[identifier] = struct{}{}
	l.mu.Unlock()
	return nil
}

// Size returns the number of processed message IDs.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
