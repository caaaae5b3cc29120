package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shsnge/job-application-monitor/internal/models"
)

// Overflow is the durable local queue for records the sink rejected after
// exhausted retries. Queued records survive restarts and are replayed by the
// drain command.
type Overflow struct {
	db *sql.DB
}

const overflowSchema = `
CREATE TABLE IF NOT EXISTS queued_records (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	payload   TEXT NOT NULL,
	queued_at INTEGER NOT NULL
);
`

// OpenOverflow opens (creating if needed) the overflow queue database.
func OpenOverflow(path string) (*Overflow, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open overflow queue %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(overflowSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create overflow schema: %w", err)
	}

	return &Overflow{db: db}, nil
}

// Enqueue parks one record.
func (o *Overflow) Enqueue(ctx context.Context, rec models.ApplicationRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	_, err = o.db.ExecContext(ctx,
		`INSERT INTO queued_records (payload, queued_at) VALUES (?, ?)`,
		string(payload), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("enqueue record: %w", err)
	}
	return nil
}

// Len returns the queue depth.
func (o *Overflow) Len(ctx context.Context) (int, error) {
	var n int
	err := o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queued_records`).Scan(&n)
	return n, err
}

// Drain replays queued records into the sink in queue order, deleting each on
// success. It stops at the first failure and reports how many were drained,
// leaving the remainder queued.
func (o *Overflow) Drain(ctx context.Context, sink Sink) (int, error) {
	rows, err := o.db.QueryContext(ctx, `SELECT id, payload FROM queued_records ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("list queued records: %w", err)
	}

	type queued struct {
		id      int64
		payload string
	}
	var pending []queued
	for rows.Next() {
		var q queued
		if err := rows.Scan(&q.id, &q.payload); err != nil {
			rows.Close()
			return 0, err
		}
		pending = append(pending, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	drained := 0
	for _, q := range pending {
		var rec models.ApplicationRecord
		if err := json.Unmarshal([]byte(q.payload), &rec); err != nil {
			return drained, fmt.Errorf("decode queued record %d: %w", q.id, err)
		}

		if _, err := sink.Append(ctx, rec); err != nil {
			return drained, fmt.Errorf("replay queued record %d: %w", q.id, err)
		}

		if _, err := o.db.ExecContext(ctx, `DELETE FROM queued_records WHERE id = ?`, q.id); err != nil {
			return drained, fmt.Errorf("dequeue record %d: %w", q.id, err)
		}
		drained++
	}

	return drained, nil
}

// Close closes the underlying database.
func (o *Overflow) Close() error {
	return o.db.Close()
}
