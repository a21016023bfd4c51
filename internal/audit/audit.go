// Package audit keeps a durable trail of operator-visible events — logins,
// config changes, restarts — in the appliance's local SQLite database.
package audit

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"guardian/internal/events"
)

// Entry is one recorded event.
type Entry struct {
	ID        int64     `json:"id"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	TaskID    string    `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Log records events from the bus into SQLite.
type Log struct {
	db *sql.DB
}

// NewLog creates the audit log and ensures its schema exists.
func NewLog(db *sql.DB) (*Log, error) {
	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) migrate() error {
	_, err := l.db.Exec(`
	CREATE TABLE IF NOT EXISTS audit_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		severity   TEXT NOT NULL,
		message    TEXT NOT NULL,
		task_id    TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_log table: %w", err)
	}
	return nil
}

// Attach subscribes the log to every event on the bus.
func (l *Log) Attach(bus *events.Bus) {
	bus.Subscribe(func(e events.Event) {
		if err := l.Record(e); err != nil {
			log.Printf("audit: record %s: %v", e.Type, err)
		}
	})
}

// Record writes one event.
func (l *Log) Record(e events.Event) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := l.db.Exec(`
		INSERT INTO audit_log (event_type, severity, message, task_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(e.Type), e.Severity.String(), e.Message, e.TaskID,
		ts.Format("2006-01-02 15:04:05"))
	return err
}

// Recent returns the newest entries, most recent first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := l.db.Query(`
		SELECT id, event_type, severity, message, COALESCE(task_id, ''), created_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.EventType, &e.Severity, &e.Message, &e.TaskID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
