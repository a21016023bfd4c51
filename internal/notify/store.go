package notify

import (
	"database/sql"
	"fmt"
	"time"

	"guardian/internal/events"
)

// Service is one configured notification target.
type Service struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ShoutrrrURL string          `json:"shoutrrr_url"`
	MinSeverity events.Severity `json:"min_severity"`
	Enabled     bool            `json:"enabled"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InitSchema creates the notification_services table.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS notification_services (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL,
		shoutrrr_url TEXT NOT NULL,
		min_severity INTEGER NOT NULL DEFAULT 1,
		enabled      INTEGER NOT NULL DEFAULT 1,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create notification_services table: %w", err)
	}
	return nil
}

// AddService registers a new notification target.
func AddService(db *sql.DB, name, shoutrrrURL string, minSeverity events.Severity) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO notification_services (name, shoutrrr_url, min_severity)
		VALUES (?, ?, ?)`,
		name, shoutrrrURL, int(minSeverity))
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification service: %w", err)
	}
	return res.LastInsertId()
}

// DeleteService removes a notification target.
func DeleteService(db *sql.DB, id int64) error {
	_, err := db.Exec(`DELETE FROM notification_services WHERE id = ?`, id)
	return err
}

// SetServiceEnabled toggles a notification target.
func SetServiceEnabled(db *sql.DB, id int64, enabled bool) error {
	_, err := db.Exec(`UPDATE notification_services SET enabled = ? WHERE id = ?`,
		boolToInt(enabled), id)
	return err
}

// ListServices returns all notification targets.
func ListServices(db *sql.DB) ([]Service, error) {
	return queryServices(db, `
		SELECT id, name, shoutrrr_url, min_severity, enabled, created_at
		FROM notification_services
		ORDER BY id`)
}

// ListEnabledServices returns only the enabled targets.
func ListEnabledServices(db *sql.DB) ([]Service, error) {
	return queryServices(db, `
		SELECT id, name, shoutrrr_url, min_severity, enabled, created_at
		FROM notification_services
		WHERE enabled = 1
		ORDER BY id`)
}

func queryServices(db *sql.DB, query string) ([]Service, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		var enabled int
		var severity int
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.ShoutrrrURL, &severity, &enabled, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification service: %w", err)
		}
		s.MinSeverity = events.Severity(severity)
		s.Enabled = enabled == 1
		s.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		services = append(services, s)
	}
	return services, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
