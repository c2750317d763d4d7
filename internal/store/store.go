// Package store persists contact attempts and privacy-conscious visitor
// metrics in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logger"
	_ "modernc.org/sqlite"
)

// VisitorRetention is how long visitor rows are kept.
const VisitorRetention = 365 * 24 * time.Hour

// VisitorMetric is one tracked page view. The IP is stored hashed.
type VisitorMetric struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// AttemptRecord is one persisted contact attempt.
type AttemptRecord struct {
	ID          int64         `json:"id"`
	SenderName  string        `json:"sender_name"`
	SenderEmail string        `json:"sender_email"`
	Phase       contact.Phase `json:"phase"`
	Kind        contact.Kind  `json:"kind,omitempty"`
	Message     string        `json:"message"`
	DurationMS  int64         `json:"duration_ms"`
	CreatedAt   time.Time     `json:"created_at"`
}

// AdminStats feeds the admin dashboard.
type AdminStats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	TotalAttempts    int64           `json:"total_attempts"`
	MessagesSent     int64           `json:"messages_sent"`
	FailedAttempts   int64           `json:"failed_attempts"`
	TimedOutAttempts int64           `json:"timed_out_attempts"`
	RecentAttempts   []AttemptRecord `json:"recent_attempts"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
}

// Store wraps the sqlite handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite serializes writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp)`,
		`CREATE TABLE IF NOT EXISTS contact_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_name TEXT NOT NULL,
			sender_email TEXT NOT NULL,
			phase TEXT NOT NULL,
			kind TEXT,
			message TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_attempts_created_at ON contact_attempts(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return nil
}

// RecordAttempt stores a settled contact attempt.
func (s *Store) RecordAttempt(ctx context.Context, a contact.Attempt) error {
	at := a.At
	if at.IsZero() {
		at = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_attempts (sender_name, sender_email, phase, kind, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.SenderName, a.SenderEmail, string(a.Phase), string(a.Kind), a.Message, a.Duration.Milliseconds(), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record contact attempt: %w", err)
	}
	return nil
}

// TrackVisitor stores one page view.
func (s *Store) TrackVisitor(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record visitor: %w", err)
	}
	return nil
}

// CleanupVisitors deletes visitor rows older than the retention window.
func (s *Store) CleanupVisitors(ctx context.Context, retention time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, s.now().Add(-retention).UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up visitors: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		logger.GetLogger().Infow("Privacy cleanup removed old visitor records", "rows", rows)
	}
	return rows, nil
}

// RecentAttempts returns the latest contact attempts, newest first.
func (s *Store) RecentAttempts(ctx context.Context, limit int) ([]AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_name, sender_email, phase, COALESCE(kind, ''), COALESCE(message, ''), duration_ms, created_at
		FROM contact_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var r AttemptRecord
		var phase, kind string
		if err := rows.Scan(&r.ID, &r.SenderName, &r.SenderEmail, &phase, &kind, &r.Message, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact attempt: %w", err)
		}
		r.Phase = contact.Phase(phase)
		r.Kind = contact.Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentVisitors returns the latest visitor rows, newest first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitors: %w", err)
	}
	defer rows.Close()

	var out []VisitorMetric
	for rows.Next() {
		var v VisitorMetric
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Stats collects the admin dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{startOfDay}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{now.Add(-7 * 24 * time.Hour)}},
		{&stats.TotalAttempts, `SELECT COUNT(*) FROM contact_attempts`, nil},
		{&stats.MessagesSent, `SELECT COUNT(*) FROM contact_attempts WHERE phase = ?`, []any{string(contact.PhaseSuccess)}},
		{&stats.FailedAttempts, `SELECT COUNT(*) FROM contact_attempts WHERE phase = ?`, []any{string(contact.PhaseError)}},
		{&stats.TimedOutAttempts, `SELECT COUNT(*) FROM contact_attempts WHERE kind = ?`, []any{string(contact.KindTimeout)}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to load stats: %w", err)
		}
	}

	var err error
	if stats.RecentAttempts, err = s.RecentAttempts(ctx, 20); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}
