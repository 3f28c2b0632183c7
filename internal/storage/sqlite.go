// Package storage provides SQLite-based persistence for match history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for history persistence.
type Store struct {
	db *sql.DB
}

// PointEntry is one observed point: the score right after it was won.
type PointEntry struct {
	ID        int64
	SessionID string
	Role      string // local role, p1 or p2
	Scorer    string // role that won the point
	ScoreA    int
	ScoreB    int
	CreatedAt time.Time
}

// ConnectionEntry is one opened connection to a server.
type ConnectionEntry struct {
	ID        int64
	SessionID string
	Role      string
	Server    string
	OpenedAt  time.Time
	ClosedAt  time.Time // zero while still open
}

// Duration returns how long the connection lasted, or zero while open.
func (c ConnectionEntry) Duration() time.Duration {
	if c.ClosedAt.IsZero() {
		return 0
	}
	return c.ClosedAt.Sub(c.OpenedAt)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			scorer TEXT NOT NULL,
			score_a INTEGER NOT NULL,
			score_b INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_points_session ON points(session_id);

		CREATE TABLE IF NOT EXISTS connections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			server TEXT NOT NULL,
			opened_at TEXT NOT NULL,
			closed_at TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_connections_session ON connections(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePoint records an observed point and returns its ID.
func (s *Store) SavePoint(p PointEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO points (session_id, role, scorer, score_a, score_b, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.SessionID, p.Role, p.Scorer, p.ScoreA, p.ScoreB, formatTime(p.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save point: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// OpenConnection records a newly opened connection and returns its ID.
func (s *Store) OpenConnection(sessionID, role, server string, at time.Time) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO connections (session_id, role, server, opened_at) VALUES (?, ?, ?, ?)`,
		sessionID, role, server, formatTime(at),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save connection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// CloseConnection stamps the close time of connection id.
func (s *Store) CloseConnection(id int64, at time.Time) error {
	result, err := s.db.Exec(
		`UPDATE connections SET closed_at = ? WHERE id = ? AND closed_at IS NULL`,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot close connection %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot close connection %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("storage: connection %d not found or already closed", id)
	}
	return nil
}

// RecentPoints returns the latest points, newest first.
func (s *Store) RecentPoints(limit int) ([]PointEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, role, scorer, score_a, score_b, created_at
		 FROM points
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query points: %w", err)
	}
	defer rows.Close()

	var entries []PointEntry
	for rows.Next() {
		var e PointEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Scorer, &e.ScoreA, &e.ScoreB, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// RecentConnections returns the latest connections, newest first.
func (s *Store) RecentConnections(limit int) ([]ConnectionEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, role, server, opened_at, closed_at
		 FROM connections
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query connections: %w", err)
	}
	defer rows.Close()

	var entries []ConnectionEntry
	for rows.Next() {
		var e ConnectionEntry
		var openedAt, closedAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Server, &openedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.OpenedAt = parseTime(openedAt)
		e.ClosedAt = parseTime(closedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// PointsBySession returns every point of one session in play order.
func (s *Store) PointsBySession(sessionID string) ([]PointEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, role, scorer, score_a, score_b, created_at
		 FROM points
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query points: %w", err)
	}
	defer rows.Close()

	var entries []PointEntry
	for rows.Next() {
		var e PointEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Scorer, &e.ScoreA, &e.ScoreB, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string column values.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		return parseTimeString(v)
	case []byte:
		return parseTimeString(string(v))
	default:
		return time.Time{}
	}
}

func parseTimeString(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
