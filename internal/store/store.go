package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
)

// Store keeps the workbook load history in DuckDB. Only load metadata is
// stored; datasets and aggregates stay in memory.
type Store struct {
	DB      *sql.DB
	DataDir string
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "tcsd2-dashboard.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db, DataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		"CREATE SEQUENCE IF NOT EXISTS load_events_seq",
		`CREATE TABLE IF NOT EXISTS load_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('load_events_seq'),
			started_at TIMESTAMP NOT NULL,
			mtime TIMESTAMP,
			forced BOOLEAN NOT NULL,
			ok BOOLEAN NOT NULL,
			error TEXT,
			cases INTEGER NOT NULL,
			suspects INTEGER NOT NULL,
			seizures INTEGER NOT NULL,
			duration_ms DOUBLE NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// RecordLoad appends one load attempt.
func (s *Store) RecordLoad(ctx context.Context, ev model.LoadEvent) error {
	var mtime any
	if ev.ModTime != nil {
		mtime = ev.ModTime.UTC()
	}
	var errText any
	if ev.Error != "" {
		errText = ev.Error
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO load_events (started_at, mtime, forced, ok, error, cases, suspects, seizures, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.StartedAt.UTC(), mtime, ev.Forced, ev.OK, errText,
		ev.Cases, ev.Suspects, ev.Seizures, ev.Duration)
	if err != nil {
		return fmt.Errorf("inserting load event: %w", err)
	}
	return nil
}

// RecentLoads returns up to limit load events, newest first.
func (s *Store) RecentLoads(ctx context.Context, limit int) ([]model.LoadEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, started_at, mtime, forced, ok, error, cases, suspects, seizures, duration_ms
		FROM load_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying load events: %w", err)
	}
	defer rows.Close()

	events := []model.LoadEvent{}
	for rows.Next() {
		var (
			ev      model.LoadEvent
			mtime   sql.NullTime
			errText sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.StartedAt, &mtime, &ev.Forced, &ev.OK, &errText,
			&ev.Cases, &ev.Suspects, &ev.Seizures, &ev.Duration); err != nil {
			return nil, fmt.Errorf("scanning load event: %w", err)
		}
		if mtime.Valid {
			t := mtime.Time
			ev.ModTime = &t
		}
		ev.Error = errText.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LoadCount returns the number of recorded load attempts.
func (s *Store) LoadCount() int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM load_events").Scan(&n)
	return n
}

// LastSuccess returns the time of the most recent successful load.
func (s *Store) LastSuccess(ctx context.Context) (time.Time, bool, error) {
	var t sql.NullTime
	err := s.DB.QueryRowContext(ctx, "SELECT MAX(started_at) FROM load_events WHERE ok").Scan(&t)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("querying last success: %w", err)
	}
	return t.Time, t.Valid, nil
}
