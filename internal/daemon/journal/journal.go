// Package journal records every dispatched request in a SQLite database so
// operators can audit what the brain was asked to do.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tactical-os/tos/pkg/models"

	_ "modernc.org/sqlite"
)

// SchemaDDL creates the journal tables.
const SchemaDDL = `
-- Every request handed to the dispatcher, with its response
CREATE TABLE IF NOT EXISTS dispatches (
    id INTEGER PRIMARY KEY,
    request_id TEXT NOT NULL,
    source TEXT NOT NULL,
    request TEXT NOT NULL,
    response TEXT NOT NULL,
    failed INTEGER NOT NULL DEFAULT 0,
    duration_us INTEGER NOT NULL DEFAULT 0,
    metadata TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dispatches_created_at ON dispatches(created_at);
`

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal is an append-only log of dispatches.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path with WAL
// journaling and a 5-second busy timeout.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers; concurrent dispatches queue on it.
	db.SetMaxOpenConns(1)

	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, SchemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends an entry. CreatedAt defaults to now.
func (j *Journal) Record(ctx context.Context, e models.JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO dispatches (request_id, source, request, response, failed, duration_us, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.Source, e.Request, e.Response, e.Failed, e.Duration.Microseconds(), e.Metadata,
		e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	return nil
}

// List returns entries matching filter, newest first.
func (j *Journal) List(ctx context.Context, filter models.Filter) ([]models.JournalEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []interface{}
	)
	if filter.StartTime != nil {
		where = append(where, "created_at >= ?")
		args = append(args, filter.StartTime.UTC().Format(timeLayout))
	}
	if filter.EndTime != nil {
		where = append(where, "created_at <= ?")
		args = append(args, filter.EndTime.UTC().Format(timeLayout))
	}
	if len(filter.Sources) > 0 {
		where = append(where, "source IN ("+strings.TrimSuffix(strings.Repeat("?,", len(filter.Sources)), ",")+")")
		for _, s := range filter.Sources {
			args = append(args, s)
		}
	}
	if filter.FailedOnly {
		where = append(where, "failed = 1")
	}

	query := `SELECT id, request_id, source, request, response, failed, duration_us, metadata, created_at FROM dispatches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"

	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var (
			e        models.JournalEntry
			duration int64
			created  string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Source, &e.Request, &e.Response, &e.Failed, &duration, &e.Metadata, &created); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Duration = time.Duration(duration) * time.Microsecond
		if t, err := time.Parse(timeLayout, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
