// Package telemetry is an optional operation log for crawl jobs and
// search queries, backed by sqlite. It is strictly an observability
// side-channel — the index itself is never written here, only a
// record that a crawl or a query happened and how it went.
package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Log records crawl jobs and search queries to a sqlite database.
type Log struct {
	db *sql.DB
}

// CrawlJob is one recorded crawl attempt.
type CrawlJob struct {
	ID          string
	SeedPath    string
	Status      string // running, completed, failed
	PagesFound  int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SearchQuery is one recorded query.
type SearchQuery struct {
	ID         string
	Query      string
	Kind       string
	ResultsLen int
	TotalCount int
	DurationMS int64
	CreatedAt  time.Time
}

// Open opens (creating if needed) the sqlite-backed telemetry log at
// dsn. An empty dsn disables telemetry: all methods become no-ops.
func Open(dsn string) (*Log, error) {
	if dsn == "" {
		return &Log{}, nil
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %q: %w", dsn, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("telemetry: ping %q: %w", dsn, err)
	}

	l := &Log{db: db}
	if err := l.createTables(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) enabled() bool { return l != nil && l.db != nil }

func (l *Log) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS crawl_jobs (
			id TEXT PRIMARY KEY,
			seed_path TEXT NOT NULL,
			status TEXT NOT NULL,
			pages_found INTEGER DEFAULT 0,
			error TEXT,
			started_at DATETIME NOT NULL,
			completed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS search_queries (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			kind TEXT NOT NULL,
			results_len INTEGER DEFAULT 0,
			total_count INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_queries_created_at ON search_queries(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("telemetry: create tables: %w", err)
		}
	}
	return nil
}

// StartCrawlJob records a new running crawl job and returns its id.
func (l *Log) StartCrawlJob(seedPath string) (string, error) {
	if !l.enabled() {
		return "", nil
	}
	id := uuid.NewString()
	_, err := l.db.Exec(
		`INSERT INTO crawl_jobs (id, seed_path, status, started_at) VALUES (?, ?, 'running', ?)`,
		id, seedPath, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("telemetry: start crawl job: %w", err)
	}
	return id, nil
}

// FinishCrawlJob marks a crawl job completed or failed.
func (l *Log) FinishCrawlJob(id string, pagesFound int, failErr error) error {
	if !l.enabled() || id == "" {
		return nil
	}
	status, errMsg := "completed", ""
	if failErr != nil {
		status, errMsg = "failed", failErr.Error()
	}
	_, err := l.db.Exec(
		`UPDATE crawl_jobs SET status = ?, pages_found = ?, error = ?, completed_at = ? WHERE id = ?`,
		status, pagesFound, errMsg, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("telemetry: finish crawl job: %w", err)
	}
	return nil
}

// RecordQuery logs one search query execution.
func (l *Log) RecordQuery(q SearchQuery) error {
	if !l.enabled() {
		return nil
	}
	id := q.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := l.db.Exec(
		`INSERT INTO search_queries (id, query, kind, results_len, total_count, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, q.Query, q.Kind, q.ResultsLen, q.TotalCount, q.DurationMS, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: record query: %w", err)
	}
	return nil
}

// RecentQueries returns the most recent logged queries, newest first.
func (l *Log) RecentQueries(limit int) ([]SearchQuery, error) {
	if !l.enabled() {
		return nil, nil
	}
	rows, err := l.db.Query(
		`SELECT id, query, kind, results_len, total_count, duration_ms, created_at
		 FROM search_queries ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("telemetry: recent queries: %w", err)
	}
	defer rows.Close()

	var out []SearchQuery
	for rows.Next() {
		var q SearchQuery
		if err := rows.Scan(&q.ID, &q.Query, &q.Kind, &q.ResultsLen, &q.TotalCount, &q.DurationMS, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("telemetry: scan query row: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle, if any.
func (l *Log) Close() error {
	if !l.enabled() {
		return nil
	}
	return l.db.Close()
}
