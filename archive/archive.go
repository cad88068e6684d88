// Package archive keeps a SQLite record of crawl runs and the papers each run
// emitted.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/dailyarxiv/papers"
)

// Custom errors for archive operations
var (
	ErrNoActiveRun = errors.New("no active run")
	ErrRunActive   = errors.New("a run is already active")
	ErrRunNotFound = errors.New("run not found")
)

// Store manages the archive database.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	active   *Run
	position int
}

// Run is one crawl.
type Run struct {
	RunID         uuid.UUID  `json:"run_id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Categories    []string   `json:"categories"`
	PapersEmitted int        `json:"papers_emitted"`
}

// PaperFilter represents filtering options for listing papers.
type PaperFilter struct {
	RunID    *uuid.UUID // Only papers first emitted by this run
	Category string     // Only papers tagged with this code
	Limit    int        // Pagination limit, 0 for all
	Offset   int        // Pagination offset
}

// NewStore opens or creates the archive at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the runs and papers tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		categories TEXT NOT NULL,
		papers_emitted INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		abs TEXT NOT NULL,
		pdf TEXT NOT NULL,
		categories TEXT NOT NULL,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		position INTEGER NOT NULL,
		first_seen_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_papers_run ON papers(run_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a crawl. Papers written afterwards belong to
// this run until FinishRun.
func (s *Store) BeginRun(categories []string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return nil, ErrRunActive
	}

	run := &Run{
		RunID:      uuid.New(),
		StartedAt:  time.Now(),
		Categories: categories,
	}

	data, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO runs (run_id, started_at, categories) VALUES (?, ?, ?)",
		run.RunID.String(), formatTime(&run.StartedAt), string(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	s.active = run
	s.position = 0
	return run, nil
}

// FinishRun marks the active run as complete.
func (s *Store) FinishRun() (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, ErrNoActiveRun
	}

	now := time.Now()
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, papers_emitted = ? WHERE run_id = ?",
		formatTime(&now), s.active.PapersEmitted, s.active.RunID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update run: %w", err)
	}

	run := s.active
	run.FinishedAt = &now
	s.active = nil
	return run, nil
}

// Write implements papers.Sink. Papers already archived by an earlier run are
// left untouched.
func (s *Store) Write(ctx context.Context, ps []papers.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrNoActiveRun
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := time.Now()
	now := formatTime(&ts)
	position := s.position
	inserted := 0

	for _, p := range ps {
		cats, err := json.Marshal(p.Categories)
		if err != nil {
			return fmt.Errorf("failed to marshal categories: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO papers (id, abs, pdf, categories, run_id, position, first_seen_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Abs, p.PDF, string(cats), s.active.RunID.String(), position, now)
		if err != nil {
			return fmt.Errorf("failed to insert paper %s: %w", p.ID, err)
		}

		if n, _ := res.RowsAffected(); n > 0 {
			position++
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit papers: %w", err)
	}

	s.position = position
	s.active.PapersEmitted += inserted
	return nil
}

// GetPaper retrieves an archived paper by identifier.
func (s *Store) GetPaper(id string) (*papers.Paper, error) {
	row := s.db.QueryRow("SELECT id, abs, pdf, categories FROM papers WHERE id = ?", id)

	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, papers.ErrPaperNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query paper: %w", err)
	}
	return p, nil
}

// Get implements papers.Reader.
func (s *Store) Get(id string) (*papers.Paper, error) {
	return s.GetPaper(id)
}

// Papers implements papers.Reader. Papers from the newest run come first,
// each run in its emitted order.
func (s *Store) Papers() ([]papers.Paper, error) {
	return s.ListPapers(PaperFilter{})
}

// ListPapers returns archived papers matching filter.
func (s *Store) ListPapers(filter PaperFilter) ([]papers.Paper, error) {
	query := `
		SELECT p.id, p.abs, p.pdf, p.categories
		FROM papers p JOIN runs r ON p.run_id = r.run_id
	`

	var conditions []string
	var args []any

	if filter.RunID != nil {
		conditions = append(conditions, "p.run_id = ?")
		args = append(args, filter.RunID.String())
	}
	if filter.Category != "" {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM json_each(p.categories) WHERE json_each.value = ?)")
		args = append(args, filter.Category)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY r.started_at DESC, p.position ASC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	result := []papers.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		result = append(result, *p)
	}

	return result, rows.Err()
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, started_at, finished_at, categories, papers_emitted
		FROM runs WHERE run_id = ?
	`, runID.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, started_at, finished_at, categories, papers_emitted
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (*papers.Paper, error) {
	var p papers.Paper
	var cats string
	if err := row.Scan(&p.ID, &p.Abs, &p.PDF, &cats); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cats), &p.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return &p, nil
}

func scanRun(row scanner) (*Run, error) {
	var runIDStr, startedAtStr, cats string
	var finishedAtStr sql.NullString
	var run Run

	if err := row.Scan(&runIDStr, &startedAtStr, &finishedAtStr, &cats, &run.PapersEmitted); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid run_id: %w", err)
	}
	run.RunID = id
	run.StartedAt = parseTime(startedAtStr)

	if finishedAtStr.Valid {
		t := parseTime(finishedAtStr.String)
		run.FinishedAt = &t
	}

	if err := json.Unmarshal([]byte(cats), &run.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	return &run, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
