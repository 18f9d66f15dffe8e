// Package store keeps extracted reports in a SQLite corpus and answers
// simple aggregate questions about it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/groundex/internal/model"
)

// timeLayout is fixed-width so extracted_at sorts as text in time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no report has the requested id
var ErrNotFound = errors.New("report not found")

// Store is a SQLite-backed report corpus
type Store struct {
	db *sql.DB
}

// Summary is one row of a corpus listing
type Summary struct {
	ID           string          `json:"id" yaml:"id"`
	Subject      string          `json:"subject" yaml:"subject"`
	Source       string          `json:"source" yaml:"source"`
	EventType    model.EventType `json:"event_type" yaml:"event_type"`
	Extractor    string          `json:"extractor" yaml:"extractor"`
	Completeness int             `json:"completeness" yaml:"completeness"`
	Confidence   string          `json:"confidence" yaml:"confidence"`
	ExtractedAt  time.Time       `json:"extracted_at" yaml:"extracted_at"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	EventType model.EventType
	Extractor string
	MinIndex  int
	Limit     int
}

// Frequency is how many reports mention a role value
type Frequency struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Open opens or creates the corpus database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writes from batch workers
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			source TEXT NOT NULL,
			event_type TEXT NOT NULL,
			extractor TEXT NOT NULL,
			authority TEXT NOT NULL,
			completeness INTEGER NOT NULL,
			confidence TEXT NOT NULL,
			extracted_at TEXT NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS arguments (
			report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			value TEXT NOT NULL,
			value_key TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_event_type ON reports(event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_arguments_role ON arguments(role, value_key)`,
		`CREATE INDEX IF NOT EXISTS idx_arguments_report ON arguments(report_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores a report and its arguments, assigning an id when the report has none
func (s *Store) Save(ctx context.Context, report *model.Report) (string, error) {
	if report == nil {
		return "", errors.New("nil report")
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM arguments WHERE report_id = ?`, report.ID); err != nil {
		return "", fmt.Errorf("clearing arguments: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports
			(id, subject, source, event_type, extractor, authority, completeness, confidence, extracted_at, body)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Subject,
		report.Source,
		string(report.Event.EventType),
		report.Event.Extractor,
		report.Authority.String(),
		report.Score.Index,
		report.Score.Confidence,
		report.ExtractedAt.UTC().Format(timeLayout),
		string(body),
	)
	if err != nil {
		return "", fmt.Errorf("inserting report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO arguments (report_id, role, value, value_key, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing argument insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, role := range report.Event.Arguments.Roles() {
		for i, value := range report.Event.Arguments[role] {
			if _, err := stmt.ExecContext(ctx, report.ID, role, value, strings.ToLower(value), i); err != nil {
				return "", fmt.Errorf("inserting argument %s: %w", role, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return report.ID, nil
}

// Get loads a full report by id
func (s *Store) Get(ctx context.Context, id string) (*model.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return &report, nil
}

// Delete removes a report and its arguments
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns report summaries, newest first
func (s *Store) List(ctx context.Context, f Filter) ([]Summary, error) {
	var where []string
	var args []any

	if f.EventType != "" {
		where = append(where, "event_type = ?")
		args = append(args, string(f.EventType))
	}
	if f.Extractor != "" {
		where = append(where, "extractor = ?")
		args = append(args, f.Extractor)
	}
	if f.MinIndex > 0 {
		where = append(where, "completeness >= ?")
		args = append(args, f.MinIndex)
	}

	query := `SELECT id, subject, source, event_type, extractor, completeness, confidence, extracted_at FROM reports`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY extracted_at DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var eventType, extractedAt string
		if err := rows.Scan(&sum.ID, &sum.Subject, &sum.Source, &eventType, &sum.Extractor,
			&sum.Completeness, &sum.Confidence, &extractedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		sum.EventType = model.EventType(eventType)
		sum.ExtractedAt, _ = time.Parse(timeLayout, extractedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Count returns the number of stored reports
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return n, nil
}

// EventTypeCounts returns how many reports carry each event type
func (s *Store) EventTypeCounts(ctx context.Context) (map[model.EventType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event_type, count(*) FROM reports GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("counting event types: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.EventType]int)
	for rows.Next() {
		var eventType string
		var n int
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, fmt.Errorf("scanning event type: %w", err)
		}
		counts[model.EventType(eventType)] = n
	}
	return counts, rows.Err()
}

// RoleFrequencies returns the most common values for a role across reports.
// Values are compared by their Unicode lowercase form; each report counts once per value.
func (s *Store) RoleFrequencies(ctx context.Context, role string, limit int) ([]Frequency, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT min(value), count(DISTINCT report_id) AS n
			FROM arguments
			WHERE role = ?
			GROUP BY value_key
			ORDER BY n DESC, value_key
			LIMIT ?`,
		strings.ToLower(role), limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s frequencies: %w", role, err)
	}
	defer rows.Close()

	var out []Frequency
	for rows.Next() {
		var f Frequency
		if err := rows.Scan(&f.Value, &f.Count); err != nil {
			return nil, fmt.Errorf("scanning frequency: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
