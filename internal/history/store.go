package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reel/internal/config"
	"reel/internal/job"
)

// Store manages completed-job bookkeeping backed by SQLite. It records what
// each job produced; it is not a work queue, and nothing is resumed from it.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one recorded job outcome.
type Entry struct {
	ID         int64
	JobID      string
	URL        string
	Title      string
	MediaType  job.MediaType
	Container  string
	Status     job.Status
	Reason     string
	Files      []string
	Bytes      int64
	Elapsed    time.Duration
	FinishedAt time.Time
	CreatedAt  time.Time
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record persists one job outcome.
func (s *Store) Record(ctx context.Context, outcome job.Outcome) error {
	filesJSON := ""
	if len(outcome.Files) > 0 {
		encoded, err := json.Marshal(outcome.Files)
		if err != nil {
			return fmt.Errorf("marshal files: %w", err)
		}
		filesJSON = string(encoded)
	}

	finished := outcome.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO job_history (
            job_id, url, title, media_type, container, status, reason,
            files_json, bytes, elapsed_ms, finished_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.JobID,
		outcome.URL,
		nullableString(outcome.Title),
		string(outcome.MediaType),
		outcome.Container,
		string(outcome.Status),
		nullableString(outcome.Reason),
		nullableString(filesJSON),
		outcome.Bytes,
		outcome.Elapsed.Milliseconds(),
		finished.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// List returns recorded outcomes, most recent first. A non-positive limit
// returns everything; statuses filter when provided.
func (s *Store) List(ctx context.Context, limit int, statuses ...job.Status) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM job_history`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (`
		for i, status := range statuses {
			if i > 0 {
				query += `, `
			}
			query += `?`
			args = append(args, string(status))
		}
		query += `)`
	}
	query += ` ORDER BY finished_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns entry counts grouped by terminal status.
func (s *Store) Stats(ctx context.Context) (map[job.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM job_history GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[job.Status]int)
	for rows.Next() {
		var status job.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed entries.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_history WHERE status = ?`, string(job.StatusFailed))
	if err != nil {
		return 0, fmt.Errorf("clear failed history: %w", err)
	}
	return res.RowsAffected()
}

const entryColumns = `id, job_id, url, title, media_type, container, status, reason,
    files_json, bytes, elapsed_ms, finished_at, created_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		id          int64
		jobID       string
		url         string
		title       sql.NullString
		mediaType   string
		container   string
		statusStr   string
		reason      sql.NullString
		filesJSON   sql.NullString
		bytes       int64
		elapsedMs   int64
		finishedRaw string
		createdRaw  string
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&url,
		&title,
		&mediaType,
		&container,
		&statusStr,
		&reason,
		&filesJSON,
		&bytes,
		&elapsedMs,
		&finishedRaw,
		&createdRaw,
	); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        id,
		JobID:     jobID,
		URL:       url,
		Title:     title.String,
		MediaType: job.MediaType(mediaType),
		Container: container,
		Status:    job.Status(statusStr),
		Reason:    reason.String,
		Bytes:     bytes,
		Elapsed:   time.Duration(elapsedMs) * time.Millisecond,
	}
	if filesJSON.Valid && filesJSON.String != "" {
		if err := json.Unmarshal([]byte(filesJSON.String), &entry.Files); err != nil {
			return Entry{}, fmt.Errorf("decode files for entry %d: %w", id, err)
		}
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		entry.FinishedAt = finished
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
