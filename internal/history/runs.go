package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Run is one journaled pass.
type Run struct {
	ID         string
	Mode       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     map[string]int
	Error      string
	Moves      int
}

// Finished reports whether FinishRun was recorded.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Move is one file relocated during a run.
type Move struct {
	RunID       string
	Source      string
	Destination string
	Kind        string
	MovedAt     time.Time
}

// StartRun inserts the run row. FinishedAt and Counts are ignored.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, mode, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Mode, boolToInt(run.DryRun), formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the end time, outcome counts and optional error for a run.
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, counts map[string]int, runErr error) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}
	var message any
	if runErr != nil {
		message = runErr.Error()
	}
	if finished.IsZero() {
		finished = time.Now()
	}
	if err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, counts_json = ?, error_message = ? WHERE id = ?`,
		formatTime(finished), string(payload), message, id,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordMove appends a move to the run's journal.
func (s *Store) RecordMove(ctx context.Context, move Move) error {
	moved := move.MovedAt
	if moved.IsZero() {
		moved = time.Now()
	}
	if err := s.exec(ctx,
		`INSERT INTO moves (run_id, source_path, destination_path, kind, moved_at) VALUES (?, ?, ?, ?, ?)`,
		move.RunID, move.Source, move.Destination, move.Kind, formatTime(moved),
	); err != nil {
		return fmt.Errorf("insert move: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their move counts.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.mode, r.dry_run, r.started_at, r.finished_at, r.counts_json, r.error_message,
                (SELECT COUNT(1) FROM moves m WHERE m.run_id = r.id)
         FROM runs r
         ORDER BY r.rowid DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			dryRun   int
			started  string
			finished sql.NullString
			counts   sql.NullString
			message  sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Mode, &dryRun, &started, &finished, &counts, &message, &run.Moves); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.DryRun = dryRun != 0
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		if counts.Valid && counts.String != "" {
			if err := json.Unmarshal([]byte(counts.String), &run.Counts); err != nil {
				return nil, fmt.Errorf("decode counts for run %s: %w", run.ID, err)
			}
		}
		run.Error = message.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Moves lists the moves of a run in the order they happened.
func (s *Store) Moves(ctx context.Context, runID string) ([]Move, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, destination_path, kind, moved_at FROM moves WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var (
			move  Move
			moved string
		)
		if err := rows.Scan(&move.RunID, &move.Source, &move.Destination, &move.Kind, &moved); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		move.MovedAt = parseTime(moved)
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
