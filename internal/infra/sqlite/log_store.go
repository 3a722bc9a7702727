// Package sqlite keeps per-player session logs in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"chemguess-service/internal/domain"
)

// LogStore implements app.LogRepository using SQLite.
type LogStore struct {
	db *sql.DB
}

// NewLogStore opens or creates a SQLite database at the given path.
func NewLogStore(dbPath string) (*LogStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &LogStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *LogStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_logs (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT NOT NULL UNIQUE,
		player_id    TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		duration_sec INTEGER NOT NULL,
		answer       TEXT NOT NULL,
		guesses      TEXT NOT NULL,
		result       TEXT NOT NULL,
		reason       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_logs_player ON session_logs(player_id, seq DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *LogStore) Close() error {
	return s.db.Close()
}

func (s *LogStore) Add(ctx context.Context, entry domain.SessionLog) error {
	answer, err := json.Marshal(entry.Answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	guesses := entry.Guesses
	if guesses == nil {
		guesses = []domain.CompoundRef{}
	}
	guessesJSON, err := json.Marshal(guesses)
	if err != nil {
		return fmt.Errorf("marshal guesses: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_logs (id, player_id, start_time, end_time, duration_sec, answer, guesses, result, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.PlayerID,
		entry.StartTime.UTC().Format(time.RFC3339Nano), entry.EndTime.UTC().Format(time.RFC3339Nano),
		entry.DurationSeconds, string(answer), string(guessesJSON),
		string(entry.Result), string(entry.Reason),
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (s *LogStore) List(ctx context.Context, playerID string, limit int) ([]domain.SessionLog, error) {
	query := `SELECT id, player_id, start_time, end_time, duration_sec, answer, guesses, result, reason
		FROM session_logs WHERE player_id = ? ORDER BY seq DESC`
	args := []any{playerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	out := []domain.SessionLog{}
	for rows.Next() {
		entry, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanLog(rows *sql.Rows) (domain.SessionLog, error) {
	var (
		entry           domain.SessionLog
		start, end      string
		answer, guesses string
		result, reason  string
	)
	if err := rows.Scan(&entry.ID, &entry.PlayerID, &start, &end, &entry.DurationSeconds, &answer, &guesses, &result, &reason); err != nil {
		return entry, fmt.Errorf("scan log: %w", err)
	}
	var err error
	if entry.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return entry, fmt.Errorf("parse start_time: %w", err)
	}
	if entry.EndTime, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return entry, fmt.Errorf("parse end_time: %w", err)
	}
	if err := json.Unmarshal([]byte(answer), &entry.Answer); err != nil {
		return entry, fmt.Errorf("unmarshal answer: %w", err)
	}
	if err := json.Unmarshal([]byte(guesses), &entry.Guesses); err != nil {
		return entry, fmt.Errorf("unmarshal guesses: %w", err)
	}
	entry.Result = domain.Result(result)
	entry.Reason = domain.Reason(reason)
	return entry, nil
}

func (s *LogStore) Delete(ctx context.Context, playerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_logs WHERE player_id = ? AND id = ?`, playerID, id)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

func (s *LogStore) Clear(ctx context.Context, playerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_logs WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}
	return nil
}

// Trim keeps only the newest keep logs of the player.
func (s *LogStore) Trim(ctx context.Context, playerID string, keep int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_logs WHERE player_id = ? AND seq NOT IN (
			SELECT seq FROM session_logs WHERE player_id = ? ORDER BY seq DESC LIMIT ?
		)`,
		playerID, playerID, keep,
	)
	if err != nil {
		return fmt.Errorf("trim logs: %w", err)
	}
	return nil
}
