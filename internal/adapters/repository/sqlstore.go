package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/formlab/motionscore/internal/domain/types"
	"github.com/formlab/motionscore/pkg/metrics"
)

// SQLite-backed Store implementation.
//
// Two tables: performance is append-only history, best_score holds one
// row per (user, difficulty) and is only ever raised via an upsert-with-
// max, so concurrent submissions cannot lose an improvement.

//go:embed sql/*
var ddl embed.FS

const defaultHistoryLimit = 20

// SQLStore implements Store on a SQLite database.
type SQLStore struct {
	db           *sql.DB
	historyLimit int
}

// NewSQLStore opens (and, if needed, creates) the database at dsn and
// applies the schema. Use ":memory:" for an ephemeral store in tests.
func NewSQLStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("store dsn not specified")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open score store %q: %w", dsn, err)
	}
	// SQLite allows one writer; serializing through a single connection
	// avoids SQLITE_BUSY under concurrent submissions.
	db.SetMaxOpenConns(1)

	b, err := ddl.ReadFile("sql/ddl.sql")
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema to %q: %w", dsn, err)
	}

	s := &SQLStore{
		db:           db,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpsertBest raises the best score for (user, difficulty) atomically and
// returns the resulting best.
func (s *SQLStore) UpsertBest(ctx context.Context, userID string, level types.Difficulty, score float64) (float64, error) {
	start := time.Now()
	const q = `
INSERT INTO best_score (user_id, difficulty, score, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, difficulty) DO UPDATE SET
    score      = max(best_score.score, excluded.score),
    updated_at = excluded.updated_at
RETURNING score`
	var best float64
	err := s.db.QueryRowContext(ctx, q, userID, string(level), score, time.Now().UTC()).Scan(&best)
	metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("upsert best score for %s/%s: %w", userID, level, err)
	}
	return best, nil
}

// InsertRecord appends one performance record.
func (s *SQLStore) InsertRecord(ctx context.Context, rec types.Record) error {
	start := time.Now()
	const q = `
INSERT INTO performance (id, user_id, difficulty, most_recent_score, best_score, submitted_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.UserID, string(rec.Difficulty), rec.Score, rec.BestScore, rec.SubmittedAt.UTC())
	metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("insert performance record %s: %w", rec.ID, err)
	}
	return nil
}

// Best returns the stored best score for (user, difficulty).
func (s *SQLStore) Best(ctx context.Context, userID string, level types.Difficulty) (float64, error) {
	start := time.Now()
	const q = `SELECT score FROM best_score WHERE user_id = ? AND difficulty = ?`
	var best float64
	err := s.db.QueryRowContext(ctx, q, userID, string(level)).Scan(&best)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("query best score for %s/%s: %w", userID, level, err)
	}
	return best, nil
}

// History returns the user's most recent records, newest first.
func (s *SQLStore) History(ctx context.Context, userID string, level types.Difficulty, limit int) ([]types.Record, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = s.historyLimit
	}
	start := time.Now()
	q := `
SELECT id, user_id, difficulty, most_recent_score, best_score, submitted_at
FROM performance
WHERE user_id = ?`
	args := []any{userID}
	if level != "" {
		q += ` AND difficulty = ?`
		args = append(args, string(level))
	}
	q += ` ORDER BY submitted_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query history for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var rec types.Record
		var level string
		if err := rows.Scan(&rec.ID, &rec.UserID, &level, &rec.Score, &rec.BestScore, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Difficulty = types.Difficulty(level)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}

// TopN returns the leaderboard: best scores descending, user id
// ascending on ties.
func (s *SQLStore) TopN(ctx context.Context, level types.Difficulty, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	q := `SELECT user_id, difficulty, score FROM best_score`
	args := []any{}
	if level != "" {
		q += ` WHERE difficulty = ?`
		args = append(args, string(level))
	}
	q += ` ORDER BY score DESC, user_id ASC LIMIT ?`
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, q, args...)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []types.Entry
	for rows.Next() {
		var e types.Entry
		var level string
		if err := rows.Scan(&e.UserID, &level, &e.BestScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Difficulty = types.Difficulty(level)
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}
	return out, nil
}

// Count returns the number of distinct users with a recorded score.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_id) FROM best_score`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close score store: %w", err)
	}
	return nil
}
