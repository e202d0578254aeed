// Package repository defines the score store interface and errors.
package repository

import (
	"context"

	"github.com/formlab/motionscore/internal/domain/types"
)

// Store provides read/write access to persisted performance records.
type Store interface {
	// UpsertBest raises the stored best score for (user, difficulty) to
	// score if it is higher, in a single atomic statement, and returns
	// the best after the update. The old read-then-write sequence could
	// race under concurrent submissions from the same user; the max
	// upsert closes that.
	UpsertBest(ctx context.Context, userID string, level types.Difficulty, score float64) (float64, error)

	// InsertRecord appends one performance record to the history.
	InsertRecord(ctx context.Context, rec types.Record) error

	// Best returns the current best score for (user, difficulty).
	// Returns ErrNotFound if the user has no recorded score at that level.
	Best(ctx context.Context, userID string, level types.Difficulty) (float64, error)

	// History returns the user's most recent records, newest first.
	// An empty level means all difficulty levels.
	History(ctx context.Context, userID string, level types.Difficulty, limit int) ([]types.Record, error)

	// TopN returns up to n best-score entries ordered by score desc,
	// user id asc on ties. An empty level spans all difficulty levels.
	TopN(ctx context.Context, level types.Difficulty, n int) ([]types.Entry, error)

	// Count returns the number of users with at least one recorded score.
	Count(ctx context.Context) int

	// Close releases the underlying store resources.
	Close() error
}
