// Package types contains common types used across the application
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Difficulty is the normalized workout difficulty level.
type Difficulty string

// Enumerated difficulty levels. Requests carry easy/medium/hard; these
// are the canonical values persisted and returned.
const (
	Beginner     Difficulty = "BEGINNER"
	Intermediate Difficulty = "INTERMEDIATE"
	Advanced     Difficulty = "ADVANCED"
)

// ErrUnknownDifficulty reports an unmapped difficulty string.
var ErrUnknownDifficulty = errors.New("unknown difficulty level")

// ParseDifficulty maps a request difficulty to its canonical level.
// Accepts easy/medium/hard and the canonical names, case-insensitive.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "beginner":
		return Beginner, nil
	case "medium", "intermediate":
		return Intermediate, nil
	case "hard", "advanced":
		return Advanced, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Record is one persisted scoring submission.
type Record struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Difficulty  Difficulty `json:"difficulty_level"`
	Score       float64    `json:"most_recent_score"`
	BestScore   float64    `json:"best_score"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// Entry represents a leaderboard row: a user's best score at a level.
type Entry struct {
	Rank       int        `json:"rank"`
	UserID     string     `json:"user_id"`
	Difficulty Difficulty `json:"difficulty_level"`
	BestScore  float64    `json:"best_score"`
}
