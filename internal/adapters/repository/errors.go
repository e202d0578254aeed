package repository

import "errors"

// Sentinel kinds for score store errors.
var (
	ErrNotFound     = errors.New("user performance not found")
	ErrInvalidLimit = errors.New("invalid query limit")
)
