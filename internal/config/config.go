// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...Option)-style defaults and a Load that layers sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorePath is the SQLite DSN for the score store.
	// ":memory:" keeps scores for the process lifetime only.
	StorePath string `koanf:"store_path"`

	// HistoryLimit is the default row count for history queries.
	HistoryLimit int `koanf:"history_limit"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// VisibleThreshold is the confidence at or above which a joint
	// counts as visible in a frame.
	VisibleThreshold float64 `koanf:"visible_threshold"`

	// VisibilityCutoffRatio controls joint exclusion: a joint visible in
	// fewer than (1 - ratio) of frames contributes no weight.
	VisibilityCutoffRatio float64 `koanf:"visibility_cutoff_ratio"`

	// VisibilitySource selects which capture's visibility gates joint
	// weighting: reference, user, or both.
	VisibilitySource string `koanf:"visibility_source"`

	// Epsilon guards the similarity denominator against degenerate input.
	Epsilon float64 `koanf:"epsilon"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		StorePath:             "motionscore.db",
		HistoryLimit:          20,
		MaxLeaderboardLimit:   100,
		VisibleThreshold:      0.5,
		VisibilityCutoffRatio: 0.4,
		VisibilitySource:      "reference",
		Epsilon:               1e-8,
	}
}
