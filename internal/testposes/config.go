// Package testposes drives the scoring API with synthetic motion data.
package testposes

import (
	"runtime"
	"time"
)

// Default tool configuration constants.
const (
	defaultBaseURL     = "http://localhost:9080"
	defaultSubmissions = 1000
	defaultFrames      = 30
	defaultTimeout     = 30 * time.Second
)

// Config holds the tool's run parameters.
type Config struct {
	BaseURL     string
	Submissions int
	Frames      int
	Workers     int
	Timeout     time.Duration
	Verbose     bool
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:     defaultBaseURL,
		Submissions: defaultSubmissions,
		Frames:      defaultFrames,
		Workers:     runtime.NumCPU() * 2,
		Timeout:     defaultTimeout,
	}
}

// Stats accumulates run results.
type Stats struct {
	Generated     int
	Submitted     int
	Failed        int
	BestMismatch  int
	TotalDuration time.Duration
}
