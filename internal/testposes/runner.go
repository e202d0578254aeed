package testposes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/formlab/motionscore/pkg/logger"
)

// scoreResponse mirrors the service's POST /score response.
type scoreResponse struct {
	Score     float64 `json:"score"`
	BestScore float64 `json:"bestScore"`
}

// Run generates submissions, posts them concurrently, and verifies the
// returned best score never undercuts the score it came with.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{}
	start := time.Now()

	subs := generateSubmissions(config, stats)
	log.Info(ctx, "generated submissions",
		logger.Int("count", stats.Generated),
		logger.Int("frames", config.Frames),
	)

	client := &http.Client{Timeout: config.Timeout}
	jobs := make(chan Submission)
	var submitted, failed, mismatched atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				resp, err := postScore(ctx, client, config.BaseURL, sub)
				if err != nil {
					failed.Add(1)
					if config.Verbose {
						log.Warn(ctx, "submission failed", logger.Error(err))
					}
					continue
				}
				submitted.Add(1)
				// A fresh user's first submission must set its own best.
				if resp.BestScore < resp.Score {
					mismatched.Add(1)
				}
			}
		}()
	}

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return stats, fmt.Errorf("run cancelled: %w", ctx.Err())
		case jobs <- sub:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Failed = int(failed.Load())
	stats.BestMismatch = int(mismatched.Load())
	stats.TotalDuration = time.Since(start)

	log.Info(ctx, "run complete",
		logger.Int("submitted", stats.Submitted),
		logger.Int("failed", stats.Failed),
		logger.Int("bestMismatch", stats.BestMismatch),
		logger.Duration("duration", stats.TotalDuration),
	)
	return stats, nil
}

// postScore submits one scoring request and decodes the response.
func postScore(ctx context.Context, client *http.Client, baseURL string, sub Submission) (*scoreResponse, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post score: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for user %s", resp.StatusCode, sub.UserID)
	}
	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
