package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/formlab/motionscore/internal/testposes"
	"github.com/formlab/motionscore/pkg/logger"
)

func main() {
	config := testposes.NewConfig()

	flag.StringVar(&config.BaseURL, "url", config.BaseURL, "base URL of the scoring service")
	flag.IntVar(&config.Submissions, "submissions", config.Submissions, "number of submissions to generate and post")
	flag.IntVar(&config.Frames, "frames", config.Frames, "frames per generated motion sequence")
	flag.IntVar(&config.Workers, "workers", config.Workers, "number of concurrent workers")
	flag.DurationVar(&config.Timeout, "timeout", config.Timeout, "HTTP request timeout")
	flag.BoolVar(&config.Verbose, "verbose", false, "log every failed submission")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if config.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, err := testposes.Run(ctx, config)
	if err != nil {
		logger.Get().Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
	logger.Get().Info(ctx, "done",
		logger.Int("submitted", stats.Submitted),
		logger.Int("failed", stats.Failed),
		logger.Duration("elapsed", time.Since(start)),
	)
	if stats.Failed > 0 || stats.BestMismatch > 0 {
		os.Exit(1)
	}
}
