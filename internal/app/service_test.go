package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/formlab/motionscore/internal/app"
	"github.com/formlab/motionscore/internal/adapters/repository"
	"github.com/formlab/motionscore/internal/domain/motion"
	"github.com/formlab/motionscore/internal/domain/types"
	"github.com/formlab/motionscore/internal/domain/weights"
	"github.com/formlab/motionscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{service.WithStorePath(":memory:")}, opts...)
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

// seq builds a constant-velocity sequence so every joint gets a weight.
func seq(frames int) motion.Sequence {
	s := make(motion.Sequence, frames)
	for f := range s {
		frame := make(motion.Frame, motion.NumJoints)
		for j := range frame {
			frame[j] = [3]float64{float64(f) * 0.1, float64(j) * 0.05, 0}
		}
		s[f] = frame
	}
	return s
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithStorePath(":memory:"),
			service.WithVisibleThreshold(0.6),
			service.WithCutoffRatio(0.3),
			service.WithVisibilitySource(weights.SourceBoth),
			service.WithEpsilon(1e-9),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithStorePath(":memory:"))

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And stopping marks it as stopped", func() {
				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SubmitScore(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("When submitting identical reference and user motion", func() {
			res, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     "user-1",
				Reference:  seq(5),
				User:       seq(5),
				Difficulty: "easy",
			})

			Convey("Then the score should be near perfect", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldAlmostEqual, 1.0, 1e-6)
			})

			Convey("And the best score should match the score", func() {
				So(err, ShouldBeNil)
				So(res.BestScore, ShouldAlmostEqual, res.Score, 1e-12)
			})
		})

		Convey("When a user submits twice with a worse second attempt", func() {
			first, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     "user-2",
				Reference:  seq(5),
				User:       seq(5),
				Difficulty: "medium",
			})
			So(err, ShouldBeNil)

			worse := seq(5)
			for f := range worse {
				for j := range worse[f] {
					worse[f][j][1] += 0.5
				}
			}
			second, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     "user-2",
				Reference:  seq(5),
				User:       worse,
				Difficulty: "medium",
			})

			Convey("Then the best score should not decrease", func() {
				So(err, ShouldBeNil)
				So(second.Score, ShouldBeLessThan, first.Score)
				So(second.BestScore, ShouldAlmostEqual, first.BestScore, 1e-12)
			})
		})

		Convey("When the difficulty level is unknown", func() {
			_, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     "user-3",
				Reference:  seq(5),
				User:       seq(5),
				Difficulty: "nightmare",
			})

			Convey("Then it should report the unknown difficulty", func() {
				So(err, ShouldWrap, types.ErrUnknownDifficulty)
			})
		})

		Convey("When the sequences have different frame counts", func() {
			_, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     "user-4",
				Reference:  seq(5),
				User:       seq(6),
				Difficulty: "easy",
			})

			Convey("Then it should report a dimension mismatch", func() {
				So(err, ShouldWrap, motion.ErrDimensionMismatch)
			})
		})

		Convey("When the reference sequence is empty", func() {
			_, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     "user-5",
				Reference:  motion.Sequence{},
				User:       seq(5),
				Difficulty: "easy",
			})

			Convey("Then it should report the empty sequence", func() {
				So(err, ShouldWrap, motion.ErrEmptySequence)
			})
		})

		Convey("When the visibility matrix has the wrong shape", func() {
			_, err := svc.SubmitScore(ctx, service.Submission{
				UserID:              "user-6",
				Reference:           seq(5),
				User:                seq(5),
				ReferenceVisibility: motion.Visibility{{1, 1}},
				Difficulty:          "easy",
			})

			Convey("Then it should report a dimension mismatch", func() {
				So(err, ShouldWrap, motion.ErrDimensionMismatch)
			})
		})
	})
}

func TestService_Reads(t *testing.T) {
	Convey("Given a service with recorded submissions", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		for _, userID := range []string{"alice", "bob"} {
			_, err := svc.SubmitScore(ctx, service.Submission{
				UserID:     userID,
				Reference:  seq(5),
				User:       seq(5),
				Difficulty: "hard",
			})
			So(err, ShouldBeNil)
		}

		Convey("When querying a user's best score", func() {
			entry, err := svc.Best(ctx, "alice", "hard")

			Convey("Then it should return the stored best", func() {
				So(err, ShouldBeNil)
				So(entry.UserID, ShouldEqual, "alice")
				So(entry.Difficulty, ShouldEqual, types.Advanced)
				So(entry.BestScore, ShouldAlmostEqual, 1.0, 1e-6)
			})
		})

		Convey("When querying an unknown user's best score", func() {
			_, err := svc.Best(ctx, "ghost", "hard")

			Convey("Then it should report not found", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When querying a user's history", func() {
			records, err := svc.History(ctx, "alice", "hard", 10)

			Convey("Then it should return the recorded submissions", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].UserID, ShouldEqual, "alice")
			})
		})

		Convey("When querying the leaderboard", func() {
			entries, err := svc.TopN(ctx, "hard", 10)

			Convey("Then all users should be ranked", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When querying the leaderboard with a bad difficulty", func() {
			_, err := svc.TopN(ctx, "impossible", 10)

			Convey("Then it should report the unknown difficulty", func() {
				So(err, ShouldWrap, types.ErrUnknownDifficulty)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then the user count should be reported", func() {
				So(stats["totalUsers"], ShouldEqual, 2)
			})
		})
	})
}
