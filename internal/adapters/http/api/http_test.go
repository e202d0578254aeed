package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/formlab/motionscore/internal/adapters/http/api"
	repository "github.com/formlab/motionscore/internal/adapters/repository"
	service "github.com/formlab/motionscore/internal/app"
	"github.com/formlab/motionscore/internal/domain/motion"
	"github.com/formlab/motionscore/internal/domain/types"
	"github.com/formlab/motionscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockService struct {
	submitResult service.Result
	submitErr    error
	best         types.Entry
	bestErr      error
	history      []types.Record
	historyErr   error
	topN         []types.Entry
	topNErr      error
}

func (m *mockService) SubmitScore(ctx context.Context, sub service.Submission) (service.Result, error) {
	if m.submitErr != nil {
		return service.Result{}, m.submitErr
	}
	return m.submitResult, nil
}

func (m *mockService) Best(ctx context.Context, userID, difficulty string) (types.Entry, error) {
	if m.bestErr != nil {
		return types.Entry{}, m.bestErr
	}
	return m.best, nil
}

func (m *mockService) History(ctx context.Context, userID, difficulty string, limit int) ([]types.Record, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockService) TopN(ctx context.Context, difficulty string, n int) ([]types.Entry, error) {
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n < len(m.topN) {
		return m.topN[:n], nil
	}
	return m.topN, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "totalUsers": 7}
}

func newTestMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, 50).Register(context.Background(), mux)
	return mux
}

func scoreBody(userID, difficulty string, frames int) string {
	poses := make(motion.Sequence, frames)
	for f := range poses {
		frame := make(motion.Frame, motion.NumJoints)
		for j := range frame {
			frame[j] = [3]float64{float64(f), float64(j), 0}
		}
		poses[f] = frame
	}
	req := map[string]any{
		"user_id":          userID,
		"reference_poses":  poses,
		"user_poses":       poses,
		"difficulty_level": difficulty,
	}
	b, _ := json.Marshal(req)
	return string(b)
}

func TestScoreEndpoint(t *testing.T) {
	Convey("Given a score endpoint", t, func() {
		deps := &mockService{submitResult: service.Result{Score: 0.87, BestScore: 0.92}}
		mux := newTestMux(deps)

		Convey("When posting a valid submission", func() {
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(scoreBody("user-1", "easy", 3)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return the score and best score", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp map[string]float64
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["score"], ShouldAlmostEqual, 0.87)
				So(resp["bestScore"], ShouldAlmostEqual, 0.92)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader("{not json"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting without a user ID", func() {
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(scoreBody("", "easy", 3)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the engine rejects the submission", func() {
			deps.submitErr = motion.NewKind("similarity.score", motion.ErrDimensionMismatch)
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(scoreBody("user-1", "easy", 3)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400 with an error body", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var resp map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the difficulty level is unknown", func() {
			deps.submitErr = types.ErrUnknownDifficulty
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(scoreBody("user-1", "nightmare", 3)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the store fails", func() {
			deps.submitErr = context.DeadlineExceeded
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(scoreBody("user-1", "easy", 3)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 500", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/score", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestBestEndpoint(t *testing.T) {
	Convey("Given a best-score endpoint", t, func() {
		deps := &mockService{
			best: types.Entry{UserID: "user-1", Difficulty: types.Beginner, BestScore: 0.9},
		}
		mux := newTestMux(deps)

		Convey("When querying an existing user", func() {
			req := httptest.NewRequest(http.MethodGet, "/best/user-1?difficulty=easy", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return the best entry", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var entry types.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &entry), ShouldBeNil)
				So(entry.UserID, ShouldEqual, "user-1")
				So(entry.BestScore, ShouldAlmostEqual, 0.9)
			})
		})

		Convey("When the difficulty parameter is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/best/user-1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the user ID is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/best/?difficulty=easy", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the user has no recorded score", func() {
			deps.bestErr = repository.ErrNotFound
			req := httptest.NewRequest(http.MethodGet, "/best/ghost?difficulty=easy", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHistoryEndpoint(t *testing.T) {
	Convey("Given a history endpoint", t, func() {
		deps := &mockService{
			history: []types.Record{
				{ID: "r2", UserID: "user-1", Difficulty: types.Beginner, Score: 0.8, BestScore: 0.8},
				{ID: "r1", UserID: "user-1", Difficulty: types.Beginner, Score: 0.6, BestScore: 0.6},
			},
		}
		mux := newTestMux(deps)

		Convey("When querying a user's history", func() {
			req := httptest.NewRequest(http.MethodGet, "/history/user-1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return the records", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var records []types.Record
				So(json.Unmarshal(rec.Body.Bytes(), &records), ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(records[0].ID, ShouldEqual, "r2")
			})
		})

		Convey("When the limit is not a number", func() {
			req := httptest.NewRequest(http.MethodGet, "/history/user-1?limit=abc", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the user ID is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/history/", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a leaderboard endpoint", t, func() {
		deps := &mockService{
			topN: []types.Entry{
				{Rank: 1, UserID: "alice", Difficulty: types.Advanced, BestScore: 0.95},
				{Rank: 2, UserID: "bob", Difficulty: types.Advanced, BestScore: 0.90},
			},
		}
		mux := newTestMux(deps)

		Convey("When requesting the top entries", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=10&difficulty=hard", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return ranked entries", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].UserID, ShouldEqual, "alice")
			})
		})

		Convey("When the limit is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=500", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400 with a limit error", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var resp map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "limit_exceeded")
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a stats endpoint", t, func() {
		mux := newTestMux(&mockService{})

		Convey("When requesting stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return the provider's snapshot", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["totalUsers"], ShouldEqual, 7.0)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a health endpoint", t, func() {
		mux := newTestMux(&mockService{})

		Convey("When requesting health", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should respond OK", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
