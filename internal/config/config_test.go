package config_test

import (
	"testing"

	"github.com/formlab/motionscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.StorePath, convey.ShouldEqual, "motionscore.db")
			convey.So(cfg.HistoryLimit, convey.ShouldEqual, 20)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.VisibleThreshold, convey.ShouldEqual, 0.5)
			convey.So(cfg.VisibilityCutoffRatio, convey.ShouldEqual, 0.4)
			convey.So(cfg.VisibilitySource, convey.ShouldEqual, "reference")
			convey.So(cfg.Epsilon, convey.ShouldEqual, 1e-8)
		})
	})
}
