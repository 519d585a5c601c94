package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/labviz/internal/config"
	"github.com/okian/labviz/pkg/logger"
	"github.com/okian/labviz/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.LabsDir = "../../labs"
	cfg.WorkerCount = 2
	cfg.RenderQueueSize = 8
	return cfg
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the service wired from config", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := testConfig()
		svc, hub := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)
		defer hub.Close()

		mux := newMux(ctx, cfg, svc, hub)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then every surface is routed", func() {
			convey.So(get("/labs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)

			w := get("/labs/hiv/chart.svg?width=600")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `viewBox="0 0 600 400"`)
		})

		convey.Convey("Then the service metrics updater reads live stats", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			convey.So(svc.GetStats().Workers, convey.ShouldEqual, 2)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metric updaters", t, func() {
		convey.Convey("Then they stop with their context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a system update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsConfig(t *testing.T) {
	convey.Convey("Given metrics naming from config", t, func() {
		convey.Reset(func() { metrics.Init() })

		cfg := testConfig()
		cfg.MetricsNamespace = "lv"
		cfg.MetricsConstLabels = map[string]string{"site": "docs"}
		metrics.Init(metricsOptions(cfg)...)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc, hub := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)
		defer hub.Close()

		convey.Convey("Then /healthz exposes the configured names", func() {
			updateServiceMetrics(svc)
			w := httptest.NewRecorder()
			newMux(ctx, cfg, svc, hub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `lv_datasets_loaded{site="docs"} 3`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "labviz_datasets_loaded")
		})
	})
}
