package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/labviz/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.RenderQueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.ResizeBurst, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LABVIZ_ADDR", ":8080")
			_ = os.Setenv("LABVIZ_RENDER_QUEUE_SIZE", "64")
			_ = os.Setenv("LABVIZ_WORKER_COUNT", "3")
			_ = os.Setenv("LABVIZ_RESIZE_RATE_PER_SEC", "2.5")
			_ = os.Setenv("LABVIZ_TRACING_ENABLED", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RenderQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.ResizeRatePerSec, convey.ShouldEqual, 2.5)
				convey.So(cfg.TracingEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			path := writeConfig(t, `
addr: ":9090"
labs_dir: /srv/labs
worker_count: 8
default_width: 800
log_format: json
`)
			_ = os.Setenv("LABVIZ_CONFIG", path)
			_ = os.Setenv("LABVIZ_WORKER_COUNT", "2")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LabsDir, convey.ShouldEqual, "/srv/labs")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.DefaultWidth, convey.ShouldEqual, 800)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxWidth, convey.ShouldEqual, 4096)
			})
		})

		convey.Convey("When the file names metrics settings", func() {
			_ = os.Setenv("LABVIZ_CONFIG", writeConfig(t, `
metrics_subsystem: edge
metrics_buckets_ms: [5, 50, 500]
metrics_const_labels:
  region: eu
`))
			_ = os.Setenv("LABVIZ_METRICS_NAMESPACE", "lv")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they reach the config", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "lv")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "edge")
				convey.So(cfg.MetricsBucketsMS, convey.ShouldResemble, []float64{5, 50, 500})
				convey.So(cfg.MetricsConstLabels, convey.ShouldResemble, map[string]string{"region": "eu"})
			})
		})

		convey.Convey("When the metrics namespace is not a metric name", func() {
			_ = os.Setenv("LABVIZ_METRICS_NAMESPACE", "lab-viz")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_namespace")
		})

		convey.Convey("When a metrics bucket is not positive", func() {
			_ = os.Setenv("LABVIZ_CONFIG", writeConfig(t, "metrics_buckets_ms: [0, 10]\n"))
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the YAML file is invalid", func() {
			_ = os.Setenv("LABVIZ_CONFIG", writeConfig(t, `invalid: yaml: content: [`))
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("LABVIZ_CONFIG", "/non/existent/file.yaml")
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("LABVIZ_ADDR", "")
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("LABVIZ_RENDER_QUEUE_SIZE", "invalid")
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("LABVIZ_RESIZE_BURST", "0")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labviz.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}
