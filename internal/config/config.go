// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - Keys are flat snake_case so env vars map onto them directly.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LabsDir holds the lab manifests loaded at startup.
	LabsDir string `koanf:"labs_dir" validate:"required"`

	// RenderQueueSize bounds the in-memory render queue.
	RenderQueueSize int `koanf:"render_queue_size" validate:"gte=1"`

	// WorkerCount sets the number of render workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// DefaultWidth is used when a request names no width.
	DefaultWidth float64 `koanf:"default_width" validate:"gt=0"`

	// MaxWidth caps requested widths.
	MaxWidth float64 `koanf:"max_width" validate:"gtefield=DefaultWidth"`

	// MaxRecords caps GET /labs/{name}/records?limit.
	MaxRecords int `koanf:"max_records" validate:"gte=0"`

	// ResizeRatePerSec and ResizeBurst throttle resize renders per session.
	ResizeRatePerSec float64 `koanf:"resize_rate_per_sec" validate:"gt=0"`
	ResizeBurst      int     `koanf:"resize_burst" validate:"gte=1"`

	// LoadTimeoutMS bounds loading one lab's source.
	LoadTimeoutMS int `koanf:"load_timeout_ms" validate:"gte=1"`

	// TracingEnabled exports spans to stdout.
	TracingEnabled bool `koanf:"tracing_enabled"`

	// Metrics naming and latency buckets. Empty values keep the package
	// defaults.
	MetricsNamespace   string            `koanf:"metrics_namespace"`
	MetricsSubsystem   string            `koanf:"metrics_subsystem"`
	MetricsBucketsMS   []float64         `koanf:"metrics_buckets_ms" validate:"omitempty,dive,gt=0"`
	MetricsConstLabels map[string]string `koanf:"metrics_const_labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		LabsDir:          "labs",
		RenderQueueSize:  1024,
		WorkerCount:      runtime.NumCPU(),
		DefaultWidth:     960,
		MaxWidth:         4096,
		MaxRecords:       1000,
		ResizeRatePerSec: 4,
		ResizeBurst:      2,
		LoadTimeoutMS:    30_000,
		MetricsNamespace: "labviz",
	}
}
