package scrollsim

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/labviz/pkg/logger"
)

// Run executes the simulation and returns the merged statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("scroll-sim")
	applyDefaults(cfg)

	steps := DefaultScript()
	if cfg.Script != "" {
		var err error
		if steps, err = LoadScript(cfg.Script); err != nil {
			return nil, err
		}
	}

	log.Info(ctx, "starting scroll simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("lab", cfg.Lab),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("steps", len(steps)),
		logger.Float64("width", cfg.Width))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	total := &Stats{StartTime: time.Now()}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Sessions; i++ {
		g.Go(func() error {
			st, err := runSession(gctx, cfg, steps, log)
			if st != nil {
				mu.Lock()
				total.add(st)
				mu.Unlock()
			}
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			return nil
		})
	}
	err := g.Wait()

	total.EndTime = time.Now()
	total.Duration = total.EndTime.Sub(total.StartTime)
	displayFinalStats(ctx, log, total)
	if err != nil {
		return total, err
	}
	log.Info(ctx, "simulation completed successfully")
	return total, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Sessions < 1 {
		cfg.Sessions = DefaultSessions
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var rendersPerSession float64
	if stats.Sessions > 0 {
		rendersPerSession = float64(stats.Renders) / float64(stats.Sessions)
	}
	log.Info(ctx, "final statistics",
		logger.Int("sessions", stats.Sessions),
		logger.Int("stepsSent", stats.StepsSent),
		logger.Int("renders", stats.Renders),
		logger.Int("rendersOpen", stats.RendersOpen),
		logger.Int("rendersResize", stats.RendersResize),
		logger.Int("rendersSection", stats.RendersSection),
		logger.Int("backpressure", stats.Backpressure),
		logger.Int("errors", stats.Errors),
		logger.Float64("rendersPerSession", rendersPerSession),
		logger.String("duration", stats.Duration.String()))
}
