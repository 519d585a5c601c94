package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/labviz/internal/app"
	"github.com/okian/labviz/internal/lab"
	"github.com/okian/labviz/pkg/logger"
)

type rootArgs struct {
	logLevel    string
	maxWidth    float64
	loadTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	var args rootArgs
	cmd := &cobra.Command{
		Use:           "labviz-render",
		Short:         "Render and inspect labviz lab manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(args.logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&args.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().Float64Var(&args.maxWidth, "max-width", 8192, "largest accepted width")
	cmd.PersistentFlags().DurationVar(&args.loadTimeout, "load-timeout", 30*time.Second, "source load timeout")

	cmd.AddCommand(newRenderCmd(&args), newTrendCmd(&args), newInspectCmd(&args))
	return cmd
}

// open loads the manifest at path and runs its pipeline.
func open(ctx context.Context, args *rootArgs, path string) (*service.Service, *lab.Manifest, error) {
	m, err := lab.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	opts := []service.Option{
		service.WithManifests(m),
		service.WithWorkerCount(1),
		service.WithQueueSize(1),
		service.WithMaxWidth(args.maxWidth),
		service.WithLoadTimeout(args.loadTimeout),
		service.WithLogger(logger.Get().Named("labviz-render")),
	}
	if m.Chart.Width > 0 {
		opts = append(opts, service.WithDefaultWidth(m.Chart.Width))
	}
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, err
	}
	return svc, m, nil
}

// output returns the writer for --out: stdout for "" or "-".
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
