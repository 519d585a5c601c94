// Command scroll-sim replays scripted reader sessions against labviz.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/labviz/internal/scrollsim"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		lab      = flag.String("lab", "books", "Lab to open")
		script   = flag.String("script", "", "YAML list of steps (default: built-in script)")
		sessions = flag.Int("sessions", scrollsim.DefaultSessions, "Number of concurrent sessions")
		width    = flag.Float64("width", scrollsim.DefaultWidth, "Opening viewport width")
		timeout  = flag.Duration("timeout", scrollsim.DefaultTimeout, "Dial and health check timeout")
		settle   = flag.Duration("settle", scrollsim.DefaultSettle, "Quiet period that ends a session")
		logFile  = flag.String("log", "", "Log file (default: scroll_sim_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Log every frame")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		scrollsim.ShowHelp()
		return
	}

	closer, err := scrollsim.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &scrollsim.Config{
		BaseURL:  *baseURL,
		Lab:      *lab,
		Script:   *script,
		Sessions: *sessions,
		Width:    *width,
		Timeout:  *timeout,
		Settle:   *settle,
		LogFile:  *logFile,
		Verbose:  *verbose,
	}
	if _, err := scrollsim.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel and closer already handled
	}
}
