package scrollsim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/labviz/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging configures logging to both console and file. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "scroll_sim_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`labviz scroll simulator
=======================

Opens websocket sessions against a running labviz service, replays a script
of resize and section events, and checks every render it gets back.

Usage:
  scroll-sim [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -lab string        Lab to open (default "books")
  -script string     YAML list of steps (default: built-in script)
  -sessions int      Concurrent sessions (default 4)
  -width float       Opening viewport width (default 960)
  -timeout duration  Dial and health check timeout (default 10s)
  -settle duration   Quiet period that ends a session (default 500ms)
  -log string        Log file (default: scroll_sim_TIMESTAMP.log)
  -verbose           Log every frame
  -help              Show this help message

Script format:
  - {type: section, id: intro}
  - {type: resize, width: 640, pause: 200ms}
`)
}
