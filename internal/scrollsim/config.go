// Package scrollsim replays scripted reader sessions against a running
// labviz service and checks that renders only follow real changes.
package scrollsim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Lab      string        // Lab to open
	Script   string        // Optional YAML script path; empty uses DefaultScript
	Sessions int           // Number of concurrent sessions
	Width    float64       // Opening viewport width
	Timeout  time.Duration // Per-request and per-frame timeout
	Settle   time.Duration // Wait after the last step for trailing renders
	LogFile  string        // Log file for run output
	Verbose  bool          // Enable verbose logging
}

// Step is one scripted client action.
type Step struct {
	Type  string        `yaml:"type"`            // resize or section
	Width float64       `yaml:"width,omitempty"` // for resize
	ID    string        `yaml:"id,omitempty"`    // for section
	Pause time.Duration `yaml:"pause,omitempty"` // wait before the next step
}

// Frame is a server message as seen by the client.
type Frame struct {
	Type    string  `json:"type"`
	Session string  `json:"session,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Section string  `json:"section,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	SVG     string  `json:"svg,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Sessions       int
	StepsSent      int
	Renders        int
	RendersOpen    int
	RendersResize  int
	RendersSection int
	Backpressure   int
	Errors         int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// add merges o into s.
func (s *Stats) add(o *Stats) {
	s.Sessions += o.Sessions
	s.StepsSent += o.StepsSent
	s.Renders += o.Renders
	s.RendersOpen += o.RendersOpen
	s.RendersResize += o.RendersResize
	s.RendersSection += o.RendersSection
	s.Backpressure += o.Backpressure
	s.Errors += o.Errors
}
