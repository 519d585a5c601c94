package scrollsim

import "time"

// Defaults for a run.
const (
	DefaultSessions = 4
	DefaultWidth    = 960
	DefaultTimeout  = 10 * time.Second
	DefaultSettle   = 500 * time.Millisecond
)

// Render reasons reported by the service.
const (
	ReasonOpen    = "open"
	ReasonResize  = "resize"
	ReasonSection = "section"
)
