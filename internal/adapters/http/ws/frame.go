package ws

import model "github.com/okian/labviz/internal/domain/model"

// Frame types sent to the client.
const (
	FrameReady        = "ready"
	FrameRender       = "render"
	FrameError        = "error"
	FrameBackpressure = "backpressure"
)

// Frame is a server message.
type Frame struct {
	Type    string  `json:"type"`
	Session string  `json:"session,omitempty"`
	JobID   string  `json:"job_id,omitempty"`
	Lab     string  `json:"lab,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Section string  `json:"section,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	SVG     string  `json:"svg,omitempty"`
	Error   string  `json:"error,omitempty"`
}

func resultFrame(res model.RenderResult) Frame { //nolint:gocritic // hugeParam: results are values
	f := Frame{
		Type:    FrameRender,
		JobID:   res.JobID,
		Lab:     res.Lab,
		Reason:  res.Reason,
		Section: res.Section,
		Width:   res.Width,
		Height:  res.Height,
		SVG:     res.SVG,
	}
	if res.Error != "" {
		f.Type = FrameError
		f.SVG = ""
		f.Error = res.Error
	}
	return f
}
