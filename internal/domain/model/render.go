package model

import "time"

// RenderJob asks a worker to lay out and draw one lab for a session.
type RenderJob struct {
	ID         string    // unique job id
	SessionID  string    // interactive session that receives the result
	Lab        string    // dataset name
	Width      float64   // viewport width in pixels
	Section    string    // narrative section active when the job was queued
	Reason     string    // what triggered the render: open, resize, section
	EnqueuedAt time.Time // queue entry time
}

// RenderResult is what a worker delivers back for a RenderJob.
type RenderResult struct {
	JobID   string  `json:"job_id"`
	Lab     string  `json:"lab"`
	Reason  string  `json:"reason"`
	Section string  `json:"section,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	SVG     string  `json:"svg,omitempty"`
	Error   string  `json:"error,omitempty"`
}
