// Package tracker provides the precision hand-landmark backend: an opaque
// helper process that turns video frames into 21-point hand landmarks.
package tracker

import "gocv.io/x/gocv"

// Tracker produces hand landmarks from video frames.
type Tracker interface {
	// Detect analyzes a frame and returns landmarks for each detected hand.
	// An empty slice means no hands in the frame.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the tracker.
	Close() error
}

// Config holds tracker options.
type Config struct {
	// MaxHands is the maximum number of hands to report (default 1; the
	// game reads a single operator hand).
	MaxHands int

	// MinScore drops hands the model reports below this confidence.
	MinScore float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands: 1,
		MinScore: 0.5,
	}
}
