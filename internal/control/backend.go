// Package control owns backend selection, the unified polling interface the
// game loop consumes, and camera resource lifecycle.
package control

import (
	"errors"

	"github.com/saheli56/Temple-Run/internal/gesture"
)

// ErrBackendUnavailable means a backend's capability probe failed at
// initialization; the controller falls back to the next backend in the
// preference order.
var ErrBackendUnavailable = errors.New("backend unavailable")

// BackendKind identifies one of the interchangeable recognition strategies.
type BackendKind string

const (
	// BackendPrecisionTracker uses the hand-landmark helper process.
	BackendPrecisionTracker BackendKind = "precision_tracker"
	// BackendContourClassifier uses classical contour analysis over a local
	// or network camera.
	BackendContourClassifier BackendKind = "contour_classifier"
	// BackendKeyboardSimulated maps key presses directly to gestures,
	// bypassing the vision pipeline. It needs no camera and cannot fail.
	BackendKeyboardSimulated BackendKind = "keyboard_simulated"
)

// ParseBackendKind validates a backend name from configuration.
func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(s) {
	case BackendPrecisionTracker, BackendContourClassifier, BackendKeyboardSimulated:
		return BackendKind(s), nil
	}
	return "", errors.New("unknown backend kind: " + s)
}

// DefaultPreference is the probing order when none is configured.
func DefaultPreference() []BackendKind {
	return []BackendKind{
		BackendPrecisionTracker,
		BackendContourClassifier,
		BackendKeyboardSimulated,
	}
}

// Mode is the process-wide control mode the game loop consults.
type Mode string

const (
	// ModeGesture means the controller's action events drive the game.
	ModeGesture Mode = "gesture_active"
	// ModeKeyboard means the player is on plain keyboard input and the
	// pipeline idles.
	ModeKeyboard Mode = "keyboard"
)

// Backend is the closed contract every recognition strategy implements.
// Selection is a pure function of Probe results in preference order, decided
// once at initialization.
type Backend interface {
	// Kind identifies the strategy.
	Kind() BackendKind

	// Probe acquires the backend's resources (helper process, camera) and
	// reports whether the backend can run. A failed probe leaves no open
	// handles behind.
	Probe() error

	// Classify performs one pipeline pass and produces a gesture sample.
	// No hand in view is a valid KindNone sample, not an error. A missed
	// frame fails with capture.ErrFrameTimeout and is retried next tick.
	Classify() (gesture.Sample, error)

	// Degraded reports whether the backend has permanently lost its camera
	// mid-session and now emits steady none samples.
	Degraded() bool

	// Release frees the backend's resources. Idempotent.
	Release() error
}

// stateResetter is implemented by backends with cross-frame vision state
// (background models) that must restart when gesture control toggles.
type stateResetter interface {
	resetState()
}
