// Package gesture maps hand observations to the game's gesture vocabulary and
// turns stable gestures into discrete control actions.
package gesture

import (
	"fmt"
	"time"
)

// Kind identifies one gesture of the fixed vocabulary.
type Kind string

const (
	// KindFist is a closed hand.
	KindFist Kind = "fist"
	// KindIndexPoint is a hand with only the index finger extended.
	KindIndexPoint Kind = "index_point"
	// KindOpenPalm is a hand with all fingers extended.
	KindOpenPalm Kind = "open_palm"
	// KindNone means no hand or an ambiguous shape.
	KindNone Kind = "none"
)

// ActionKind identifies one discrete game action.
type ActionKind string

const (
	// ActionJump makes the runner jump.
	ActionJump ActionKind = "jump"
	// ActionCrouch makes the runner slide under obstacles.
	ActionCrouch ActionKind = "crouch"
	// ActionIdle resets the runner's stance without a game action.
	ActionIdle ActionKind = "idle"
	// ActionNone means no new action this tick.
	ActionNone ActionKind = "none"
)

// Sample is one classification result for a single processed frame.
type Sample struct {
	Kind       Kind
	Confidence float64
	Timestamp  time.Time
}

// Validate checks that the sample's fields are within their allowed ranges.
func (s Sample) Validate() error {
	switch s.Kind {
	case KindFist, KindIndexPoint, KindOpenPalm, KindNone:
	default:
		return fmt.Errorf("invalid gesture kind %q", s.Kind)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence %f out of range [0,1]", s.Confidence)
	}
	return nil
}

// Stable is the smoother's output: a gesture that held consensus across the
// recent history, or KindNone when no consensus exists.
type Stable struct {
	Kind       Kind
	Confidence float64
	Timestamp  time.Time
}

// ActionEvent is one discrete control action handed to the game loop.
type ActionEvent struct {
	Kind      ActionKind
	Timestamp time.Time
}

// ActionFor returns the game action a gesture kind maps to.
func ActionFor(k Kind) ActionKind {
	switch k {
	case KindFist:
		return ActionJump
	case KindIndexPoint:
		return ActionCrouch
	case KindOpenPalm:
		return ActionIdle
	default:
		return ActionNone
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
