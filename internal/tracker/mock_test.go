package tracker

import (
	"errors"
	"testing"
)

func TestMockTracker_Detect(t *testing.T) {
	m := NewMockTracker()

	hands, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 0 {
		t.Errorf("Detect() returned %d hands, want 0", len(hands))
	}

	m.SetHands([]HandLandmarks{FistLandmarks()})
	hands, err = m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("Detect() returned %d hands, want 1", len(hands))
	}
	if hands[0].Handedness != "Right" {
		t.Errorf("Handedness = %q, want %q", hands[0].Handedness, "Right")
	}
}

func TestMockTracker_SetError(t *testing.T) {
	m := NewMockTracker()
	want := errors.New("tracker offline")
	m.SetError(want)

	_, err := m.Detect(nil)
	if !errors.Is(err, want) {
		t.Errorf("Detect() error = %v, want %v", err, want)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFixtureLandmarks_Plausible(t *testing.T) {
	fixtures := map[string]HandLandmarks{
		"fist":        FistLandmarks(),
		"index point": IndexPointLandmarks(),
		"open palm":   OpenPalmLandmarks(),
	}

	for name, h := range fixtures {
		t.Run(name, func(t *testing.T) {
			if h.Score <= 0 || h.Score > 1 {
				t.Errorf("Score = %f, want (0,1]", h.Score)
			}
			for i, p := range h.Points {
				if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
					t.Errorf("point %d = %+v outside normalized image space", i, p)
				}
			}
			// The wrist anchors the bottom of an upright hand.
			if h.Points[Wrist].Y < h.Points[MiddleMCP].Y {
				t.Error("wrist sits above the middle MCP")
			}
		})
	}
}
