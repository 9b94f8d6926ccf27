package gesture

import (
	"time"

	"github.com/saheli56/Temple-Run/internal/tracker"
)

// extendedRatio is how much farther from the wrist a fingertip must sit than
// its PIP joint before the finger counts as extended. A curled finger folds
// its tip back toward the palm, pulling it inside its own PIP radius.
const extendedRatio = 1.15

// LandmarkClassifier maps hand landmarks from the precision tracker to the
// gesture vocabulary via per-finger extension states: no fingers extended is
// a fist, only the index extended is a point, all four extended is an open
// palm. The tracker's own hand score serves as the sample confidence.
type LandmarkClassifier struct {
	ratio float64
}

// NewLandmarkClassifier creates a classifier with the default extension ratio.
func NewLandmarkClassifier() *LandmarkClassifier {
	return &LandmarkClassifier{ratio: extendedRatio}
}

// Classify derives a gesture sample from one hand's landmarks. A nil hand
// yields a none sample.
func (c *LandmarkClassifier) Classify(hand *tracker.HandLandmarks, ts time.Time) Sample {
	if hand == nil {
		return Sample{Kind: KindNone, Timestamp: ts}
	}

	norm := hand.Normalize()

	extended := 0
	indexExtended := false
	for i, f := range tracker.Fingers {
		if c.fingerExtended(norm, f) {
			extended++
			if i == 0 {
				indexExtended = true
			}
		}
	}

	conf := clamp01(hand.Score)
	switch {
	case extended == 0:
		return Sample{Kind: KindFist, Confidence: conf, Timestamp: ts}
	case extended == 1 && indexExtended:
		return Sample{Kind: KindIndexPoint, Confidence: conf, Timestamp: ts}
	case extended == len(tracker.Fingers):
		return Sample{Kind: KindOpenPalm, Confidence: conf, Timestamp: ts}
	default:
		return Sample{Kind: KindNone, Timestamp: ts}
	}
}

func (c *LandmarkClassifier) fingerExtended(h *tracker.HandLandmarks, f tracker.Finger) bool {
	pip := h.WristDistance(f.PIP)
	if pip == 0 {
		return false
	}
	return h.WristDistance(f.Tip) > pip*c.ratio
}
