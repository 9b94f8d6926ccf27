// Package vision implements the classical computer-vision stages of the
// gesture pipeline: frame preprocessing, hand segmentation, and contour
// analysis. Each stage owns its Mats for exactly one pipeline pass.
package vision

import "errors"

var (
	// ErrInvalidFrame means the input frame was empty or malformed. The
	// caller logs it and skips the frame.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrNoHand means no foreground component large enough to be a hand was
	// found. Expected and frequent; not a failure.
	ErrNoHand = errors.New("no hand detected")
)

// Metrics are the scalar shape features the contour classifier consumes.
type Metrics struct {
	// Area is the contour area in pixels of the working frame.
	Area float64
	// HullArea is the area of the contour's convex hull.
	HullArea float64
	// Solidity is Area / HullArea, in [0,1]. Low values mean a spread-out
	// shape such as an open hand.
	Solidity float64
	// DefectCount is the number of convexity defects deeper than the depth
	// threshold; each one is a valley between two extended fingers.
	DefectCount int
}
