package tracker

import (
	"gocv.io/x/gocv"
)

// MockTracker is a test implementation of the Tracker interface that returns
// pre-configured results.
type MockTracker struct {
	hands []HandLandmarks
	err   error
}

// NewMockTracker creates a new MockTracker instance.
func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

// SetHands sets the hands returned by Detect.
func (m *MockTracker) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error returned by Detect.
func (m *MockTracker) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockTracker) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock tracker.
func (m *MockTracker) Close() error {
	return nil
}

// Fixture hands below model an upright right hand, wrist at the bottom of the
// frame, in normalized image coordinates (y grows downward).

// FistLandmarks returns landmarks for a closed hand: every fingertip folded
// back toward the palm, closer to the wrist than its own PIP joint.
func FistLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.90}

	// Thumb curled across the palm
	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.84}
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.76}
	h.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.72, Z: -0.02}
	h.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.70, Z: -0.03}

	// Index folded back toward the palm
	h.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.63}
	h.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.58, Z: -0.03}
	h.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.62, Z: -0.04}
	h.Points[IndexTip] = Point3D{X: 0.52, Y: 0.68, Z: -0.03}

	// Middle folded
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.62}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.57, Z: -0.03}
	h.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.61, Z: -0.04}
	h.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.67, Z: -0.03}

	// Ring folded
	h.Points[RingMCP] = Point3D{X: 0.44, Y: 0.63}
	h.Points[RingPIP] = Point3D{X: 0.44, Y: 0.58, Z: -0.03}
	h.Points[RingDIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.46, Y: 0.68, Z: -0.03}

	// Pinky folded
	h.Points[PinkyMCP] = Point3D{X: 0.38, Y: 0.66}
	h.Points[PinkyPIP] = Point3D{X: 0.38, Y: 0.62, Z: -0.03}
	h.Points[PinkyDIP] = Point3D{X: 0.39, Y: 0.65, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 0.40, Y: 0.70, Z: -0.03}

	return h
}

// IndexPointLandmarks returns landmarks for a pointing hand: index extended,
// every other finger folded.
func IndexPointLandmarks() HandLandmarks {
	h := FistLandmarks()

	// Index extended straight up
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.48}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.38}
	h.Points[IndexTip] = Point3D{X: 0.58, Y: 0.28}

	return h
}

// OpenPalmLandmarks returns landmarks for an open hand: all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.90}

	// Thumb extended to the side
	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.84}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.78}
	h.Points[ThumbIP] = Point3D{X: 0.67, Y: 0.72}
	h.Points[ThumbTip] = Point3D{X: 0.71, Y: 0.67}

	// Index extended
	h.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.63}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.48}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.38}
	h.Points[IndexTip] = Point3D{X: 0.58, Y: 0.28}

	// Middle extended
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.62}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.46}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.35}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.24}

	// Ring extended
	h.Points[RingMCP] = Point3D{X: 0.44, Y: 0.63}
	h.Points[RingPIP] = Point3D{X: 0.43, Y: 0.48}
	h.Points[RingDIP] = Point3D{X: 0.42, Y: 0.38}
	h.Points[RingTip] = Point3D{X: 0.42, Y: 0.28}

	// Pinky extended
	h.Points[PinkyMCP] = Point3D{X: 0.38, Y: 0.66}
	h.Points[PinkyPIP] = Point3D{X: 0.36, Y: 0.54}
	h.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.46}
	h.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.38}

	return h
}
