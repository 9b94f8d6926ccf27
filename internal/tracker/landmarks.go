package tracker

import "math"

// Landmark indices follow the MediaPipe hand model convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger pairs the joints the classifier compares to decide whether a finger
// is extended.
type Finger struct {
	Tip int
	PIP int
}

// Fingers lists the four non-thumb fingers in index-to-pinky order. The thumb
// is excluded from extension voting: a tucked thumb reads unreliably from
// landmark distances alone.
var Fingers = [4]Finger{
	{Tip: IndexTip, PIP: IndexPIP},
	{Tip: MiddleTip, PIP: MiddlePIP},
	{Tip: RingTip, PIP: RingPIP},
	{Tip: PinkyTip, PIP: PinkyPIP},
}

// Point3D is a point in normalized image space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks holds the 21 landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize returns a copy of the landmarks translated so the wrist sits at
// the origin and scaled so the wrist-to-middle-MCP distance is 1.0. This
// removes hand position and hand size from downstream geometry checks.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	out := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, out.Points[MiddleMCP])
	if scale < 1e-10 {
		return out
	}
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i].X /= scale
		out.Points[i].Y /= scale
		out.Points[i].Z /= scale
	}

	return out
}

// WristDistance returns the distance of landmark i from the wrist.
func (h *HandLandmarks) WristDistance(i int) float64 {
	return distance3D(h.Points[Wrist], h.Points[i])
}
