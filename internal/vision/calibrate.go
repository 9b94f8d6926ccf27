package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Calibration constants
const (
	// DefaultCalibrationFrames is how many frames the calibrator averages.
	DefaultCalibrationFrames = 30

	// Margins widen the averaged skin sample into an inclusive range.
	hueMargin = 10.0
	satMargin = 60.0
	valMargin = 80.0
)

// Calibrator derives a personalized skin-tone range from frames of the
// operator's hand held inside a sample region. Each frame contributes the
// region's mean HSV; the averaged mean across all frames, widened by fixed
// margins, becomes the segmentation bounds.
type Calibrator struct {
	target  int
	samples []gocv.Scalar
}

// NewCalibrator creates a calibrator that averages over the given number of
// frames. Non-positive counts fall back to the default.
func NewCalibrator(frames int) *Calibrator {
	if frames <= 0 {
		frames = DefaultCalibrationFrames
	}
	return &Calibrator{target: frames}
}

// SampleRegion returns the centered region the operator should fill with
// their hand, sized to a third of the frame.
func SampleRegion(width, height int) image.Rectangle {
	w := width / 3
	h := height / 3
	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Add records the mean HSV of the sample region in one frame. The frame must
// already be in HSV space.
func (c *Calibrator) Add(hsvFrame *gocv.Mat, region image.Rectangle) error {
	if hsvFrame == nil || hsvFrame.Empty() {
		return ErrInvalidFrame
	}
	if c.Done() {
		return nil
	}

	bounds := image.Rect(0, 0, hsvFrame.Cols(), hsvFrame.Rows())
	region = region.Intersect(bounds)
	if region.Empty() {
		return fmt.Errorf("sample region outside frame")
	}

	roi := hsvFrame.Region(region)
	mean := roi.Mean()
	roi.Close()

	c.samples = append(c.samples, mean)
	return nil
}

// Remaining returns how many frames are still needed.
func (c *Calibrator) Remaining() int {
	left := c.target - len(c.samples)
	if left < 0 {
		return 0
	}
	return left
}

// Done reports whether enough frames have been sampled.
func (c *Calibrator) Done() bool {
	return len(c.samples) >= c.target
}

// Bounds averages the collected samples into a skin-tone range.
func (c *Calibrator) Bounds() (HSVBounds, error) {
	if len(c.samples) == 0 {
		return HSVBounds{}, fmt.Errorf("no calibration samples collected")
	}

	var sumH, sumS, sumV float64
	for _, s := range c.samples {
		sumH += s.Val1
		sumS += s.Val2
		sumV += s.Val3
	}
	n := float64(len(c.samples))
	h, s, v := sumH/n, sumS/n, sumV/n

	return HSVBounds{
		HMin: clampChannel(h-hueMargin, 179),
		SMin: clampChannel(s-satMargin, 255),
		VMin: clampChannel(v-valMargin, 255),
		HMax: clampChannel(h+hueMargin, 179),
		SMax: clampChannel(s+satMargin, 255),
		VMax: clampChannel(v+valMargin, 255),
	}, nil
}

// Reset discards collected samples so calibration can restart.
func (c *Calibrator) Reset() {
	c.samples = c.samples[:0]
}

func clampChannel(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
