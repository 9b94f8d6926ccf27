package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Default working resolution. Downsampling bounds per-frame cost regardless
// of what the camera delivers.
const (
	DefaultWorkWidth  = 320
	DefaultWorkHeight = 240
)

// Preprocessor downsamples raw camera frames to the working resolution and
// optionally converts them to HSV for skin filtering. It is a pure
// transformation: no state survives between frames.
type Preprocessor struct {
	width  int
	height int
	toHSV  bool
}

// NewPreprocessor creates a preprocessor producing width x height frames.
// Non-positive dimensions fall back to the defaults. When toHSV is set the
// output is in HSV color space, otherwise BGR is preserved.
func NewPreprocessor(width, height int, toHSV bool) *Preprocessor {
	if width <= 0 {
		width = DefaultWorkWidth
	}
	if height <= 0 {
		height = DefaultWorkHeight
	}
	return &Preprocessor{width: width, height: height, toHSV: toHSV}
}

// Process transforms one raw frame into the working representation. The
// returned Mat is owned by the caller and must be closed after the pipeline
// pass. An empty input fails with ErrInvalidFrame.
func (p *Preprocessor) Process(src *gocv.Mat) (gocv.Mat, error) {
	if src == nil || src.Empty() {
		return gocv.Mat{}, ErrInvalidFrame
	}

	resized := gocv.NewMat()
	gocv.Resize(*src, &resized, image.Pt(p.width, p.height), 0, 0, gocv.InterpolationArea)

	if !p.toHSV {
		return resized, nil
	}
	defer resized.Close()

	hsv := gocv.NewMat()
	gocv.CvtColor(resized, &hsv, gocv.ColorBGRToHSV)
	return hsv, nil
}

// Size returns the working resolution.
func (p *Preprocessor) Size() (width, height int) {
	return p.width, p.height
}
