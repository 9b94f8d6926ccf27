package vision

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Segmentation constants
const (
	// MorphKernelSize is the structuring element size for mask cleanup (3x3).
	MorphKernelSize = 3
	// MaskBlurSize is the Gaussian kernel size applied after morphology (5x5).
	MaskBlurSize = 5
	// DefaultWarmupFrames is how many frames the background model absorbs
	// before foreground output is trusted.
	DefaultWarmupFrames = 10
	// foregroundThreshold binarizes the subtractor output.
	foregroundThreshold = 200
)

// Segmenter isolates candidate hand pixels from a working frame into a
// binary mask.
type Segmenter interface {
	// Segment produces a binary foreground mask for one frame. The returned
	// Mat is owned by the caller. Fails ErrNoHand while the strategy cannot
	// yet produce a trustworthy mask (background warm-up).
	Segment(frame *gocv.Mat) (gocv.Mat, error)

	// Reset clears accumulated state, forcing a fresh warm-up where one
	// applies.
	Reset()

	// Close releases resources held by the segmenter.
	Close()
}

// HSVBounds is an inclusive skin-tone range over the HSV channels.
type HSVBounds struct {
	HMin, SMin, VMin float64
	HMax, SMax, VMax float64
}

// DefaultSkinBounds covers common skin tones under indoor light. IP-camera
// color drift beyond a bounded tolerance defeats it; that is a documented
// limitation of the strategy, not a defect.
func DefaultSkinBounds() HSVBounds {
	return HSVBounds{
		HMin: 0, SMin: 20, VMin: 70,
		HMax: 20, SMax: 255, VMax: 255,
	}
}

// lower and upper return the bounds as gocv scalars.
func (b HSVBounds) lower() gocv.Scalar { return gocv.NewScalar(b.HMin, b.SMin, b.VMin, 0) }
func (b HSVBounds) upper() gocv.Scalar { return gocv.NewScalar(b.HMax, b.SMax, b.VMax, 0) }

// SkinSegmenter thresholds an HSV frame into a skin-tone mask, then cleans
// the mask with open+close morphology and a small blur.
type SkinSegmenter struct {
	bounds HSVBounds
	kernel gocv.Mat
	mu     sync.Mutex
}

// NewSkinSegmenter creates a skin-tone segmenter. Zero bounds fall back to
// DefaultSkinBounds.
func NewSkinSegmenter(bounds HSVBounds) *SkinSegmenter {
	if bounds == (HSVBounds{}) {
		bounds = DefaultSkinBounds()
	}
	return &SkinSegmenter{
		bounds: bounds,
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(MorphKernelSize, MorphKernelSize)),
	}
}

// Segment thresholds the HSV frame against the skin bounds.
//
// 1. In-range threshold over H, S, V
// 2. Morphological open to drop speckle noise
// 3. Morphological close to fill holes inside the hand
// 4. Gaussian blur to soften the boundary before contour extraction
func (s *SkinSegmenter) Segment(frame *gocv.Mat) (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame == nil || frame.Empty() {
		return gocv.Mat{}, ErrInvalidFrame
	}

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(*frame, s.bounds.lower(), s.bounds.upper(), &mask)

	cleaned := gocv.NewMat()
	gocv.MorphologyEx(mask, &cleaned, gocv.MorphOpen, s.kernel)
	gocv.MorphologyEx(cleaned, &cleaned, gocv.MorphClose, s.kernel)
	mask.Close()

	blurred := gocv.NewMat()
	gocv.GaussianBlur(cleaned, &blurred, image.Pt(MaskBlurSize, MaskBlurSize), 0, 0, gocv.BorderDefault)
	cleaned.Close()

	return blurred, nil
}

// Reset is a no-op: skin filtering holds no cross-frame state.
func (s *SkinSegmenter) Reset() {}

// Close releases the morphology kernel.
func (s *SkinSegmenter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.kernel.Empty() {
		s.kernel.Close()
	}
}

// SetBounds replaces the skin-tone range, e.g. after calibration.
func (s *SkinSegmenter) SetBounds(bounds HSVBounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = bounds
}

// Bounds returns the active skin-tone range.
func (s *SkinSegmenter) Bounds() HSVBounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// BackgroundSegmenter flags pixels deviating from a running MOG2 background
// model as foreground. The first warmup frames only feed the model; until
// then Segment fails ErrNoHand because the foreground estimate is noise.
type BackgroundSegmenter struct {
	subtractor gocv.BackgroundSubtractorMOG2
	kernel     gocv.Mat
	warmup     int
	seen       int
	mu         sync.Mutex
}

// NewBackgroundSegmenter creates a background-subtraction segmenter with the
// given warm-up length. Non-positive warmup falls back to the default.
func NewBackgroundSegmenter(warmup int) *BackgroundSegmenter {
	if warmup <= 0 {
		warmup = DefaultWarmupFrames
	}
	return &BackgroundSegmenter{
		subtractor: gocv.NewBackgroundSubtractorMOG2WithParams(300, 25, false),
		kernel:     gocv.GetStructuringElement(gocv.MorphRect, image.Pt(MorphKernelSize, MorphKernelSize)),
		warmup:     warmup,
	}
}

// Segment feeds the frame to the background model and returns the binarized
// foreground mask once warm-up has completed.
func (s *BackgroundSegmenter) Segment(frame *gocv.Mat) (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame == nil || frame.Empty() {
		return gocv.Mat{}, ErrInvalidFrame
	}

	fg := gocv.NewMat()
	s.subtractor.Apply(*frame, &fg)
	s.seen++

	if s.seen <= s.warmup {
		fg.Close()
		return gocv.Mat{}, ErrNoHand
	}

	mask := gocv.NewMat()
	gocv.Threshold(fg, &mask, foregroundThreshold, 255, gocv.ThresholdBinary)
	fg.Close()

	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, s.kernel)
	return mask, nil
}

// Reset discards the background model and restarts warm-up.
func (s *BackgroundSegmenter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subtractor.Close()
	s.subtractor = gocv.NewBackgroundSubtractorMOG2WithParams(300, 25, false)
	s.seen = 0
}

// Close releases the background model and kernel.
func (s *BackgroundSegmenter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subtractor.Close()
	if !s.kernel.Empty() {
		s.kernel.Close()
	}
}

// Warm reports whether the warm-up phase has completed.
func (s *BackgroundSegmenter) Warm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen > s.warmup
}
