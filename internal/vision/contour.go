package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Analyzer constants
const (
	// DefaultMinContourArea rejects components too small to be a hand.
	DefaultMinContourArea = 3000.0
	// DefaultDefectDepth is the minimum convexity defect depth, in OpenCV's
	// fixed-point units (1/256 pixel), for a defect to count as a finger
	// valley.
	DefaultDefectDepth = 8000.0
)

// AnalyzerConfig holds the contour analysis thresholds.
type AnalyzerConfig struct {
	// MinArea is the minimum contour area for a region to count as a hand.
	MinArea float64
	// DefectDepth is the minimum defect depth in fixed-point units.
	DefectDepth float64
}

// DefaultAnalyzerConfig returns the default analysis thresholds.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinArea:     DefaultMinContourArea,
		DefectDepth: DefaultDefectDepth,
	}
}

// Analysis holds the shape metrics of the dominant hand contour plus the
// geometry the debug overlay draws. Point slices are plain copies; nothing
// here needs closing.
type Analysis struct {
	Metrics Metrics
	Contour []image.Point
	Hull    []image.Point
	Defects []image.Point
	Bounds  image.Rectangle
}

// Analyzer extracts the dominant contour from a binary hand mask and derives
// solidity and defect-count metrics from its convex hull.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer creates an analyzer. Zero config fields fall back to defaults.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.MinArea <= 0 {
		cfg.MinArea = DefaultMinContourArea
	}
	if cfg.DefectDepth <= 0 {
		cfg.DefectDepth = DefaultDefectDepth
	}
	return &Analyzer{cfg: cfg}
}

// MinArea returns the configured minimum contour area.
func (a *Analyzer) MinArea() float64 {
	return a.cfg.MinArea
}

// Analyze finds the largest contour in the mask and computes its metrics.
//
// 1. Extract external contours
// 2. Keep the largest by area; below MinArea fails ErrNoHand
// 3. Convex hull twice: point form for hull area, index form for defects
// 4. Count convexity defects deeper than DefectDepth
// 5. Solidity = area / hull area
func (a *Analyzer) Analyze(mask *gocv.Mat) (*Analysis, error) {
	if mask == nil || mask.Empty() {
		return nil, ErrInvalidFrame
	}

	contours := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestArea < a.cfg.MinArea {
		return nil, ErrNoHand
	}

	contour := contours.At(bestIdx)

	hullPoints := gocv.NewMat()
	defer hullPoints.Close()
	gocv.ConvexHull(contour, &hullPoints, true, true)

	hullIndices := gocv.NewMat()
	defer hullIndices.Close()
	gocv.ConvexHull(contour, &hullIndices, true, false)

	hull := make([]image.Point, 0, hullPoints.Rows())
	for i := 0; i < hullPoints.Rows(); i++ {
		v := hullPoints.GetVeciAt(i, 0)
		hull = append(hull, image.Pt(int(v[0]), int(v[1])))
	}

	hullArea := bestArea
	if len(hull) >= 3 {
		hullVec := gocv.NewPointVectorFromPoints(hull)
		hullArea = gocv.ContourArea(hullVec)
		hullVec.Close()
	}

	defectPoints, defectCount := a.findDefects(contour, hullIndices)

	solidity := 1.0
	if hullArea > 0 {
		solidity = bestArea / hullArea
	}
	if solidity > 1 {
		solidity = 1
	}

	return &Analysis{
		Metrics: Metrics{
			Area:        bestArea,
			HullArea:    hullArea,
			Solidity:    solidity,
			DefectCount: defectCount,
		},
		Contour: contour.ToPoints(),
		Hull:    hull,
		Defects: defectPoints,
		Bounds:  gocv.BoundingRect(contour),
	}, nil
}

// findDefects counts hull defects deeper than the depth threshold and
// collects their farthest points for the overlay.
func (a *Analyzer) findDefects(contour gocv.PointVector, hullIndices gocv.Mat) ([]image.Point, int) {
	// convexityDefects needs a real polygon and a non-degenerate hull.
	if contour.Size() < 5 || hullIndices.Rows() < 3 {
		return nil, 0
	}

	defects := gocv.NewMat()
	defer defects.Close()
	gocv.ConvexityDefects(contour, hullIndices, &defects)

	var points []image.Point
	count := 0
	for i := 0; i < defects.Rows(); i++ {
		d := defects.GetVeciAt(i, 0)
		if len(d) < 4 {
			continue
		}
		if float64(d[3]) <= a.cfg.DefectDepth {
			continue
		}
		count++
		far := int(d[2])
		if far >= 0 && far < contour.Size() {
			points = append(points, contour.At(far))
		}
	}
	return points, count
}
