package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	overlayContour = color.RGBA{G: 255, A: 255}
	overlayHull    = color.RGBA{B: 255, A: 255}
	overlayDefect  = color.RGBA{R: 255, A: 255}
	overlayText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// DrawOverlay annotates a BGR working frame in place with the analysis
// geometry and the classified gesture label. Operator aid only; nothing in
// the pipeline consumes the annotated frame.
func DrawOverlay(frame *gocv.Mat, a *Analysis, label string, confidence float64) {
	if frame == nil || frame.Empty() {
		return
	}

	if a != nil {
		if len(a.Contour) > 1 {
			cv := gocv.NewPointsVectorFromPoints([][]image.Point{a.Contour})
			gocv.DrawContours(frame, cv, -1, overlayContour, 2)
			cv.Close()
		}
		if len(a.Hull) > 1 {
			hv := gocv.NewPointsVectorFromPoints([][]image.Point{a.Hull})
			gocv.DrawContours(frame, hv, -1, overlayHull, 2)
			hv.Close()
		}
		for _, p := range a.Defects {
			gocv.Circle(frame, p, 4, overlayDefect, -1)
		}
		gocv.Rectangle(frame, a.Bounds, overlayHull, 1)
	}

	text := label
	if a != nil {
		text = fmt.Sprintf("%s (%.2f) sol=%.2f def=%d", label, confidence, a.Metrics.Solidity, a.Metrics.DefectCount)
	}
	gocv.PutText(frame, text, image.Pt(10, 24), gocv.FontHersheySimplex, 0.6, overlayText, 2)
}
