// Package testdata builds synthetic camera frames and segmentation masks for
// pipeline tests. Nothing is loaded from disk; every fixture is drawn with
// gocv primitives so its shape metrics are known in advance.
package testdata

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// backgroundBGR fills frames with a blue tone far outside the default HSV
// skin bounds.
var backgroundBGR = gocv.NewScalar(200, 80, 40, 0)

// SolidBGR returns a width x height frame filled with one BGR color.
func SolidBGR(width, height int, b, g, r float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), height, width, gocv.MatTypeCV8UC3)
}

// SolidHSV returns a width x height frame filled with one HSV triple.
func SolidHSV(width, height int, h, s, v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(h, s, v, 0), height, width, gocv.MatTypeCV8UC3)
}

// BackgroundFrame returns a BGR frame with no skin-colored pixels.
func BackgroundFrame(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(backgroundBGR, height, width, gocv.MatTypeCV8UC3)
}

// HandFrame returns a BGR frame with a skin-colored disk on a non-skin
// background. Segmented and analyzed, the disk reads as a fist: one compact
// convex blob.
func HandFrame(width, height int) gocv.Mat {
	frame := BackgroundFrame(width, height)
	gocv.Circle(&frame, image.Pt(width/2, height/2), height/4+height/24, skinRGBA(), -1)
	return frame
}

// FistMask returns a binary mask holding one filled disk: high solidity, no
// deep convexity defects.
func FistMask(width, height int) gocv.Mat {
	mask := emptyMask(width, height)
	gocv.Circle(&mask, image.Pt(width/2, height/2), height/4+height/24, white, -1)
	return mask
}

// OpenPalmMask returns a binary mask of a palm disk with four fanned finger
// strokes: low solidity and at least three deep valleys between fingers.
func OpenPalmMask(width, height int) gocv.Mat {
	mask := emptyMask(width, height)

	cx := width / 2
	cy := height * 7 / 10
	palm := height / 6
	reach := height * 54 / 100
	thickness := height / 20

	gocv.Circle(&mask, image.Pt(cx, cy), palm, white, -1)
	for _, deg := range []float64{230, 255, 285, 310} {
		rad := deg * math.Pi / 180
		tip := image.Pt(
			cx+int(float64(reach)*math.Cos(rad)),
			cy+int(float64(reach)*math.Sin(rad)),
		)
		gocv.Line(&mask, image.Pt(cx, cy), tip, white, thickness)
	}
	return mask
}

// EmptyMask returns an all-background binary mask.
func EmptyMask(width, height int) gocv.Mat {
	return emptyMask(width, height)
}

func emptyMask(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC1)
}

// skinRGBA is the hand paint: BGR (60, 100, 200), an orange-red tone inside
// the default HSV skin bounds. gocv maps color.RGBA onto BGR channels.
func skinRGBA() color.RGBA {
	return color.RGBA{R: 200, G: 100, B: 60, A: 255}
}
