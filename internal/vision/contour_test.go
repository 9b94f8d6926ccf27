package vision

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/saheli56/Temple-Run/testdata"
)

func TestNewAnalyzer_Defaults(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{})
	if a.MinArea() != DefaultMinContourArea {
		t.Errorf("MinArea() = %f, want %f", a.MinArea(), DefaultMinContourArea)
	}
	if a.cfg.DefectDepth != DefaultDefectDepth {
		t.Errorf("DefectDepth = %f, want %f", a.cfg.DefectDepth, DefaultDefectDepth)
	}
}

func TestAnalyzer_Analyze_FistShape(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	mask := testdata.FistMask(320, 240)
	defer mask.Close()

	a := NewAnalyzer(AnalyzerConfig{})
	analysis, err := a.Analyze(&mask)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	m := analysis.Metrics
	if m.Area < 10000 {
		t.Errorf("Area = %f, want a disk of at least 10000", m.Area)
	}
	if m.Solidity < 0.9 {
		t.Errorf("Solidity = %f, want >= 0.9 for a convex disk", m.Solidity)
	}
	if m.DefectCount > 1 {
		t.Errorf("DefectCount = %d, want at most 1", m.DefectCount)
	}
	if len(analysis.Contour) == 0 || len(analysis.Hull) == 0 {
		t.Error("contour or hull geometry missing")
	}

	center := image.Pt(160, 120)
	if !center.In(analysis.Bounds) {
		t.Errorf("Bounds = %v does not contain the disk center", analysis.Bounds)
	}
}

func TestAnalyzer_Analyze_OpenPalmShape(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	mask := testdata.OpenPalmMask(320, 240)
	defer mask.Close()

	a := NewAnalyzer(AnalyzerConfig{})
	analysis, err := a.Analyze(&mask)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	m := analysis.Metrics
	if m.Solidity > 0.6 {
		t.Errorf("Solidity = %f, want <= 0.6 for spread fingers", m.Solidity)
	}
	if m.DefectCount < 3 {
		t.Errorf("DefectCount = %d, want >= 3 finger valleys", m.DefectCount)
	}
	if len(analysis.Defects) == 0 {
		t.Error("defect points missing from analysis")
	}
}

func TestAnalyzer_Analyze_NoHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	a := NewAnalyzer(AnalyzerConfig{})

	empty := testdata.EmptyMask(320, 240)
	defer empty.Close()
	if _, err := a.Analyze(&empty); !errors.Is(err, ErrNoHand) {
		t.Errorf("Analyze(empty) error = %v, want %v", err, ErrNoHand)
	}

	// A blob below the area threshold is noise, not a hand.
	small := testdata.EmptyMask(320, 240)
	defer small.Close()
	gocv.Circle(&small, image.Pt(160, 120), 20, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	if _, err := a.Analyze(&small); !errors.Is(err, ErrNoHand) {
		t.Errorf("Analyze(small blob) error = %v, want %v", err, ErrNoHand)
	}
}

func TestAnalyzer_Analyze_NilMask(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{})
	if _, err := a.Analyze(nil); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("Analyze(nil) error = %v, want %v", err, ErrInvalidFrame)
	}
}
