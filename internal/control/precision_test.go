package control

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/saheli56/Temple-Run/internal/capture"
	"github.com/saheli56/Temple-Run/internal/gesture"
	"github.com/saheli56/Temple-Run/internal/tracker"
	"github.com/saheli56/Temple-Run/testdata"
)

// mockedPrecisionBackend wires a precision backend to recorded frames and a
// scripted tracker, sidestepping Probe's helper-process discovery.
func mockedPrecisionBackend(t *testing.T, frames []*gocv.Mat) (*precisionBackend, *capture.MockCamera, *tracker.MockTracker) {
	t.Helper()

	b := newPrecisionBackend(testConfig())
	cam := capture.NewMockCamera(frames, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	trk := tracker.NewMockTracker()
	b.cam = cam
	b.trk = trk
	b.async = false
	return b, cam, trk
}

func TestPrecisionBackend_ClassifiesLandmarks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	frame := testdata.HandFrame(640, 480)
	defer frame.Close()

	b, _, trk := mockedPrecisionBackend(t, []*gocv.Mat{&frame})
	defer b.Release()

	tests := []struct {
		name  string
		hands []tracker.HandLandmarks
		want  gesture.Kind
	}{
		{name: "fist", hands: []tracker.HandLandmarks{tracker.FistLandmarks()}, want: gesture.KindFist},
		{name: "index point", hands: []tracker.HandLandmarks{tracker.IndexPointLandmarks()}, want: gesture.KindIndexPoint},
		{name: "open palm", hands: []tracker.HandLandmarks{tracker.OpenPalmLandmarks()}, want: gesture.KindOpenPalm},
		{name: "no hands", hands: nil, want: gesture.KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trk.SetHands(tt.hands)

			sample, err := b.Classify()
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if sample.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", sample.Kind, tt.want)
			}
		})
	}
}

func TestPrecisionBackend_TrackerErrorPropagates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	frame := testdata.HandFrame(640, 480)
	defer frame.Close()

	b, _, trk := mockedPrecisionBackend(t, []*gocv.Mat{&frame})
	defer b.Release()

	trk.SetError(errors.New("helper process died"))
	if _, err := b.Classify(); err == nil {
		t.Error("Classify() expected error when the tracker fails")
	}
}

func TestPrecisionBackend_DegradedEmitsNone(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	b, _, _ := mockedPrecisionBackend(t, nil)
	defer b.Release()

	b.degraded = true

	sample, err := b.Classify()
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if sample.Kind != gesture.KindNone {
		t.Errorf("Kind = %q, want %q", sample.Kind, gesture.KindNone)
	}
}

func TestPrecisionBackend_ProbeFailsWithoutHelper(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	b := newPrecisionBackend(testConfig())
	err := b.Probe()
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Probe() error = %v, want %v", err, ErrBackendUnavailable)
	}
}
