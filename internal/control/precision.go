package control

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/saheli56/Temple-Run/internal/capture"
	"github.com/saheli56/Temple-Run/internal/gesture"
	"github.com/saheli56/Temple-Run/internal/logging"
	"github.com/saheli56/Temple-Run/internal/tracker"
	"github.com/saheli56/Temple-Run/internal/vision"
)

// precisionBackend classifies gestures from hand landmarks produced by the
// tracker helper process. It is the most accurate backend and the first one
// probed.
type precisionBackend struct {
	cam        capture.Camera
	worker     *capture.Worker
	async      bool
	pre        *vision.Preprocessor
	trk        tracker.Tracker
	classifier *gesture.LandmarkClassifier
	sink       FrameSink

	failures int
	degraded bool
}

func newPrecisionBackend(cfg Config) *precisionBackend {
	return &precisionBackend{
		cam:        capture.New(cfg.Camera),
		async:      cfg.AsyncCapture,
		pre:        vision.NewPreprocessor(cfg.WorkWidth, cfg.WorkHeight, false),
		classifier: gesture.NewLandmarkClassifier(),
		sink:       cfg.FrameSink,
	}
}

func (b *precisionBackend) Kind() BackendKind { return BackendPrecisionTracker }

func (b *precisionBackend) Probe() error {
	if !tracker.Available() {
		return fmt.Errorf("%w: hand tracker service not installed", ErrBackendUnavailable)
	}
	trk, err := tracker.NewServiceTracker(tracker.DefaultConfig())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := b.cam.Open(); err != nil {
		trk.Close()
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	b.trk = trk
	if b.async {
		b.worker = capture.NewWorker(b.cam)
		b.worker.Start()
	}
	return nil
}

func (b *precisionBackend) Classify() (gesture.Sample, error) {
	if b.degraded {
		return gesture.Sample{Kind: gesture.KindNone, Timestamp: time.Now()}, nil
	}

	frame, err := b.nextFrame()
	if err != nil {
		return gesture.Sample{}, err
	}
	defer frame.Close()

	small, err := b.pre.Process(frame.Mat)
	if err != nil {
		return gesture.Sample{}, err
	}
	defer small.Close()

	hands, err := b.trk.Detect(&small)
	if err != nil {
		return gesture.Sample{}, err
	}

	sample := gesture.Sample{Kind: gesture.KindNone, Timestamp: frame.Timestamp}
	if len(hands) > 0 {
		sample = b.classifier.Classify(&hands[0], frame.Timestamp)
	}
	if b.sink != nil {
		annotated := small.Clone()
		vision.DrawOverlay(&annotated, nil, string(sample.Kind), sample.Confidence)
		publishJPEG(b.sink, &annotated)
		annotated.Close()
	}
	return sample, nil
}

// nextFrame hands out the freshest camera frame, flipping the backend into
// its degraded state once the camera is considered lost. Degraded backends
// emit steady none samples and are never re-probed.
func (b *precisionBackend) nextFrame() (capture.Frame, error) {
	if b.worker != nil {
		frame, ok := b.worker.Latest()
		if !ok {
			if b.worker.Lost() {
				b.markDegraded()
			}
			return capture.Frame{}, capture.ErrFrameTimeout
		}
		return frame, nil
	}
	mat, err := b.cam.ReadFrame()
	if err != nil {
		b.failures++
		if b.failures >= capture.MaxConsecutiveFailures {
			b.markDegraded()
		}
		return capture.Frame{}, err
	}
	b.failures = 0
	return capture.Frame{Mat: mat, Timestamp: time.Now()}, nil
}

func (b *precisionBackend) markDegraded() {
	if b.degraded {
		return
	}
	b.degraded = true
	logging.S().Errorw("camera lost mid-session, backend degraded",
		"backend", b.Kind())
}

func (b *precisionBackend) Degraded() bool { return b.degraded }

func (b *precisionBackend) Release() error {
	if b.worker != nil {
		b.worker.Stop()
		b.worker = nil
	}
	if b.trk != nil {
		b.trk.Close()
		b.trk = nil
	}
	return b.cam.Close()
}

// publishJPEG encodes an annotated frame and pushes it to the debug stream
// sink. Encoding failures only cost the stream a frame.
func publishJPEG(sink FrameSink, m *gocv.Mat) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *m)
	if err != nil {
		return
	}
	defer buf.Close()
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	sink(data, time.Now())
}
