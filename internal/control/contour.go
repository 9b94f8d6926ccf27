package control

import (
	"errors"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/saheli56/Temple-Run/internal/capture"
	"github.com/saheli56/Temple-Run/internal/gesture"
	"github.com/saheli56/Temple-Run/internal/logging"
	"github.com/saheli56/Temple-Run/internal/vision"
)

// contourBackend classifies gestures with classical contour analysis. It
// works with any local or network camera and needs no helper process.
type contourBackend struct {
	cam        capture.Camera
	worker     *capture.Worker
	async      bool
	pre        *vision.Preprocessor
	seg        vision.Segmenter
	analyzer   *vision.Analyzer
	classifier *gesture.ContourClassifier
	sink       FrameSink

	failures int
	degraded bool
}

func newContourBackend(cfg Config) *contourBackend {
	var seg vision.Segmenter
	if cfg.Segmentation == SegmentationBackground {
		seg = vision.NewBackgroundSegmenter(cfg.WarmupFrames)
	} else {
		seg = vision.NewSkinSegmenter(cfg.SkinBounds)
	}
	return &contourBackend{
		cam:   capture.New(cfg.Camera),
		async: cfg.AsyncCapture,
		pre:   vision.NewPreprocessor(cfg.WorkWidth, cfg.WorkHeight, true),
		seg:   seg,
		analyzer: vision.NewAnalyzer(vision.AnalyzerConfig{
			MinArea:     cfg.MinContourArea,
			DefectDepth: cfg.DefectDepth,
		}),
		classifier: gesture.NewContourClassifier(cfg.Classifier),
		sink:       cfg.FrameSink,
	}
}

func (b *contourBackend) Kind() BackendKind { return BackendContourClassifier }

func (b *contourBackend) Probe() error {
	if err := b.cam.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if b.async {
		b.worker = capture.NewWorker(b.cam)
		b.worker.Start()
	}
	return nil
}

func (b *contourBackend) Classify() (gesture.Sample, error) {
	if b.degraded {
		return gesture.Sample{Kind: gesture.KindNone, Timestamp: time.Now()}, nil
	}

	frame, err := b.nextFrame()
	if err != nil {
		return gesture.Sample{}, err
	}
	defer frame.Close()

	hsv, err := b.pre.Process(frame.Mat)
	if err != nil {
		return gesture.Sample{}, err
	}
	defer hsv.Close()

	mask, err := b.seg.Segment(&hsv)
	if err != nil {
		// Background model still warming up counts as no hand in view.
		if errors.Is(err, vision.ErrNoHand) {
			return b.noHand(frame, nil), nil
		}
		return gesture.Sample{}, err
	}
	defer mask.Close()

	analysis, err := b.analyzer.Analyze(&mask)
	if err != nil {
		if errors.Is(err, vision.ErrNoHand) {
			return b.noHand(frame, nil), nil
		}
		return gesture.Sample{}, err
	}

	sample := b.classifier.Classify(analysis.Metrics, frame.Timestamp)
	b.publish(frame, analysis, sample)
	return sample, nil
}

func (b *contourBackend) noHand(frame capture.Frame, analysis *vision.Analysis) gesture.Sample {
	sample := gesture.Sample{Kind: gesture.KindNone, Timestamp: frame.Timestamp}
	b.publish(frame, analysis, sample)
	return sample
}

// publish renders the analysis overlay on a working-size copy of the source
// frame and hands the encoded result to the debug stream.
func (b *contourBackend) publish(frame capture.Frame, analysis *vision.Analysis, sample gesture.Sample) {
	if b.sink == nil {
		return
	}
	w, h := b.pre.Size()
	display := gocv.NewMat()
	gocv.Resize(*frame.Mat, &display, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
	vision.DrawOverlay(&display, analysis, string(sample.Kind), sample.Confidence)
	publishJPEG(b.sink, &display)
	display.Close()
}

func (b *contourBackend) nextFrame() (capture.Frame, error) {
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

func (b *contourBackend) markDegraded() {
	if b.degraded {
		return
	}
	b.degraded = true
	logging.S().Errorw("camera lost mid-session, backend degraded",
		"backend", b.Kind())
}

func (b *contourBackend) Degraded() bool { return b.degraded }

func (b *contourBackend) resetState() { b.seg.Reset() }

func (b *contourBackend) Release() error {
	if b.worker != nil {
		b.worker.Stop()
		b.worker = nil
	}
	b.seg.Close()
	return b.cam.Close()
}
