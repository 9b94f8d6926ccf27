package control

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saheli56/Temple-Run/internal/capture"
	"github.com/saheli56/Temple-Run/internal/gesture"
	"github.com/saheli56/Temple-Run/internal/logging"
	"github.com/saheli56/Temple-Run/internal/vision"
)

// Segmentation strategies for the contour backend.
const (
	SegmentationSkin       = "skin"
	SegmentationBackground = "background"
)

// FrameSink receives annotated JPEG frames for the debug stream. It must not
// block.
type FrameSink func(jpeg []byte, ts time.Time)

// Config assembles everything the controller and its backends need.
type Config struct {
	// Preference is the backend probing order. The keyboard backend is
	// appended when missing so initialization can never fail outright.
	Preference []BackendKind

	Camera       capture.Spec
	AsyncCapture bool

	WorkWidth  int
	WorkHeight int

	Segmentation   string
	SkinBounds     vision.HSVBounds
	WarmupFrames   int
	MinContourArea float64
	DefectDepth    float64
	Classifier     gesture.ClassifierConfig

	HistorySize         int
	ConfidenceThreshold float64
	Cooldown            time.Duration

	// FrameSink, OnSample and OnAction are optional observers. They are
	// invoked outside the controller lock and must not block.
	FrameSink FrameSink
	OnSample  func(gesture.Sample)
	OnAction  func(ActionRecord)
}

// DefaultConfig mirrors the built-in tuning that works for a webcam at arm's
// length in indoor lighting.
func DefaultConfig() Config {
	return Config{
		Preference:          DefaultPreference(),
		Camera:              capture.Spec{Device: 0},
		AsyncCapture:        true,
		WorkWidth:           vision.DefaultWorkWidth,
		WorkHeight:          vision.DefaultWorkHeight,
		Segmentation:        SegmentationSkin,
		SkinBounds:          vision.DefaultSkinBounds(),
		WarmupFrames:        vision.DefaultWarmupFrames,
		MinContourArea:      vision.DefaultMinContourArea,
		DefectDepth:         vision.DefaultDefectDepth,
		Classifier:          gesture.DefaultClassifierConfig(),
		HistorySize:         gesture.DefaultHistorySize,
		ConfidenceThreshold: gesture.DefaultConfidenceThreshold,
		Cooldown:            gesture.DefaultCooldown,
	}
}

// ActionRecord is the payload handed to action observers and persisted as an
// event.
type ActionRecord struct {
	Event      gesture.ActionEvent
	Gesture    gesture.Kind
	Confidence float64
	Backend    BackendKind
	SessionID  string
}

// Status is a snapshot of the controller for the debug API and tray.
type Status struct {
	SessionID       string             `json:"session_id"`
	Backend         BackendKind        `json:"backend"`
	Mode            Mode               `json:"mode"`
	Degraded        bool               `json:"degraded"`
	FramesProcessed uint64             `json:"frames_processed"`
	LastGesture     gesture.Kind       `json:"last_gesture"`
	LastConfidence  float64            `json:"last_confidence"`
	LastAction      gesture.ActionKind `json:"last_action"`
	LastActionAt    time.Time          `json:"last_action_at"`
	StartedAt       time.Time          `json:"started_at"`
}

// Controller picks a backend at initialization and turns camera frames (or
// simulated key presses) into debounced action events for the game loop.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	sessionID string
	backend   Backend
	kb        *keyboardBackend
	mode      Mode
	smoother  *gesture.Smoother
	mapper    *gesture.ActionMapper
	startedAt time.Time
	shut      bool

	frames      uint64
	lastGesture gesture.Stable
	lastAction  gesture.ActionEvent
}

// New probes backends in preference order and returns a controller bound to
// the first one that succeeds. The keyboard backend closes the chain, so a
// machine with no camera and no tracker still gets a working controller.
func New(cfg Config) (*Controller, error) {
	cfg = withDefaults(cfg)
	backends := make([]Backend, 0, len(cfg.Preference))
	for _, kind := range cfg.Preference {
		switch kind {
		case BackendPrecisionTracker:
			backends = append(backends, newPrecisionBackend(cfg))
		case BackendContourClassifier:
			backends = append(backends, newContourBackend(cfg))
		case BackendKeyboardSimulated:
			backends = append(backends, newKeyboardBackend())
		}
	}
	return newWithBackends(cfg, backends)
}

// newWithBackends runs the probe chain over pre-built backends. Split out so
// tests can drive selection with mocks.
func newWithBackends(cfg Config, backends []Backend) (*Controller, error) {
	var selected Backend
	for _, b := range backends {
		if err := b.Probe(); err != nil {
			logging.S().Warnw("backend probe failed, trying next",
				"backend", b.Kind(), "error", err)
			continue
		}
		selected = b
		break
	}
	if selected == nil {
		return nil, errors.New("no usable backend")
	}
	logging.S().Infow("backend selected", "backend", selected.Kind())

	c := &Controller{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		backend:   selected,
		mode:      ModeGesture,
		smoother:  gesture.NewSmoother(cfg.HistorySize, cfg.ConfidenceThreshold),
		mapper:    gesture.NewActionMapper(cfg.Cooldown),
		startedAt: time.Now(),
	}
	if kb, ok := selected.(*keyboardBackend); ok {
		c.kb = kb
	}
	return c, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if len(cfg.Preference) == 0 {
		cfg.Preference = def.Preference
	}
	terminal := false
	for _, kind := range cfg.Preference {
		if kind == BackendKeyboardSimulated {
			terminal = true
		}
	}
	if !terminal {
		cfg.Preference = append(cfg.Preference, BackendKeyboardSimulated)
	}
	if cfg.WorkWidth <= 0 {
		cfg.WorkWidth = def.WorkWidth
	}
	if cfg.WorkHeight <= 0 {
		cfg.WorkHeight = def.WorkHeight
	}
	if cfg.Segmentation == "" {
		cfg.Segmentation = def.Segmentation
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return cfg
}

// SessionID identifies this controller run in stored events.
func (c *Controller) SessionID() string { return c.sessionID }

// Backend reports which backend selection settled on.
func (c *Controller) Backend() BackendKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Kind()
}

// Mode reports the current control mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Poll performs at most one pipeline pass and returns the resulting action
// event, KindNone when there is nothing new. It never blocks on the camera
// and never panics into the game loop.
func (c *Controller) Poll() gesture.ActionEvent {
	ev, sample, passed, record := c.step()
	if passed && c.cfg.OnSample != nil {
		c.cfg.OnSample(sample)
	}
	if record != nil && c.cfg.OnAction != nil {
		c.cfg.OnAction(*record)
	}
	return ev
}

func (c *Controller) step() (ev gesture.ActionEvent, sample gesture.Sample, passed bool, record *ActionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	ev = gesture.ActionEvent{Kind: gesture.ActionNone, Timestamp: now}

	// A misbehaving vision pass must not crash the caller's game loop.
	defer func() {
		if r := recover(); r != nil {
			logging.S().Errorw("pipeline pass panicked", "panic", r)
			ev = gesture.ActionEvent{Kind: gesture.ActionNone, Timestamp: now}
			passed = false
			record = nil
		}
	}()

	if c.shut || c.mode != ModeGesture {
		return ev, sample, false, nil
	}

	var err error
	sample, err = c.backend.Classify()
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrFrameTimeout):
			// No fresh frame this tick, retry on the next one.
		case errors.Is(err, vision.ErrInvalidFrame):
			logging.S().Debugw("invalid frame skipped", "error", err)
		default:
			logging.S().Warnw("pipeline pass failed", "error", err)
		}
		return ev, sample, false, nil
	}
	c.frames++

	var stable gesture.Stable
	if c.backend.Kind() == BackendKeyboardSimulated {
		// Key presses skip the smoother: they are deliberate, full
		// confidence inputs. The cooldown still applies.
		stable = gesture.Stable{
			Kind:       sample.Kind,
			Confidence: sample.Confidence,
			Timestamp:  sample.Timestamp,
		}
	} else {
		stable = c.smoother.Add(sample)
	}
	if stable.Kind != gesture.KindNone {
		c.lastGesture = stable
	}

	ev = c.mapper.MapAt(stable, now)
	if ev.Kind != gesture.ActionNone {
		c.lastAction = ev
		record = &ActionRecord{
			Event:      ev,
			Gesture:    stable.Kind,
			Confidence: stable.Confidence,
			Backend:    c.backend.Kind(),
			SessionID:  c.sessionID,
		}
	}
	return ev, sample, true, record
}

// SubmitKey feeds a simulated key press to the keyboard backend. Ignored
// unless that backend was selected.
func (c *Controller) SubmitKey(key rune) {
	if c.kb != nil {
		c.kb.Submit(key)
	}
}

// ToggleMode flips between gesture control and plain keyboard play. Turning
// gesture control back on starts from a clean slate: history, cooldown and
// any background model are reset. The selected backend never changes.
func (c *Controller) ToggleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeGesture {
		c.mode = ModeKeyboard
	} else {
		c.mode = ModeGesture
		c.smoother.Reset()
		c.mapper.Reset()
		if r, ok := c.backend.(stateResetter); ok {
			r.resetState()
		}
	}
	logging.S().Infow("control mode toggled", "mode", c.mode)
	return c.mode
}

// Status snapshots the controller for the debug API and the tray menu.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		SessionID:       c.sessionID,
		Backend:         c.backend.Kind(),
		Mode:            c.mode,
		Degraded:        c.backend.Degraded(),
		FramesProcessed: c.frames,
		LastGesture:     c.lastGesture.Kind,
		LastConfidence:  c.lastGesture.Confidence,
		LastAction:      c.lastAction.Kind,
		LastActionAt:    c.lastAction.Timestamp,
		StartedAt:       c.startedAt,
	}
}

// Shutdown releases the backend's resources. Polls after shutdown return
// none events.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shut {
		return nil
	}
	c.shut = true
	err := c.backend.Release()
	logging.S().Infow("controller shut down", "backend", c.backend.Kind())
	return err
}
