// Package capture acquires video frames from local camera devices and
// network (phone) MJPEG streams using GoCV.
package capture

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraUnavailable means a camera handle could not be opened or
	// maintained. At init it triggers backend fallback; mid-session the
	// pipeline degrades to steady no-action output.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrFrameTimeout means one frame was missed. The pipeline retries on
	// the next tick; never escalated.
	ErrFrameTimeout = errors.New("frame timeout")

	// ErrCameraNotOpen is returned when reading from a camera that has not
	// been opened.
	ErrCameraNotOpen = errors.New("camera is not open")
)

// Frame is one captured image plus its acquisition time. The Mat is owned by
// whoever holds the Frame and must be closed after the pipeline pass.
type Frame struct {
	Mat       *gocv.Mat
	Timestamp time.Time
}

// Close releases the frame's Mat.
func (f *Frame) Close() {
	if f != nil && f.Mat != nil {
		f.Mat.Close()
		f.Mat = nil
	}
}

// Camera defines the interface for frame acquisition implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Spec identifies a camera: a local device index or a network base URL.
type Spec struct {
	Device  int
	URL     string
	Network bool
}

// ParseSpec interprets a camera spec string. A small non-negative integer is
// a local device index; anything else must be a network base URL.
func ParseSpec(s string) (Spec, error) {
	if s == "" {
		return Spec{}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return Spec{}, fmt.Errorf("negative device index %d", n)
		}
		return Spec{Device: n}, nil
	}
	url, err := NormalizeStreamURL(s)
	if err != nil {
		return Spec{}, err
	}
	return Spec{URL: url, Network: true}, nil
}

// String renders the spec for logs.
func (s Spec) String() string {
	if s.Network {
		return s.URL
	}
	return strconv.Itoa(s.Device)
}

// New creates a Camera for the spec.
func New(spec Spec) Camera {
	if spec.Network {
		return NewNetworkCamera(spec.URL)
	}
	return NewDeviceCamera(spec.Device)
}

// deviceCamera captures from a local device via GoCV.
type deviceCamera struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewDeviceCamera creates a Camera for the given local device ID.
func NewDeviceCamera(deviceID int) Camera {
	return &deviceCamera{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open opens the device and pins the capture resolution.
func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("open device %d: %w", c.deviceID, ErrCameraUnavailable)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true
	return nil
}

// Close releases the device handle.
func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame reads one frame, mirrored horizontally so on-screen motion
// matches the operator's own. The caller closes the returned Mat. A missed
// frame fails with ErrFrameTimeout.
func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("device %d read: %w", c.deviceID, ErrFrameTimeout)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("device %d empty frame: %w", c.deviceID, ErrFrameTimeout)
	}

	mirror(&mat)
	return &mat, nil
}

// SetFPS sets the capture rate. Values <= 0 are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate setting.
func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the device is open.
func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// mirror flips a frame around the vertical axis in place.
func mirror(m *gocv.Mat) {
	gocv.Flip(*m, m, 1)
}
