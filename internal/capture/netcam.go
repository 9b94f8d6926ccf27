package capture

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"gocv.io/x/gocv"
)

// ProbeTimeout bounds the reachability check against a network camera.
const ProbeTimeout = 5 * time.Second

// NormalizeStreamURL turns a camera base URL into its stream endpoint.
// Phone camera apps following the IP Webcam convention serve the MJPEG
// stream at /video, so a bare scheme://host:port gets that path appended;
// explicit paths are kept as-is.
func NormalizeStreamURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse camera URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("camera URL %q needs scheme://host:port", base)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/video"
	}
	return u.String(), nil
}

// networkCamera consumes an MJPEG/HTTP stream from a phone or IP camera.
// Open first probes the endpoint over plain HTTP so an unreachable camera
// fails fast as ErrCameraUnavailable instead of hanging inside the stream
// demuxer.
type networkCamera struct {
	streamURL string
	client    *resty.Client
	capture   *gocv.VideoCapture
	mu        sync.Mutex
	running   bool
	fps       int
}

// NewNetworkCamera creates a Camera reading the MJPEG stream at streamURL.
// Use NormalizeStreamURL (or ParseSpec) to derive the URL from a base
// address first.
func NewNetworkCamera(streamURL string) Camera {
	client := resty.New().
		SetTimeout(ProbeTimeout).
		SetDoNotParseResponse(true)

	return &networkCamera{
		streamURL: streamURL,
		client:    client,
		fps:       DefaultFPS,
	}
}

// Open probes the stream endpoint and opens the capture handle.
func (c *networkCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	if err := c.probe(); err != nil {
		return err
	}

	capture, err := gocv.OpenVideoCapture(c.streamURL)
	if err != nil {
		return fmt.Errorf("open stream %s: %w", c.streamURL, ErrCameraUnavailable)
	}

	c.capture = capture
	c.running = true
	return nil
}

// probe issues a GET against the stream endpoint and checks for a 2xx
// status. The body is an endless multipart stream, so it is closed without
// being consumed.
func (c *networkCamera) probe() error {
	resp, err := c.client.R().Get(c.streamURL)
	if err != nil {
		return fmt.Errorf("probe %s: %v: %w", c.streamURL, err, ErrCameraUnavailable)
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("probe %s: status %d: %w", c.streamURL, resp.StatusCode(), ErrCameraUnavailable)
	}
	return nil
}

// Close releases the stream handle.
func (c *networkCamera) Close() error {
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

// ReadFrame consumes one frame of the stream, mirrored horizontally. A
// dropped frame fails with ErrFrameTimeout; the next tick retries.
func (c *networkCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("stream %s read: %w", c.streamURL, ErrFrameTimeout)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("stream %s empty frame: %w", c.streamURL, ErrFrameTimeout)
	}

	mirror(&mat)
	return &mat, nil
}

// SetFPS records the desired pace. Network streams push frames at the
// producer's rate; the value only drives the acquisition worker's tick.
func (c *networkCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

// FPS returns the configured pace.
func (c *networkCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the stream is open.
func (c *networkCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
