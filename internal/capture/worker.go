package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/saheli56/Temple-Run/internal/logging"
)

// MaxConsecutiveFailures is how many reads in a row may miss before the
// worker declares the camera lost.
const MaxConsecutiveFailures = 30

// Worker reads frames from a camera on its own goroutine so network camera
// latency never blocks the polling game loop. It hands off at most the
// single most recent frame: a frame the pipeline has not collected yet is
// closed and replaced when a newer one arrives, never queued behind it.
type Worker struct {
	cam      Camera
	interval time.Duration
	latest   chan Frame
	stop     chan struct{}
	done     chan struct{}
	lost     atomic.Bool
	started  atomic.Bool
	once     sync.Once
}

// NewWorker creates a worker pacing reads at the camera's FPS setting.
func NewWorker(cam Camera) *Worker {
	fps := cam.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Worker{
		cam:      cam,
		interval: time.Second / time.Duration(fps),
		latest:   make(chan Frame, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the acquisition goroutine. Repeated calls are no-ops.
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
}

// Stop halts acquisition and drains the undelivered frame. Safe to call
// more than once.
func (w *Worker) Stop() {
	w.once.Do(func() {
		close(w.stop)
	})
	if w.started.Load() {
		<-w.done
	}

	select {
	case f := <-w.latest:
		f.Close()
	default:
	}
}

// Latest returns the most recent frame, or ok=false when no new frame has
// arrived since the last call. Ownership of the frame passes to the caller.
func (w *Worker) Latest() (Frame, bool) {
	select {
	case f := <-w.latest:
		return f, true
	default:
		return Frame{}, false
	}
}

// Lost reports whether the camera has exceeded the consecutive failure
// budget. Once lost the worker stays stopped; re-opening mid-session is the
// owner's decision, not the worker's.
func (w *Worker) Lost() bool {
	return w.lost.Load()
}

func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			mat, err := w.cam.ReadFrame()
			if err != nil {
				failures++
				if failures >= MaxConsecutiveFailures {
					logging.S().Warnw("camera lost, stopping acquisition",
						"failures", failures)
					w.lost.Store(true)
					return
				}
				continue
			}
			failures = 0
			w.publish(Frame{Mat: mat, Timestamp: time.Now()})
		}
	}
}

// publish replaces any uncollected frame with the new one.
func (w *Worker) publish(f Frame) {
	select {
	case stale := <-w.latest:
		stale.Close()
	default:
	}
	select {
	case w.latest <- f:
	default:
		f.Close()
	}
}
