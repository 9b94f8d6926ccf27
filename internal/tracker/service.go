package tracker

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown stops the helper process after this long without frames.
const idleShutdown = 30 * time.Second

// serviceScript is the helper that wraps the landmark model. The Go side
// never inspects the model; it only speaks the frame/landmark protocol.
const serviceScript = "hand_tracker_service.py"

// ErrServiceUnavailable means the helper script or interpreter could not be
// located, so the precision backend cannot run on this machine.
var ErrServiceUnavailable = fmt.Errorf("hand tracker service unavailable")

// ServiceTracker implements Tracker by streaming frames to a helper
// subprocess: each request is a 4-byte big-endian length followed by JPEG
// bytes on stdin, each response one JSON line of detected hands on stdout.
// The process starts lazily on the first Detect and stops after an idle
// period.
type ServiceTracker struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewServiceTracker creates a tracker backed by the helper process. It fails
// with ErrServiceUnavailable when the helper script cannot be found, which is
// the capability probe the controller's fallback chain consumes.
func NewServiceTracker(config Config) (*ServiceTracker, error) {
	if findServiceScript() == "" {
		return nil, ErrServiceUnavailable
	}
	if config.MaxHands <= 0 {
		config.MaxHands = DefaultConfig().MaxHands
	}
	return &ServiceTracker{config: config}, nil
}

// Available reports whether the helper script is discoverable without
// constructing a tracker.
func Available() bool {
	return findServiceScript() != ""
}

// Detect sends one frame to the helper and returns the hands it found,
// filtered by the configured minimum score and hand count.
func (t *ServiceTracker) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	if _, err := t.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := t.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := t.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []HandLandmarks `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if h.Score < t.config.MinScore {
			continue
		}
		hands = append(hands, h)
		if len(hands) == t.config.MaxHands {
			break
		}
	}

	t.resetIdleTimer()
	return hands, nil
}

// Close shuts down the helper process.
func (t *ServiceTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shutdown()
}

func (t *ServiceTracker) ensureStarted() error {
	if t.started {
		return nil
	}

	scriptPath := findServiceScript()
	if scriptPath == "" {
		return ErrServiceUnavailable
	}

	python := findPython()
	t.cmd = exec.Command(python, scriptPath)

	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	t.cmd.Stderr = os.Stderr

	if err := t.cmd.Start(); err != nil {
		return fmt.Errorf("start tracker service: %w", err)
	}

	t.stdin = stdin
	t.stdout = bufio.NewReader(stdout)
	t.started = true
	return nil
}

func (t *ServiceTracker) shutdown() error {
	if !t.started {
		return nil
	}
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
	if t.stdin != nil {
		t.stdin.Close()
	}

	err := t.cmd.Wait()
	t.started = false
	t.cmd = nil
	t.stdin = nil
	t.stdout = nil
	return err
}

func (t *ServiceTracker) resetIdleTimer() {
	if t.idleTimer != nil {
		t.idleTimer.Stop()
	}
	t.idleTimer = time.AfterFunc(idleShutdown, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.shutdown()
	})
}

// findServiceScript searches the working directory, the executable's
// directory, and the user config directory for the helper script.
func findServiceScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", serviceScript),
		filepath.Join("..", "scripts", serviceScript),
		filepath.Join(execDir, "scripts", serviceScript),
		filepath.Join(os.Getenv("HOME"), ".temple-run", "scripts", serviceScript),
	}
	return firstExisting(candidates)
}

// findPython prefers a project virtualenv interpreter and falls back to the
// system python3.
func findPython() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("venv", "bin", "python"),
		filepath.Join("..", "venv", "bin", "python"),
		filepath.Join(execDir, "venv", "bin", "python"),
		filepath.Join(os.Getenv("HOME"), ".temple-run", "venv", "bin", "python"),
	}
	if p := firstExisting(candidates); p != "" {
		return p
	}
	return "python3"
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
