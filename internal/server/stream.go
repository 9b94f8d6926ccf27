package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// streamInterval paces MJPEG writes at roughly the pipeline frame rate.
const streamInterval = 66 * time.Millisecond

// FrameBuffer holds the newest annotated JPEG frame published by the
// pipeline. Writers replace, readers copy nothing.
type FrameBuffer struct {
	mu    sync.RWMutex
	data  []byte
	stamp time.Time
}

// NewFrameBuffer creates an empty frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Update replaces the buffered frame. The caller must not reuse data
// afterwards.
func (b *FrameBuffer) Update(data []byte, ts time.Time) {
	b.mu.Lock()
	b.data = data
	b.stamp = ts
	b.mu.Unlock()
}

// Latest returns the buffered frame and its timestamp. The data is shared;
// callers only read it.
func (b *FrameBuffer) Latest() ([]byte, time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data, b.stamp
}

// StreamHandler serves the annotated pipeline frames as an MJPEG stream.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a new StreamHandler reading from the given
// buffer.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var lastStamp time.Time
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, stamp := h.frames.Latest()
		if frame == nil || stamp.Equal(lastStamp) {
			time.Sleep(streamInterval)
			continue
		}
		lastStamp = stamp

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}
