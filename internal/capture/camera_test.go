package capture

import (
	"errors"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
		network bool
		device  int
		url     string
	}{
		{
			name:   "empty defaults to device zero",
			spec:   "",
			device: 0,
		},
		{
			name:   "device index",
			spec:   "1",
			device: 1,
		},
		{
			name:    "negative device",
			spec:    "-1",
			wantErr: true,
		},
		{
			name:    "base URL gets stream path",
			spec:    "http://192.168.1.50:8080",
			network: true,
			url:     "http://192.168.1.50:8080/video",
		},
		{
			name:    "explicit path kept",
			spec:    "http://192.168.1.50:8080/stream.mjpg",
			network: true,
			url:     "http://192.168.1.50:8080/stream.mjpg",
		},
		{
			name:    "missing scheme",
			spec:    "192.168.1.50:8080",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec(%q) error = %v", tt.spec, err)
			}

			if spec.Network != tt.network {
				t.Errorf("Network = %v, want %v", spec.Network, tt.network)
			}
			if !tt.network && spec.Device != tt.device {
				t.Errorf("Device = %d, want %d", spec.Device, tt.device)
			}
			if tt.network && spec.URL != tt.url {
				t.Errorf("URL = %q, want %q", spec.URL, tt.url)
			}
		})
	}
}

func TestSpec_String(t *testing.T) {
	local := Spec{Device: 2}
	if got := local.String(); got != "2" {
		t.Errorf("String() = %q, want %q", got, "2")
	}

	net := Spec{URL: "http://cam:8080/video", Network: true}
	if got := net.String(); got != "http://cam:8080/video" {
		t.Errorf("String() = %q, want URL", got)
	}
}

func TestNewDeviceCamera(t *testing.T) {
	tests := []struct {
		name     string
		deviceID int
	}{
		{name: "default device", deviceID: 0},
		{name: "device 1", deviceID: 1},
		{name: "device 2", deviceID: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewDeviceCamera(tt.deviceID)

			if cam == nil {
				t.Fatal("NewDeviceCamera returned nil")
			}

			if got := cam.FPS(); got != DefaultFPS {
				t.Errorf("FPS() = %d, want %d (default)", got, DefaultFPS)
			}

			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestDeviceCamera_SetFPS(t *testing.T) {
	cam := NewDeviceCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 10", fps: 10, wantFPS: 10},
		{name: "set to 30", fps: 30, wantFPS: 30},
		{name: "set to 1", fps: 1, wantFPS: 1},
		{name: "set to 0 should keep previous", fps: 0, wantFPS: 1},
		{name: "set to negative should keep previous", fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestDeviceCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewDeviceCamera(0)

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestDeviceCamera_Close_NotOpened(t *testing.T) {
	cam := NewDeviceCamera(0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestDeviceCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewDeviceCamera(0)

	err := cam.Open()
	if err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat == nil {
			t.Error("ReadFrame() returned nil mat")
		} else if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		} else {
			mat.Close()
		}
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
