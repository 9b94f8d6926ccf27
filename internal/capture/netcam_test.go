package capture

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeStreamURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{
			name: "bare host gets video path",
			base: "http://192.168.1.50:8080",
			want: "http://192.168.1.50:8080/video",
		},
		{
			name: "trailing slash gets video path",
			base: "http://192.168.1.50:8080/",
			want: "http://192.168.1.50:8080/video",
		},
		{
			name: "explicit path kept",
			base: "http://192.168.1.50:8080/videofeed",
			want: "http://192.168.1.50:8080/videofeed",
		},
		{
			name: "https kept",
			base: "https://cam.local:8443",
			want: "https://cam.local:8443/video",
		},
		{
			name:    "no scheme",
			base:    "//192.168.1.50:8080",
			wantErr: true,
		},
		{
			name:    "no host",
			base:    "http://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeStreamURL(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeStreamURL(%q) error = %v", tt.base, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeStreamURL(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestNetworkCamera_Open_ProbeRejectsNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	cam := NewNetworkCamera(ts.URL + "/video")

	err := cam.Open()
	if !errors.Is(err, ErrCameraUnavailable) {
		t.Errorf("expected ErrCameraUnavailable for 404 probe, got %v", err)
	}
	if cam.IsOpen() {
		t.Error("camera must not be open after a failed probe")
	}
}

func TestNetworkCamera_Open_ProbeRejectsUnreachable(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	cam := NewNetworkCamera(url + "/video")

	err := cam.Open()
	if !errors.Is(err, ErrCameraUnavailable) {
		t.Errorf("expected ErrCameraUnavailable for unreachable host, got %v", err)
	}
}

func TestNetworkCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewNetworkCamera("http://192.168.1.50:8080/video")

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}
