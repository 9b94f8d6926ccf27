package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/saheli56/Temple-Run/internal/control"
	"github.com/saheli56/Temple-Run/internal/gesture"
	"github.com/saheli56/Temple-Run/internal/plugin"
	"github.com/saheli56/Temple-Run/internal/server"
	"github.com/saheli56/Temple-Run/internal/store"
	"github.com/saheli56/Temple-Run/internal/vision"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("recorder plugin needs a POSIX shell")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	pluginRoot := filepath.Join(tmpDir, "plugins")
	recorderDir := writeRecorderPlugin(t, pluginRoot, "keypress", []string{"press"})

	mgr := plugin.NewManager(pluginRoot)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	dispatcher := plugin.NewDispatcher(mgr, s.Bindings())

	// Same wiring as startup: actions land in the event history and fan out
	// to bound plugins. The keyboard backend keeps the test off the camera.
	cfg := control.DefaultConfig()
	cfg.Preference = []control.BackendKind{control.BackendKeyboardSimulated}
	cfg.Cooldown = 10 * time.Millisecond
	cfg.OnAction = func(rec control.ActionRecord) {
		event := &store.Event{
			SessionID:  rec.SessionID,
			Backend:    string(rec.Backend),
			Gesture:    string(rec.Gesture),
			Action:     string(rec.Event.Kind),
			Confidence: rec.Confidence,
		}
		if err := s.Events().Append(event); err != nil {
			t.Errorf("failed to record event: %v", err)
		}
		dispatcher.Dispatch(plugin.Event{
			Gesture:    string(rec.Gesture),
			Action:     string(rec.Event.Kind),
			Confidence: rec.Confidence,
		})
	}

	ctrl, err := control.New(cfg)
	if err != nil {
		t.Fatalf("control.New() error = %v", err)
	}
	defer ctrl.Shutdown()

	srv := server.New(server.Config{Store: s, Controller: ctrl})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("BindGesture", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/bindings",
			"application/json",
			strings.NewReader(`{"gesture": "fist", "plugin_name": "keypress", "action_name": "press", "params": {"key":"space"}}`),
		)
		if err != nil {
			t.Fatalf("create binding error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("SimulatedJump", func(t *testing.T) {
		ctrl.SubmitKey('f')
		ev := ctrl.Poll()
		if ev.Kind != gesture.ActionJump {
			t.Fatalf("Poll() = %v, want %v", ev.Kind, gesture.ActionJump)
		}

		dispatcher.Wait()

		raw, err := os.ReadFile(filepath.Join(recorderDir, "request.json"))
		if err != nil {
			t.Fatalf("bound plugin was not invoked: %v", err)
		}
		var req plugin.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Fatalf("failed to unmarshal recorded request: %v", err)
		}
		if req.Action != "press" {
			t.Errorf("plugin action = %q, want %q", req.Action, "press")
		}
		if req.Gesture != "fist" {
			t.Errorf("plugin gesture = %q, want %q", req.Gesture, "fist")
		}
		if string(req.Params) != `{"key":"space"}` {
			t.Errorf("plugin params = %s, want the bound params", req.Params)
		}
	})

	t.Run("EventRecorded", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events")
		if err != nil {
			t.Fatalf("list events error = %v", err)
		}
		defer resp.Body.Close()

		var listResp struct {
			Events []struct {
				SessionID  string  `json:"session_id"`
				Backend    string  `json:"backend"`
				Gesture    string  `json:"gesture"`
				Action     string  `json:"action"`
				Confidence float64 `json:"confidence"`
			} `json:"events"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
			t.Fatalf("decode events error = %v", err)
		}

		if len(listResp.Events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(listResp.Events))
		}

		ev := listResp.Events[0]
		if ev.Gesture != "fist" || ev.Action != "jump" {
			t.Errorf("event = %s/%s, want fist/jump", ev.Gesture, ev.Action)
		}
		if ev.Backend != string(control.BackendKeyboardSimulated) {
			t.Errorf("event backend = %q, want %q", ev.Backend, control.BackendKeyboardSimulated)
		}
		if ev.SessionID != ctrl.SessionID() {
			t.Errorf("event session = %q, want %q", ev.SessionID, ctrl.SessionID())
		}
		if ev.Confidence != 1.0 {
			t.Errorf("event confidence = %v, want 1.0 for a key press", ev.Confidence)
		}
	})

	t.Run("StatusReflectsRun", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		defer resp.Body.Close()

		var status struct {
			SessionID       string `json:"session_id"`
			Backend         string `json:"backend"`
			Mode            string `json:"mode"`
			FramesProcessed uint64 `json:"frames_processed"`
			LastGesture     string `json:"last_gesture"`
			LastAction      string `json:"last_action"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatalf("decode status error = %v", err)
		}

		if status.SessionID != ctrl.SessionID() {
			t.Errorf("status session = %q, want %q", status.SessionID, ctrl.SessionID())
		}
		if status.Backend != string(control.BackendKeyboardSimulated) {
			t.Errorf("status backend = %q, want %q", status.Backend, control.BackendKeyboardSimulated)
		}
		if status.Mode != string(control.ModeGesture) {
			t.Errorf("status mode = %q, want %q", status.Mode, control.ModeGesture)
		}
		if status.FramesProcessed == 0 {
			t.Error("expected at least one processed frame")
		}
		if status.LastGesture != "fist" || status.LastAction != "jump" {
			t.Errorf("status last = %s/%s, want fist/jump", status.LastGesture, status.LastAction)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after controller operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_ProfileDrivenCooldown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	profile := &store.Profile{
		ID:   "tuned",
		Name: "Slow Cadence",
		SkinBounds: vision.HSVBounds{
			HMin: 0, SMin: 30, VMin: 80,
			HMax: 25, SMax: 255, VMax: 255,
		},
		MinContourArea: 2500,
		Cooldown:       time.Hour,
	}
	if err := s.Profiles().Create(profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Profiles().Activate(profile.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	active, err := s.Profiles().GetActive()
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active == nil || active.ID != profile.ID {
		t.Fatal("activated profile did not come back as active")
	}

	// The active profile overrides the built-in tuning, same as startup does.
	cfg := control.DefaultConfig()
	cfg.Preference = []control.BackendKind{control.BackendKeyboardSimulated}
	cfg.SkinBounds = active.SkinBounds
	cfg.MinContourArea = active.MinContourArea
	cfg.Cooldown = active.Cooldown

	ctrl, err := control.New(cfg)
	if err != nil {
		t.Fatalf("control.New() error = %v", err)
	}
	defer ctrl.Shutdown()

	ctrl.SubmitKey('f')
	if ev := ctrl.Poll(); ev.Kind != gesture.ActionJump {
		t.Fatalf("first poll = %v, want %v", ev.Kind, gesture.ActionJump)
	}

	// The hour-long cooldown from the profile suppresses the repeat.
	ctrl.SubmitKey('f')
	if ev := ctrl.Poll(); ev.Kind != gesture.ActionNone {
		t.Errorf("second poll = %v, want %v", ev.Kind, gesture.ActionNone)
	}
}

func TestE2E_ActionBinding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := server.New(server.Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	resp, err := client.Post(
		ts.URL+"/api/bindings",
		"application/json",
		strings.NewReader(`{"gesture": "open_palm", "plugin_name": "keypress", "action_name": "press", "params": {"key": "Escape"}}`),
	)
	if err != nil {
		t.Fatalf("create binding error = %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create binding status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/api/bindings")
	if err != nil {
		t.Fatalf("list bindings error = %v", err)
	}

	var listResp struct {
		Bindings []struct {
			ID         string `json:"id"`
			Gesture    string `json:"gesture"`
			PluginName string `json:"plugin_name"`
			ActionName string `json:"action_name"`
			Enabled    bool   `json:"enabled"`
		} `json:"bindings"`
	}
	json.NewDecoder(resp.Body).Decode(&listResp)
	resp.Body.Close()

	if len(listResp.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(listResp.Bindings))
	}

	b := listResp.Bindings[0]
	if b.ID != created.ID {
		t.Errorf("binding id mismatch: got %s, want %s", b.ID, created.ID)
	}
	if b.Gesture != "open_palm" {
		t.Errorf("binding gesture = %q, want %q", b.Gesture, "open_palm")
	}
	if b.PluginName != "keypress" || b.ActionName != "press" {
		t.Errorf("binding target = %s/%s, want keypress/press", b.PluginName, b.ActionName)
	}
	if !b.Enabled {
		t.Error("new binding should default to enabled")
	}
}

// writeRecorderPlugin installs a plugin under root that dumps the request it
// receives to request.json in its own directory.
func writeRecorderPlugin(t *testing.T, root, name string, actions []string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	manifest := plugin.Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "recorder.sh",
		Actions:    actions,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	script := `#!/bin/sh
cat > request.json
echo '{"success":true}'
`
	if err := os.WriteFile(filepath.Join(dir, "recorder.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return dir
}
