// Package config loads the pipeline configuration from built-in defaults, an
// optional YAML file, and environment overrides, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/saheli56/Temple-Run/internal/capture"
	"github.com/saheli56/Temple-Run/internal/control"
	"github.com/saheli56/Temple-Run/internal/vision"
)

// DefaultFile is the config file probed when none is given explicitly.
const DefaultFile = "config.yaml"

// SkinBounds is the YAML shape of an HSV skin-tone range.
type SkinBounds struct {
	HMin float64 `yaml:"h_min"`
	SMin float64 `yaml:"s_min"`
	VMin float64 `yaml:"v_min"`
	HMax float64 `yaml:"h_max"`
	SMax float64 `yaml:"s_max"`
	VMax float64 `yaml:"v_max"`
}

// Config is the whole configuration surface of the pipeline and its
// operational shell.
type Config struct {
	// Recognition pipeline
	BackendPreference   []string   `yaml:"backend_preference"`
	CameraSpec          string     `yaml:"camera_spec"`
	FPS                 int        `yaml:"fps"`
	AsyncCapture        bool       `yaml:"async_capture"`
	WorkWidth           int        `yaml:"work_width"`
	WorkHeight          int        `yaml:"work_height"`
	Segmentation        string     `yaml:"segmentation"`
	Skin                SkinBounds `yaml:"skin_bounds"`
	WarmupFrames        int        `yaml:"warmup_frames"`
	MinContourArea      float64    `yaml:"min_contour_area"`
	DefectDepth         float64    `yaml:"defect_depth"`
	HistorySize         int        `yaml:"history_size"`
	ConfidenceThreshold float64    `yaml:"confidence_threshold"`
	CooldownSeconds     float64    `yaml:"cooldown_seconds"`

	// Operational shell
	ServerAddr string `yaml:"server_addr"`
	StaticDir  string `yaml:"static_dir"`
	PluginDir  string `yaml:"plugin_dir"`
	DBPath     string `yaml:"db_path"`
	Tray       bool   `yaml:"tray"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns the built-in configuration: local camera 0, full backend
// fallback chain, and the tuning that works for a webcam at arm's length.
func Default() Config {
	skin := vision.DefaultSkinBounds()
	return Config{
		BackendPreference: []string{
			string(control.BackendPrecisionTracker),
			string(control.BackendContourClassifier),
			string(control.BackendKeyboardSimulated),
		},
		CameraSpec:   "0",
		FPS:          capture.DefaultFPS,
		AsyncCapture: true,
		WorkWidth:    vision.DefaultWorkWidth,
		WorkHeight:   vision.DefaultWorkHeight,
		Segmentation: control.SegmentationSkin,
		Skin: SkinBounds{
			HMin: skin.HMin, SMin: skin.SMin, VMin: skin.VMin,
			HMax: skin.HMax, SMax: skin.SMax, VMax: skin.VMax,
		},
		WarmupFrames:        vision.DefaultWarmupFrames,
		MinContourArea:      vision.DefaultMinContourArea,
		DefectDepth:         vision.DefaultDefectDepth,
		HistorySize:         5,
		ConfidenceThreshold: 0.6,
		CooldownSeconds:     0.5,

		ServerAddr: ":8080",
		Tray:       true,

		LogLevel: "info",
	}
}

// Load builds the configuration. A .env file in the working directory is
// folded into the environment first, then the YAML file (path, or
// config.yaml when path is empty and one exists) is applied over the
// defaults, then environment variables override individual fields.
func Load(path string) (Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file, defaults apply.
	default:
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides the deploy-varying fields from TEMPLERUN_* variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TEMPLERUN_BACKENDS"); v != "" {
		cfg.BackendPreference = splitList(v)
	}
	cfg.CameraSpec = envString("TEMPLERUN_CAMERA", cfg.CameraSpec)
	cfg.Segmentation = envString("TEMPLERUN_SEGMENTATION", cfg.Segmentation)
	cfg.FPS = envInt("TEMPLERUN_FPS", cfg.FPS)
	cfg.HistorySize = envInt("TEMPLERUN_HISTORY_SIZE", cfg.HistorySize)
	cfg.ConfidenceThreshold = envFloat("TEMPLERUN_CONFIDENCE_THRESHOLD", cfg.ConfidenceThreshold)
	cfg.CooldownSeconds = envFloat("TEMPLERUN_COOLDOWN_SECONDS", cfg.CooldownSeconds)
	cfg.ServerAddr = envString("TEMPLERUN_SERVER_ADDR", cfg.ServerAddr)
	cfg.StaticDir = envString("TEMPLERUN_STATIC_DIR", cfg.StaticDir)
	cfg.PluginDir = envString("TEMPLERUN_PLUGIN_DIR", cfg.PluginDir)
	cfg.DBPath = envString("TEMPLERUN_DB_PATH", cfg.DBPath)
	cfg.Tray = envBool("TEMPLERUN_TRAY", cfg.Tray)
	cfg.LogLevel = envString("TEMPLERUN_LOG_LEVEL", cfg.LogLevel)
	cfg.LogJSON = envBool("TEMPLERUN_LOG_JSON", cfg.LogJSON)
}

// Validate rejects out-of-range values before anything is wired up.
func (c *Config) Validate() error {
	if len(c.BackendPreference) == 0 {
		return fmt.Errorf("backend_preference must not be empty")
	}
	for _, name := range c.BackendPreference {
		if _, err := control.ParseBackendKind(name); err != nil {
			return fmt.Errorf("backend_preference: %w", err)
		}
	}

	if _, err := capture.ParseSpec(c.CameraSpec); err != nil {
		return fmt.Errorf("camera_spec %q: %w", c.CameraSpec, err)
	}

	if c.Segmentation != control.SegmentationSkin && c.Segmentation != control.SegmentationBackground {
		return fmt.Errorf("segmentation must be %q or %q, got %q",
			control.SegmentationSkin, control.SegmentationBackground, c.Segmentation)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %v", c.ConfidenceThreshold)
	}

	if c.HistorySize < 1 {
		return fmt.Errorf("history_size must be at least 1, got %d", c.HistorySize)
	}

	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must not be negative, got %v", c.CooldownSeconds)
	}

	if c.MinContourArea <= 0 {
		return fmt.Errorf("min_contour_area must be positive, got %v", c.MinContourArea)
	}

	if c.WarmupFrames < 1 {
		return fmt.Errorf("warmup_frames must be at least 1, got %d", c.WarmupFrames)
	}

	if c.FPS < 1 {
		return fmt.Errorf("fps must be at least 1, got %d", c.FPS)
	}

	return nil
}

// Cooldown returns the inter-action cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}

// SkinHSV returns the configured skin-tone range in the vision layer's type.
func (c *Config) SkinHSV() vision.HSVBounds {
	return vision.HSVBounds{
		HMin: c.Skin.HMin, SMin: c.Skin.SMin, VMin: c.Skin.VMin,
		HMax: c.Skin.HMax, SMax: c.Skin.SMax, VMax: c.Skin.VMax,
	}
}

// ControllerConfig translates the configuration into the controller's terms.
// Call after Validate: parse failures here are programming errors.
func (c *Config) ControllerConfig() (control.Config, error) {
	spec, err := capture.ParseSpec(c.CameraSpec)
	if err != nil {
		return control.Config{}, fmt.Errorf("camera_spec %q: %w", c.CameraSpec, err)
	}

	preference := make([]control.BackendKind, 0, len(c.BackendPreference))
	for _, name := range c.BackendPreference {
		kind, err := control.ParseBackendKind(name)
		if err != nil {
			return control.Config{}, err
		}
		preference = append(preference, kind)
	}

	out := control.DefaultConfig()
	out.Preference = preference
	out.Camera = spec
	out.AsyncCapture = c.AsyncCapture
	out.WorkWidth = c.WorkWidth
	out.WorkHeight = c.WorkHeight
	out.Segmentation = c.Segmentation
	out.SkinBounds = c.SkinHSV()
	out.WarmupFrames = c.WarmupFrames
	out.MinContourArea = c.MinContourArea
	out.DefectDepth = c.DefectDepth
	out.HistorySize = c.HistorySize
	out.ConfidenceThreshold = c.ConfidenceThreshold
	out.Cooldown = c.Cooldown()
	return out, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envString gets an environment variable or returns the fallback.
func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt gets an environment variable as int or returns the fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envFloat gets an environment variable as float64 or returns the fallback.
func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// envBool gets an environment variable as bool or returns the fallback.
func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
