package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/saheli56/Temple-Run/internal/config"
	"github.com/saheli56/Temple-Run/internal/control"
	"github.com/saheli56/Temple-Run/internal/gesture"
	"github.com/saheli56/Temple-Run/internal/logging"
	"github.com/saheli56/Temple-Run/internal/plugin"
	"github.com/saheli56/Temple-Run/internal/server"
	"github.com/saheli56/Temple-Run/internal/store"
	"github.com/saheli56/Temple-Run/internal/tray"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml")
		cameraSpec = flag.String("camera", "", "camera device index or network URL")
		serverAddr = flag.String("addr", "", "debug server listen address, empty string from config disables it")
		dbPath     = flag.String("db", "", "sqlite database path")
		pluginDir  = flag.String("plugins", "", "plugin directory")
		logLevel   = flag.String("log-level", "", "log level (debug, info, warn, error)")
		headless   = flag.Bool("headless", false, "run without the system tray")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags are the highest precedence layer.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.CameraSpec = *cameraSpec
		case "addr":
			cfg.ServerAddr = *serverAddr
		case "db":
			cfg.DBPath = *dbPath
		case "plugins":
			cfg.PluginDir = *pluginDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "headless":
			cfg.Tray = !*headless
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogJSON); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	fmt.Println("Temple Run - Gesture Control")

	// Initialize the store
	dbFile, err := resolveDBPath(cfg.DBPath)
	if err != nil {
		logging.S().Fatalw("failed to resolve database path", "error", err)
	}
	st, err := store.New(dbFile)
	if err != nil {
		logging.S().Fatalw("failed to initialize store", "path", dbFile, "error", err)
	}
	defer st.Close()

	ctrlCfg, err := cfg.ControllerConfig()
	if err != nil {
		logging.S().Fatalw("failed to build controller config", "error", err)
	}

	// The active tuning profile overrides the file configuration.
	if prof, err := st.Profiles().GetActive(); err != nil {
		logging.S().Warnw("failed to load active profile", "error", err)
	} else if prof != nil {
		ctrlCfg.SkinBounds = prof.SkinBounds
		ctrlCfg.MinContourArea = prof.MinContourArea
		ctrlCfg.Cooldown = prof.Cooldown
		logging.S().Infow("applied tuning profile", "profile", prof.Name)
	}

	// Plugins
	mgr := plugin.NewManager(resolvePluginDir(cfg.PluginDir))
	if err := mgr.Discover(); err != nil {
		logging.S().Warnw("plugin discovery failed", "error", err)
	}
	dispatcher := plugin.NewDispatcher(mgr, st.Bindings())

	// Debug surface
	frames := server.NewFrameBuffer()
	hub := server.NewEventHub()

	tr := tray.New()

	ctrlCfg.FrameSink = frames.Update
	ctrlCfg.OnSample = func(s gesture.Sample) {
		hub.Publish("gesture", map[string]any{
			"kind":       string(s.Kind),
			"confidence": s.Confidence,
			"timestamp":  s.Timestamp,
		})
	}
	ctrlCfg.OnAction = func(rec control.ActionRecord) {
		event := &store.Event{
			SessionID:  rec.SessionID,
			Backend:    string(rec.Backend),
			Gesture:    string(rec.Gesture),
			Action:     string(rec.Event.Kind),
			Confidence: rec.Confidence,
		}
		if err := st.Events().Append(event); err != nil {
			logging.S().Warnw("failed to record event", "error", err)
		}

		hub.Publish("action", map[string]any{
			"action":     string(rec.Event.Kind),
			"gesture":    string(rec.Gesture),
			"confidence": rec.Confidence,
			"backend":    string(rec.Backend),
			"timestamp":  rec.Event.Timestamp,
		})

		dispatcher.Dispatch(plugin.Event{
			Gesture:    string(rec.Gesture),
			Action:     string(rec.Event.Kind),
			Confidence: rec.Confidence,
		})

		tr.SetLastAction(string(rec.Event.Kind))
	}

	ctrl, err := control.New(ctrlCfg)
	if err != nil {
		logging.S().Fatalw("failed to initialize controller", "error", err)
	}
	tr.SetBackend(string(ctrl.Backend()))

	// Debug server
	if cfg.ServerAddr != "" {
		srv := server.New(server.Config{
			StaticDir:  findWebDir(cfg.StaticDir),
			Store:      st,
			Controller: ctrl,
			Frames:     frames,
			Hub:        hub,
		})
		go func() {
			logging.S().Infow("debug server listening", "addr", cfg.ServerAddr)
			if err := srv.ListenAndServe(cfg.ServerAddr); err != nil {
				logging.S().Errorw("debug server stopped", "error", err)
			}
		}()
	}

	// Poll loop: the cooperative tick that drives one pipeline pass per frame
	// interval. Emitted actions flow out through the OnAction observer.
	stop := make(chan struct{})
	var loop sync.WaitGroup
	loop.Add(1)
	go func() {
		defer loop.Done()
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctrl.Poll()
			}
		}
	}()

	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() { quitOnce.Do(func() { close(quit) }) }

	// Terminal input: t toggles control mode, q quits, anything else feeds
	// the keyboard backend.
	go readKeys(ctrl, requestQuit)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sig:
			logging.S().Infow("signal received", "signal", s.String())
			requestQuit()
		case <-quit:
		}
	}()

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			close(stop)
			loop.Wait()
			if err := ctrl.Shutdown(); err != nil {
				logging.S().Warnw("controller shutdown", "error", err)
			}
			dispatcher.Wait()
		})
	}

	if cfg.Tray {
		tr.OnToggle(func(bool) {
			ctrl.ToggleMode()
		})
		tr.OnSettings(func() {
			openBrowser(settingsURL(cfg.ServerAddr))
		})
		tr.OnQuit(func() {
			requestQuit()
			shutdown()
		})
		go func() {
			<-quit
			shutdown()
			tr.Quit()
		}()
		tr.Run()
	} else {
		<-quit
		shutdown()
	}

	logging.S().Infow("shutdown complete")
}

// readKeys forwards terminal input to the controller.
func readKeys(ctrl *control.Controller, quit func()) {
	reader := bufio.NewReader(os.Stdin)
	for {
		r, _, err := reader.ReadRune()
		if err != nil {
			return
		}
		switch r {
		case 't', 'T':
			ctrl.ToggleMode()
		case 'q', 'Q':
			quit()
			return
		default:
			ctrl.SubmitKey(r)
		}
	}
}

// resolveDBPath defaults to ~/.temple-run/temple-run.db and makes sure the
// directory exists.
func resolveDBPath(configured string) (string, error) {
	if configured != "" {
		if err := os.MkdirAll(filepath.Dir(configured), 0755); err != nil {
			return "", err
		}
		return configured, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(homeDir, ".temple-run")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dbDir, "temple-run.db"), nil
}

// resolvePluginDir searches the usual locations when none is configured.
func resolvePluginDir(configured string) string {
	if configured != "" {
		return configured
	}

	candidates := []string{"plugins", "../plugins"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".temple-run", "plugins"))
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "plugins"
}

// findWebDir searches for the web directory in common locations.
// It checks the configured path first, then "web", "../web", "../../web",
// and ~/.temple-run/web. Returns the first existing directory or empty
// string if none found.
func findWebDir(configured string) string {
	if configured != "" {
		return configured
	}

	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".temple-run", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// settingsURL turns a listen address into something a browser can open.
func settingsURL(addr string) string {
	if addr == "" {
		return "http://localhost:8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser opens the URL with the platform's default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logging.S().Warnw("failed to open browser", "url", url, "error", err)
	}
}
