// Package tray provides a system tray interface for the Temple Run gesture
// control pipeline.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(gestureMode bool)
	onSettings func()
	onQuit     func()
	gesture    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuBackend    *systray.MenuItem
	menuLastAction *systray.MenuItem
}

// New creates a new Tray instance starting in gesture mode.
func New() *Tray {
	return &Tray{
		gesture: true,
	}
}

// OnToggle sets the callback function to be called when the control mode is
// toggled. The argument is true when gesture control is active.
func (t *Tray) OnToggle(fn func(gestureMode bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	// Set the tray title and tooltip
	systray.SetTitle("Temple Run")
	systray.SetTooltip("Temple Run Gesture Control")

	// Create menu items
	t.menuToggle = systray.AddMenuItem("● Gesture Control", "Toggle between gesture and keyboard control")
	systray.AddSeparator()

	t.menuBackend = systray.AddMenuItem("Backend: none", "Active recognition backend")
	t.menuBackend.Disable()

	t.menuLastAction = systray.AddMenuItem("Last action: none", "Last dispatched game action")
	t.menuLastAction.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open the control panel in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Temple Run")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
// It performs cleanup tasks.
func (t *Tray) onExit() {
	// Cleanup resources if needed
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.gesture = !t.gesture
	gesture := t.gesture

	// Update menu item text based on new state
	if gesture {
		t.menuToggle.SetTitle("● Gesture Control")
	} else {
		t.menuToggle.SetTitle("○ Keyboard Mode")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(gesture)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetBackend updates the active backend display in the menu.
func (t *Tray) SetBackend(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuBackend != nil {
		if name == "" {
			t.menuBackend.SetTitle("Backend: none")
		} else {
			t.menuBackend.SetTitle("Backend: " + name)
		}
	}
}

// SetLastAction updates the last action display in the menu.
func (t *Tray) SetLastAction(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastAction != nil {
		if name == "" {
			t.menuLastAction.SetTitle("Last action: none")
		} else {
			t.menuLastAction.SetTitle("Last action: " + name)
		}
	}
}

// IsGestureMode returns whether gesture control is currently active.
func (t *Tray) IsGestureMode() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gesture
}

// Quit stops the tray loop, unblocking Run. Safe to call more than once.
func (t *Tray) Quit() {
	systray.Quit()
}
