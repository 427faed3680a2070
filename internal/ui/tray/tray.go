package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnStartPause  func()
	OnReset       func()
	OnSkip        func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	startItem  *fyne.MenuItem
	status     string
	running    bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		status:    "starting...",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnStartPause != nil {
			manager.callbacks.OnStartPause()
		}
	})

	manager.refresh()
	return manager
}

// SetStatus updates the status line, e.g. "Work 12:34".
func (manager *Manager) SetStatus(status string) {
	if status == manager.status {
		return
	}
	manager.status = status
	manager.refresh()
}

// SetRunning flips the start/pause item label.
func (manager *Manager) SetRunning(running bool) {
	if running == manager.running {
		return
	}
	manager.running = running
	manager.refresh()
}

func (manager *Manager) refresh() {
	status := manager.status
	if !manager.running {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	if manager.running {
		manager.startItem.Label = "Pause"
	} else {
		manager.startItem.Label = "Start"
	}

	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("pomodesk",
		manager.statusItem,
		fyne.NewMenuItem("Show timer", manager.callback(manager.callbacks.OnShow)),
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		fyne.NewMenuItem("Skip phase", manager.callback(manager.callbacks.OnSkip)),
		fyne.NewMenuItem("Reset phase", manager.callback(manager.callbacks.OnReset)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", manager.callback(manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", manager.callback(manager.callbacks.OnQuit)),
	))
}

func (manager *Manager) callback(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
