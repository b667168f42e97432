package tray

import (
	"fmt"

	"fyne.io/fyne/v2"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/ui/view"
)

// Host is the part of desktop.App the tray drives.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Icons are swapped with the running state.
type Icons struct {
	Active fyne.Resource
	Paused fyne.Resource
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnIntent      func(command string)
	OnOpenPanel   func()
	OnPreferences func()
	OnQuit        func()
}

// Manager renders the compact indicator into the system tray menu.
type Manager struct {
	host      Host
	icons     Icons
	callbacks Callbacks
	compact   view.CompactView
	panel     view.PanelView
	menu      *fyne.Menu
	running   bool
}

// New creates a tray manager showing the loading placeholder.
func New(host Host, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:      host,
		icons:     icons,
		callbacks: callbacks,
	}
	manager.Update(nil)
	return manager
}

// Update re-renders the tray for snapshot. Call from the fyne main goroutine.
func (manager *Manager) Update(snapshot *model.Snapshot) {
	manager.compact = view.Compact(snapshot)
	manager.panel = view.Panel(snapshot)

	running := snapshot != nil && snapshot.State.IsRunning
	if manager.menu == nil || running != manager.running {
		manager.setIcon(running)
	}
	manager.running = running

	manager.menu = manager.buildMenu()
	manager.host.SetSystemTrayMenu(manager.menu)
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) setIcon(running bool) {
	icon := manager.icons.Paused
	if running {
		icon = manager.icons.Active
	}
	if icon != nil {
		manager.host.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) buildMenu() *fyne.Menu {
	items := make([]*fyne.MenuItem, 0, 10)

	if manager.compact.Visible {
		status := fyne.NewMenuItem(manager.compact.Label, manager.intent(manager.compact.ClickIntent))
		status.Disabled = manager.compact.Loading
		items = append(items,
			status,
			disabled(manager.compact.Tooltip),
			fyne.NewMenuItemSeparator(),
		)
	}

	panel := manager.panel
	toggle := fyne.NewMenuItem(panel.Toggle.Label, manager.intent(panel.Toggle.Intent))
	reset := fyne.NewMenuItem(panel.Reset.Label, manager.intent(panel.Reset.Intent))
	skip := fyne.NewMenuItem(panel.Skip.Label, manager.intent(panel.Skip.Intent))
	quickStart := fyne.NewMenuItem("Quick Start", nil)
	quickItems := make([]*fyne.MenuItem, 0, len(panel.QuickStart))
	for _, button := range panel.QuickStart {
		label := fmt.Sprintf("%s %s (%s)", button.Icon, button.Label, button.Detail)
		quickItems = append(quickItems, fyne.NewMenuItem(label, manager.intent(button.Intent)))
	}
	quickStart.ChildMenu = fyne.NewMenu("", quickItems...)

	for _, item := range []*fyne.MenuItem{toggle, reset, skip, quickStart} {
		item.Disabled = panel.Loading
	}
	items = append(items, toggle, reset, skip, quickStart, fyne.NewMenuItemSeparator())

	items = append(items,
		fyne.NewMenuItem("Open Panel", manager.call(manager.callbacks.OnOpenPanel)),
		fyne.NewMenuItem("Settings", manager.call(manager.callbacks.OnPreferences)),
	)

	quit := fyne.NewMenuItem("Quit", manager.call(manager.callbacks.OnQuit))
	quit.IsQuit = true
	items = append(items, quit)

	return fyne.NewMenu(view.AppName, items...)
}

func (manager *Manager) intent(command string) func() {
	return func() {
		if manager.callbacks.OnIntent != nil {
			manager.callbacks.OnIntent(command)
		}
	}
}

func (manager *Manager) call(callback func()) func() {
	return func() {
		if callback != nil {
			callback()
		}
	}
}

func disabled(label string) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, nil)
	item.Disabled = true
	return item
}
