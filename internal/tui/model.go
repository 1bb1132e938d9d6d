// Package tui implements the Bubble Tea TUI for roster.
package tui

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/eventbus"
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/listview"
	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/internal/tui/components"
	"github.com/colonyops/roster/internal/tui/components/form"
	tuinotify "github.com/colonyops/roster/internal/tui/notify"
)

// screen is the top-level route.
type screen int

const (
	screenLogin screen = iota
	screenRecords
	screenPage
)

// UIState is the overlay currently shown on the records screen.
type UIState int

const (
	stateNormal UIState = iota
	stateStudentForm
	stateConfirming
	stateExporting
	stateShowingHelp
	stateShowingNotifications
	stateShowingAccount
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// opStatus is the lifecycle of the last network operation.
type opStatus int

const (
	opIdle opStatus = iota
	opPending
	opSucceeded
	opFailed
)

// operation is shown in the footer so every request surfaces its state.
type operation struct {
	label  string
	status opStatus
}

// bulkProgress tracks an in-flight bulk delete.
type bulkProgress struct {
	total   int
	deleted int
	failed  int
}

// Options configures the TUI behavior.
type Options struct {
	Context  context.Context
	Build    BuildInfo
	Warnings []string // Startup warnings to display as toasts
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	app   *roster.App
	cfg   *config.Config
	ctx   context.Context
	keys  *KeybindingResolver
	build BuildInfo

	screen   screen
	prev     screen
	state    UIState
	width    int
	height   int
	quitting bool

	// Auth
	user  *identity.User
	login *LoginView

	// Records
	list    *listview.State[student.Record]
	cursor  int
	loaded  bool
	op      operation
	spinner spinner.Model
	bulk    bulkProgress

	// Overlays
	studentForm       *form.Dialog
	editingID         string
	confirm           components.ConfirmModal
	pendingDelete     []string
	exportForm        *form.Dialog
	helpDialog        *components.HelpDialog
	accountDialog     *components.InfoDialog
	notificationModal *NotificationModal
	page              *PageView

	// Notifications
	notifyBus       *tuinotify.Bus
	toastController *ToastController
	toastView       *ToastView

	events   *eventLink
	warnings []string
}

// New creates a new TUI model.
func New(app *roster.App, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := app.Config

	listOpts := listview.Options[student.Record]{
		ID:          func(r student.Record) string { return r.ID },
		Comparators: student.Comparators(),
		PageSizes:   cfg.TUI.PageSizes,
		PageSize:    cfg.TUI.PageSize,
		Sort:        listview.Sort{Key: student.DefaultSort},
	}
	if app.Prefs != nil {
		if prefs, ok := app.Prefs.ListPrefs(ctx); ok {
			listOpts.PageSize = prefs.PageSize
			if prefs.Sort.Key != "" {
				listOpts.Sort = prefs.Sort
			}
		}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.CommandHeaderStyle

	notifyBus := tuinotify.NewBus(app.Notifications, log.Logger)
	toastCtrl := NewToastController(cfg.TUI.ToastTTL)
	toastView := NewToastView(toastCtrl)

	// Wire bus -> toast controller
	notifyBus.Subscribe(func(n notify.Notification) {
		toastCtrl.Push(n)
	})

	events := newEventLink()
	if app.Bus != nil {
		app.Bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
			events.sendNotification(notify.Notification{Level: p.Level, Message: p.Message})
		})
	}

	return Model{
		app:             app,
		cfg:             cfg,
		ctx:             ctx,
		keys:            NewKeybindingResolver(cfg.Keybindings),
		build:           opts.Build,
		screen:          screenLogin,
		login:           NewLoginView(),
		list:            listview.New(listOpts),
		spinner:         s,
		notifyBus:       notifyBus,
		toastController: toastCtrl,
		toastView:       toastView,
		events:          events,
		warnings:        opts.Warnings,
	}
}

// Init subscribes to the signed-in user and starts listening for events.
func (m Model) Init() tea.Cmd {
	events := m.events
	events.track(m.app.Auth.Observe(events.sendAuth))

	if m.app.Bus != nil {
		m.app.Bus.PublishTuiStarted(eventbus.TUIStartedPayload{})
	}

	cmds := []tea.Cmd{
		events.listenAuth(),
		events.listenNotifications(),
		m.spinner.Tick,
	}
	for _, w := range m.warnings {
		cmds = append(cmds, notifyCmd(notify.LevelWarning, w))
	}
	return tea.Batch(cmds...)
}

// Close releases subscriptions held by the model. It is safe to call more
// than once.
func (m Model) Close() {
	m.events.close()
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.events.close()
	if m.app.Bus != nil {
		m.app.Bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	}
	return m, tea.Quit
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Window
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	// Auth
	case authChangedMsg:
		return m.handleAuthChanged(msg)
	case authResultMsg:
		return m.handleAuthResult(msg)

	// Data loaded
	case studentsLoadedMsg:
		return m.handleStudentsLoaded(msg)

	// Action results
	case studentSavedMsg:
		return m.handleStudentSaved(msg)
	case deleteStartedMsg:
		return m.handleDeleteStarted(msg)
	case deleteResultMsg:
		return m.handleDeleteResult(msg)
	case deleteFinishedMsg:
		return m.handleDeleteFinished()
	case exportDoneMsg:
		return m.handleExportDone(msg)

	// Notifications
	case notificationMsg:
		return m.handleNotification(msg)
	case toastTickMsg:
		return m.handleToastTick(msg)

	// Input
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}

	return m.handleFallthrough(msg)
}

// visibleRecord returns the record under the cursor.
func (m Model) visibleRecord() (student.Record, bool) {
	visible := m.list.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return student.Record{}, false
	}
	return visible[m.cursor], true
}

// clampCursor keeps the cursor inside the visible page.
func (m *Model) clampCursor() {
	n := len(m.list.Visible())
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
}

func (m Model) bodySize() (int, int) {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}
	// header + footer + spacing
	return w - 2, max(h-6, 3)
}
