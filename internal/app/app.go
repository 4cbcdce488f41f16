// Package app is the root Bubble Tea model: tab routing, global keys,
// overlays, the header and the toast status bar.
package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cloudconsole/internal/backend"
	notifsvc "github.com/nhle/cloudconsole/internal/backend/notifications"
	"github.com/nhle/cloudconsole/internal/backend/s3"
	"github.com/nhle/cloudconsole/internal/backend/ses"
	"github.com/nhle/cloudconsole/internal/backend/sqs"
	"github.com/nhle/cloudconsole/internal/credential"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/notify"
	"github.com/nhle/cloudconsole/internal/realtime"
	"github.com/nhle/cloudconsole/internal/theme"
	"github.com/nhle/cloudconsole/internal/ui"
	"github.com/nhle/cloudconsole/internal/ui/command"
	"github.com/nhle/cloudconsole/internal/ui/dashboard"
	helpview "github.com/nhle/cloudconsole/internal/ui/help"
	"github.com/nhle/cloudconsole/internal/ui/mail"
	"github.com/nhle/cloudconsole/internal/ui/notifications"
	"github.com/nhle/cloudconsole/internal/ui/queue"
	"github.com/nhle/cloudconsole/internal/ui/settings"
	"github.com/nhle/cloudconsole/internal/ui/storage"
	"github.com/nhle/cloudconsole/internal/ui/toast"
)

// Channel is the realtime client as the app drives it.
type Channel interface {
	notifications.Channel
	WaitForEvent() tea.Cmd
}

// Tab identifies one of the main views.
type Tab int

const (
	TabDashboard Tab = iota
	TabNotifications
	TabStorage
	TabQueue
	TabMail
)

var tabLabels = []string{"Dashboard", "Notifications", "Storage", "Queue", "Mail"}

// ViewState represents what occupies the content area.
type ViewState int

const (
	ViewTabs ViewState = iota
	ViewSettings
	ViewHelp
	ViewCommand
)

// Deps is everything the app needs from the outside.
type Deps struct {
	Config     model.AppConfig
	ConfigPath string
	Client     *backend.Client
	Channel    Channel
	Secrets    credential.Store
	ClientID   string
}

// Model is the root Bubble Tea model.
type Model struct {
	currentView ViewState
	activeTab   Tab
	layout      ui.Layout
	ready       bool

	cfg     model.AppConfig
	client  *backend.Client
	channel Channel
	state   realtime.State

	keys  *keys.KeyMap
	toast toast.Model

	dashboard     dashboard.Model
	notifications notifications.Model
	storage       storage.Model
	queue         queue.Model
	mail          mail.Model
	settings      settings.Model
	helpView      helpview.Model
	commandView   command.Model
}

// New creates the root model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewTabs,
		activeTab:   TabDashboard,
		cfg:         d.Config,
		client:      d.Client,
		channel:     d.Channel,
		keys:        k,
		toast:       toast.New(d.Config.Display.ToastDuration()),

		dashboard: dashboard.New(80, 24),
		notifications: notifications.New(
			notifsvc.New(d.Client), d.Channel, notify.NewLog(), d.ClientID, k, 80, 24,
		),
		storage:     storage.New(s3.New(d.Client), k, 80, 24),
		queue:       queue.New(sqs.New(d.Client), k, 80, 24),
		mail:        mail.New(ses.New(d.Client), "", k, 80, 24),
		settings:    settings.New(d.Config, d.ConfigPath, d.Secrets, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init connects the channel, loads initial data and starts listening for
// channel events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dashboard.Init(),
		m.notifications.Init(),
		m.mail.Init(),
		m.channel.WaitForEvent(),
	)
}

// Update handles messages and dispatches them to the views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.dashboard.SetSize(w, h)
		m.notifications.SetSize(w, h)
		m.storage.SetSize(w, h)
		m.queue.SetSize(w, h)
		m.mail.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActive(msg)

	case realtime.StateMsg:
		m.state = msg.State
		next, cmd := m.broadcast(msg)
		return next, tea.Batch(cmd, m.channel.WaitForEvent())

	case realtime.NotificationMsg:
		next, cmd := m.broadcast(msg)
		return next, tea.Batch(cmd, m.channel.WaitForEvent())

	case settings.SavedMsg:
		m.cfg = msg.Config
		m.client.Reconfigure(msg.Config.API.BaseURL, msg.Token)
		if msg.ChannelChanged {
			return m, toast.Show(toast.Warning, "Settings saved. Channel changes apply after restart")
		}
		return m, toast.Show(toast.Success, "Settings saved")

	case settings.DoneMsg:
		m.currentView = ViewTabs
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewTabs
		return m.executeCommand(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.broadcast(msg)
}

// handleKey applies global keys unless the active view has keyboard
// focus, then forwards the key to that view only.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = ViewTabs
		}
		return m, nil

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = ViewTabs
			m.commandView.Reset()
			return m, nil
		}
		return m.updateActive(msg)

	case ViewSettings:
		return m.updateActive(msg)
	}

	if m.capturing() {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextTab):
		m.activeTab = (m.activeTab + 1) % Tab(len(tabLabels))
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.activeTab = (m.activeTab + Tab(len(tabLabels)) - 1) % Tab(len(tabLabels))
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.currentView = ViewHelp
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.currentView = ViewCommand
		m.commandView.Reset()
		cmd := m.commandView.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] < '1'+byte(len(tabLabels)) {
		m.activeTab = Tab(s[0] - '1')
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.currentView = ViewSettings
	return m, m.settings.Init()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.channel.Disconnect()
	return m, tea.Quit
}

// capturing reports whether the active tab has keyboard focus.
func (m Model) capturing() bool {
	switch m.activeTab {
	case TabNotifications:
		return m.notifications.Capturing()
	case TabStorage:
		return m.storage.Capturing()
	case TabQueue:
		return m.queue.Capturing()
	case TabMail:
		return m.mail.Capturing()
	default:
		return m.dashboard.Capturing()
	}
}

// updateActive dispatches msg to whatever occupies the content area.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	}

	switch m.activeTab {
	case TabDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case TabNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case TabStorage:
		m.storage, cmd = m.storage.Update(msg)
	case TabQueue:
		m.queue, cmd = m.queue.Update(msg)
	case TabMail:
		m.mail, cmd = m.mail.Update(msg)
	}
	return m, cmd
}

// broadcast delivers a non-key message to every view. Views ignore
// messages that are not theirs.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 8)

	m.toast, cmds[0] = m.toast.Update(msg)
	m.dashboard, cmds[1] = m.dashboard.Update(msg)
	m.notifications, cmds[2] = m.notifications.Update(msg)
	m.storage, cmds[3] = m.storage.Update(msg)
	m.queue, cmds[4] = m.queue.Update(msg)
	m.mail, cmds[5] = m.mail.Update(msg)
	m.settings, cmds[6] = m.settings.Update(msg)
	if m.currentView == ViewCommand {
		m.commandView, cmds[7] = m.commandView.Update(msg)
	}

	return m, tea.Batch(cmds...)
}

// executeCommand runs a command chosen in the palette.
func (m Model) executeCommand(c command.CommandMsg) (tea.Model, tea.Cmd) {
	switch c.Name {
	case "dashboard":
		m.activeTab = TabDashboard
	case "notifications":
		m.activeTab = TabNotifications
	case "storage":
		m.activeTab = TabStorage
	case "queue":
		m.activeTab = TabQueue
	case "mail":
		m.activeTab = TabMail
	case "settings":
		return m.openSettings()
	case "help":
		m.currentView = ViewHelp
	case "quit":
		return m.quit()
	case "connect":
		return m, m.notifications.Connect()
	case "disconnect":
		m.notifications.Disconnect()
	case "join":
		return m, m.notifications.JoinRoom(c.Arg)
	case "leave":
		return m, m.notifications.LeaveRoom(c.Arg)
	case "status":
		return m, m.notifications.CheckStatus(c.Arg)
	case "clear":
		cmd := m.notifications.Clear()
		return m, cmd
	}
	return m, nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := fmt.Sprintf("● %s", m.state)
	header := m.layout.RenderHeader("Cloud Console", status, theme.ConnectionStyle(m.state.String())) +
		"\n" + m.layout.RenderTabs(tabLabels, int(m.activeTab))

	return m.layout.RenderWithFrame(header, m.renderContent(), m.statusBar())
}

// renderContent returns the rendered string for what occupies the
// content area.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	}

	switch m.activeTab {
	case TabNotifications:
		return m.notifications.View()
	case TabStorage:
		return m.storage.View()
	case TabQueue:
		return m.queue.View()
	case TabMail:
		return m.mail.View()
	default:
		return m.dashboard.View()
	}
}

// statusBar shows the current toast, or the key hints when there is none.
func (m Model) statusBar() string {
	if m.toast.Active() {
		return m.layout.RenderStatusBar(" "+m.toast.Text(), theme.ToastStyle(m.toast.Level().String()))
	}
	return m.layout.RenderStatusBar(m.keyHints(), theme.StatusBarStyle)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewSettings:
		return m.settings.Hints()
	}

	var hints string
	switch m.activeTab {
	case TabNotifications:
		hints = m.notifications.Hints()
	case TabStorage:
		hints = m.storage.Hints()
	case TabQueue:
		hints = m.queue.Hints()
	case TabMail:
		hints = m.mail.Hints()
	default:
		return m.dashboard.Hints()
	}
	if m.capturing() {
		return hints
	}
	return hints + " | ? help | q quit"
}
