// Package settings is the configuration view: backend and channel
// endpoints, the client id and the API token kept in the system keyring.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nhle/cloudconsole/internal/backend"
	notifsvc "github.com/nhle/cloudconsole/internal/backend/notifications"
	"github.com/nhle/cloudconsole/internal/credential"
	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/theme"
	"github.com/nhle/cloudconsole/internal/ui/form"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeSummary        Mode = iota // Current settings
	ModeForm                       // Editing
	ModeValidating                 // Testing the backend
	ModeValidateResult             // Test outcome
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg is emitted after the settings were persisted.
type SavedMsg struct {
	Config model.AppConfig
	Token  string

	// ChannelChanged is set when the channel URL or client id changed;
	// those only take effect on the next start.
	ChannelChanged bool
}

type tokenLoadedMsg struct {
	token string
	err   error
}

type savedInternalMsg struct {
	saved SavedMsg
	err   error
}

type validateResultMsg struct {
	users int
	err   error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL    string
	channelURL string
	clientID   string
	token      string
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode Mode
	form *huh.Form
	fb   *formBindings

	cfg     model.AppConfig
	path    string
	secrets credential.Store
	token   string

	validUsers int
	validError error
	spinner    spinner.Model

	// Status message for transient feedback
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view for cfg, persisted at path.
func New(
	cfg model.AppConfig,
	path string,
	secrets credential.Store,
	k *keys.KeyMap,
	width, height int,
) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeSummary,
		fb:      &formBindings{},
		cfg:     cfg,
		path:    path,
		secrets: secrets,
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init loads the stored API token.
func (m Model) Init() tea.Cmd {
	secrets := m.secrets
	return func() tea.Msg {
		token, err := credential.Lookup(secrets, credential.APITokenKey)
		return tokenLoadedMsg{token: token, err: err}
	}
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tokenLoadedMsg:
		if msg.err != nil {
			log.Warn("reading api token", "err", msg.err)
			m.statusMsg = fmt.Sprintf("Could not read API token: %v", msg.err)
			return m, nil
		}
		m.token = msg.token
		return m, nil

	case savedInternalMsg:
		if msg.err != nil {
			log.Error("saving settings", "path", m.path, "err", msg.err)
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, nil
		}
		m.cfg = msg.saved.Config
		m.token = msg.saved.Token
		m.statusMsg = "Settings saved"
		saved := msg.saved
		return m, func() tea.Msg { return saved }

	case validateResultMsg:
		m.mode = ModeValidateResult
		m.validUsers = msg.users
		m.validError = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeSummary:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return DoneMsg{} }
		case key.Matches(msg, m.keys.Select):
			return m.openForm()
		case key.Matches(msg, m.keys.Refresh):
			m.mode = ModeValidating
			return m, tea.Batch(m.spinner.Tick, m.validate())
		}
		return m, nil

	case ModeValidating:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeSummary
		}
		return m, nil

	case ModeValidateResult:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			m.mode = ModeValidating
			return m, tea.Batch(m.spinner.Tick, m.validate())
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Select):
			m.mode = ModeSummary
		}
		return m, nil

	default:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeSummary
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)
	}
}

func (m Model) openForm() (Model, tea.Cmd) {
	*m.fb = formBindings{
		baseURL:    m.cfg.API.BaseURL,
		channelURL: m.cfg.Channel.URL,
		clientID:   m.cfg.Channel.ClientID,
		token:      m.token,
	}
	m.mode = ModeForm
	m.form = m.buildForm()
	m.statusMsg = ""
	return m, m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return form.New(m.width,
		huh.NewInput().
			Title("API base URL").
			Placeholder("http://localhost:3000/api").
			Value(&m.fb.baseURL).
			Validate(form.URL("http", "https")),
		huh.NewInput().
			Title("Channel URL").
			Placeholder("ws://localhost:3000/ws").
			Value(&m.fb.channelURL).
			Validate(form.URL("ws", "wss")),
		huh.NewInput().
			Title("Client ID").
			Description("Blank generates a random id on each start").
			Value(&m.fb.clientID),
		huh.NewInput().
			Title("API token").
			Description("Stored in the system keyring. Blank removes it").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.token),
	)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	f, cmd, state := form.Step(m.form, msg)
	m.form = f

	switch state {
	case huh.StateCompleted:
		m.mode = ModeSummary
		m.form = nil
		return m, m.save()
	case huh.StateAborted:
		m.mode = ModeSummary
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// save persists the edited settings: the token to the keyring, the rest
// to the config file.
func (m Model) save() tea.Cmd {
	cfg := m.cfg
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	cfg.Channel.URL = strings.TrimSpace(m.fb.channelURL)
	cfg.Channel.ClientID = strings.TrimSpace(m.fb.clientID)
	token := strings.TrimSpace(m.fb.token)

	changed := cfg.Channel.URL != m.cfg.Channel.URL || cfg.Channel.ClientID != m.cfg.Channel.ClientID
	secrets, path := m.secrets, m.path

	return func() tea.Msg {
		var err error
		if token == "" {
			err = secrets.Delete(credential.APITokenKey)
		} else {
			err = secrets.Set(credential.APITokenKey, token)
		}
		if err != nil {
			return savedInternalMsg{err: fmt.Errorf("storing api token: %w", err)}
		}

		if err := model.SaveConfig(path, &cfg); err != nil {
			return savedInternalMsg{err: err}
		}

		return savedInternalMsg{saved: SavedMsg{
			Config:         cfg,
			Token:          token,
			ChannelChanged: changed,
		}}
	}
}

// validate checks the saved backend settings by listing connected users.
func (m Model) validate() tea.Cmd {
	baseURL, token, timeout := m.cfg.API.BaseURL, m.token, m.cfg.API.Timeout()
	return func() tea.Msg {
		svc := notifsvc.New(backend.NewClient(baseURL, token, timeout))
		resp, err := svc.Connected(context.Background())
		if err != nil {
			return validateResultMsg{err: err}
		}
		return validateResultMsg{users: resp.Data.Count}
	}
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.form != nil
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case ModeSummary:
		return "enter edit | r test connection | esc back"
	case ModeForm:
		return "enter submit | esc cancel"
	case ModeValidateResult:
		return "r retry | enter/esc back"
	default:
		return "esc cancel"
	}
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return form.View("Settings", m.form, m.width, m.height)
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	default:
		return m.viewSummary()
	}
}

func (m Model) viewSummary() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	clientID := m.cfg.Channel.ClientID
	if clientID == "" {
		clientID = "(random per session)"
	}
	tokenState := "not set"
	if m.token != "" {
		tokenState = "stored in keyring"
	}

	rows := [][2]string{
		{"API base URL", m.cfg.API.BaseURL},
		{"Channel URL", m.cfg.Channel.URL},
		{"Client ID", clientID},
		{"API token", tokenState},
		{"Config file", m.path},
	}
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)
	for _, r := range rows {
		b.WriteString(label.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) viewValidating() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	content := fmt.Sprintf(
		"%s Testing connection to %s...\n\nPress esc to cancel.",
		m.spinner.View(), m.cfg.API.BaseURL,
	)

	return style.Render(content)
}

func (m Model) viewValidateResult() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	var content string
	if m.validError != nil {
		errStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed)
		content = errStyle.Render("Connection failed") + "\n\n" +
			backend.ErrorMessage(m.validError)
	} else {
		okStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorGreen)
		content = okStyle.Render("Connection successful") + "\n\n" +
			fmt.Sprintf("%d users connected to the channel", m.validUsers)
	}

	return style.Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
