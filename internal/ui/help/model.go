// Package help renders the keyboard shortcut overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cloudconsole/internal/keys"
	"github.com/nhle/cloudconsole/internal/theme"
)

// sectionTitles names the groups returned by KeyMap.FullHelp, in order.
var sectionTitles = []string{
	"Navigation",
	"General",
	"Notifications",
	"Storage",
	"Queue",
	"Mail",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders every binding group under its section title.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)

	m.help.Width = m.width - 8

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for i, group := range m.keys.FullHelp() {
		b.WriteString(sectionStyle.Render(sectionTitle(i)))
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(enabled(group)))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.HelpStyle.Render("Press ? or esc to close"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(b.String())
}

func sectionTitle(i int) string {
	if i < len(sectionTitles) {
		return sectionTitles[i]
	}
	return ""
}

func enabled(group []key.Binding) []key.Binding {
	out := make([]key.Binding, 0, len(group))
	for _, b := range group {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 8
}
