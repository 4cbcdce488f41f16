// Package command is the ':' command palette.
package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cloudconsole/internal/theme"
)

// Command is a palette entry.
type Command struct {
	Name        string
	Description string

	// Arg names the required argument, if any.
	Arg string
}

// Commands lists every command the palette accepts.
var Commands = []Command{
	{Name: "dashboard", Description: "Go to the dashboard"},
	{Name: "notifications", Description: "Go to notifications"},
	{Name: "storage", Description: "Go to storage"},
	{Name: "queue", Description: "Go to the queue"},
	{Name: "mail", Description: "Go to mail"},
	{Name: "settings", Description: "Open settings"},
	{Name: "connect", Description: "Connect the notification channel"},
	{Name: "disconnect", Description: "Disconnect the notification channel"},
	{Name: "join", Description: "Join a channel room", Arg: "room"},
	{Name: "leave", Description: "Leave a channel room", Arg: "room"},
	{Name: "status", Description: "Check whether a user is connected", Arg: "user"},
	{Name: "clear", Description: "Clear received notifications"},
	{Name: "help", Description: "Show keyboard shortcuts"},
	{Name: "quit", Description: "Exit the console"},
}

// CommandMsg is emitted when the user executes a known command.
type CommandMsg struct {
	Name string
	Arg  string
}

// Parse splits input into a command and its argument and checks it
// against Commands.
func Parse(input string) (CommandMsg, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	for _, c := range Commands {
		if c.Name != name {
			continue
		}
		if c.Arg != "" && arg == "" {
			return CommandMsg{}, fmt.Errorf("%s needs a %s", c.Name, c.Arg)
		}
		if c.Arg == "" && arg != "" {
			return CommandMsg{}, fmt.Errorf("%s takes no argument", c.Name)
		}
		return CommandMsg{Name: name, Arg: arg}, nil
	}
	return CommandMsg{}, fmt.Errorf("unknown command %q", name)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(names())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

func names() []string {
	out := make([]string, len(Commands))
	for i, c := range Commands {
		out[i] = c.Name
	}
	return out
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			parsed, err := Parse(text)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.input.Reset()
			return m, func() tea.Msg {
				return parsed
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Command Palette"), m.input.View()}
	if m.err != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err.Error()))
	}
	parts = append(parts, "", m.listing())

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// listing shows the commands matching what has been typed so far.
func (m Model) listing() string {
	typed, _, _ := strings.Cut(strings.TrimSpace(m.input.Value()), " ")

	var b strings.Builder
	for _, c := range Commands {
		if typed != "" && !strings.HasPrefix(c.Name, typed) {
			continue
		}
		name := c.Name
		if c.Arg != "" {
			name += " <" + c.Arg + ">"
		}
		fmt.Fprintf(&b, "%-16s %s\n", name, theme.DimmedStyle.Render(c.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the input and any error.
func (m *Model) Reset() {
	m.input.Reset()
	m.err = nil
}
