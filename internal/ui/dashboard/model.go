package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cloudconsole/internal/realtime"
	"github.com/nhle/cloudconsole/internal/theme"
)

// Counter identifies one of the session counters.
type Counter int

const (
	Notifications Counter = iota
	Files
	Messages
	Emails
)

// CountMsg asks the dashboard to add N to a counter. Views emit it after a
// successful operation.
type CountMsg struct {
	Counter Counter
	N       int
}

// Count returns a command emitting CountMsg.
func Count(c Counter, n int) tea.Cmd {
	return func() tea.Msg {
		return CountMsg{Counter: c, N: n}
	}
}

type card struct {
	counter Counter
	label   string
	tab     string
}

var cards = []card{
	{Notifications, "Notifications received", "2 Notifications"},
	{Files, "Files uploaded", "3 Storage"},
	{Messages, "Queue messages sent", "4 Queue"},
	{Emails, "Emails sent", "5 Mail"},
}

// Model is the landing view with session counters.
type Model struct {
	counts        map[Counter]int
	width, height int
}

// New creates a dashboard with every counter at zero.
func New(width, height int) Model {
	return Model{
		counts: make(map[Counter]int),
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update tracks counters.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CountMsg:
		m.counts[msg.Counter] += msg.N
	case realtime.NotificationMsg:
		m.counts[Notifications]++
	}
	return m, nil
}

// Value returns the current value of counter c.
func (m Model) Value(c Counter) int {
	return m.counts[c]
}

// Capturing is always false; the dashboard has no text input.
func (m Model) Capturing() bool {
	return false
}

// Hints returns the status bar hints.
func (m Model) Hints() string {
	return "1-5 switch tab | S settings | : command | ? help | q quit"
}

// View renders the counters as cards.
func (m Model) View() string {
	cardStyle := theme.BorderStyle.
		Padding(1, 2).
		Width(28)

	valueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := fmt.Sprintf("%s\n%s\n\n%s",
			valueStyle.Render(fmt.Sprintf("%d", m.counts[c.counter])),
			c.label,
			theme.HelpStyle.Render("open with "+c.tab),
		)
		rendered = append(rendered, cardStyle.Render(body))
	}

	var rows string
	if m.width >= 4*32 {
		rows = lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	} else {
		rows = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, rendered[0], rendered[1]),
			lipgloss.JoinHorizontal(lipgloss.Top, rendered[2], rendered[3]),
		)
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Cloud Console"))
	b.WriteString("\n")
	b.WriteString(rows)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
