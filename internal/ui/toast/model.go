// Package toast renders transient status-bar messages.
package toast

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cloudconsole/internal/model"
)

// Level is the severity of a toast.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// ShowMsg is a tea.Msg asking the status bar to show a toast.
type ShowMsg struct {
	Level Level
	Text  string
}

type expiredMsg struct {
	seq int
}

// Show returns a command that emits text as a toast, verbatim.
func Show(level Level, text string) tea.Cmd {
	return func() tea.Msg {
		return ShowMsg{Level: level, Text: text}
	}
}

// Showf is Show with fmt.Sprintf formatting.
func Showf(level Level, format string, args ...any) tea.Cmd {
	return Show(level, fmt.Sprintf(format, args...))
}

// LevelFor maps a notification type to the toast level used to announce
// it.
func LevelFor(t model.NotificationType) Level {
	switch t {
	case model.NotificationSuccess:
		return Success
	case model.NotificationWarning:
		return Warning
	case model.NotificationError:
		return Error
	default:
		return Info
	}
}

// Model holds the current toast, if any. A newer toast replaces an older
// one and only the newest one's timer clears it.
type Model struct {
	ttl    time.Duration
	level  Level
	text   string
	seq    int
	active bool
}

// New creates a toast model whose messages stay up for ttl.
func New(ttl time.Duration) Model {
	return Model{ttl: ttl}
}

// Update handles ShowMsg and expiry ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowMsg:
		m.seq++
		m.level = msg.Level
		m.text = msg.Text
		m.active = true

		seq := m.seq
		return m, tea.Tick(m.ttl, func(time.Time) tea.Msg {
			return expiredMsg{seq: seq}
		})

	case expiredMsg:
		if msg.seq == m.seq {
			m.active = false
			m.text = ""
		}
	}
	return m, nil
}

// Active reports whether a toast is showing.
func (m Model) Active() bool {
	return m.active
}

// Level returns the level of the showing toast.
func (m Model) Level() Level {
	return m.level
}

// Text returns the showing toast's text.
func (m Model) Text() string {
	return m.text
}
