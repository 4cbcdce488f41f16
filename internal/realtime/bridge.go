package realtime

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cloudconsole/internal/model"
)

// NotificationMsg is a tea.Msg carrying one received notification.
type NotificationMsg struct {
	Notification model.Notification
}

// StateMsg is a tea.Msg sent when the channel connectivity changes.
type StateMsg struct {
	State State
}

// WaitForEvent returns a tea.Cmd that blocks until the next notification
// or state change. Re-issue it after handling either message to keep
// listening.
func (c *Client) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-c.notifications:
			return NotificationMsg{Notification: n}
		case s := <-c.states:
			return StateMsg{State: s}
		}
	}
}
