package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/cloudconsole/internal/realtime"
)

func TestCountersAccumulate(t *testing.T) {
	m := New(120, 30)

	m, _ = m.Update(Count(Files, 3)())
	m, _ = m.Update(CountMsg{Counter: Files, N: 1})
	m, _ = m.Update(CountMsg{Counter: Emails, N: 2})
	m, _ = m.Update(realtime.NotificationMsg{})
	m, _ = m.Update(realtime.NotificationMsg{})

	assert.Equal(t, 4, m.Value(Files))
	assert.Equal(t, 2, m.Value(Emails))
	assert.Equal(t, 2, m.Value(Notifications))
	assert.Equal(t, 0, m.Value(Messages))
}

func TestViewShowsLabels(t *testing.T) {
	m := New(140, 30)
	m, _ = m.Update(CountMsg{Counter: Messages, N: 7})

	out := m.View()
	assert.Contains(t, out, "Queue messages sent")
	assert.Contains(t, out, "7")
}
