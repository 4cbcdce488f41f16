// Package notify keeps the in-memory list of notifications received during
// the session.
package notify

import "github.com/nhle/cloudconsole/internal/model"

// Log is an ordered, newest-first notification list. It is owned by the UI
// goroutine and is not safe for concurrent use.
type Log struct {
	items []model.Notification
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Prepend puts n at the front of the log.
func (l *Log) Prepend(n model.Notification) {
	l.items = append([]model.Notification{n}, l.items...)
}

// Items returns a copy of the log, newest first.
func (l *Log) Items() []model.Notification {
	out := make([]model.Notification, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of notifications held.
func (l *Log) Len() int {
	return len(l.items)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.items = nil
}
