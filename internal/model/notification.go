package model

import (
	"encoding/json"
	"time"
)

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotificationInfo            NotificationType = "info"
	NotificationSuccess         NotificationType = "success"
	NotificationWarning         NotificationType = "warning"
	NotificationError           NotificationType = "error"
	NotificationFileUploaded    NotificationType = "file_uploaded"
	NotificationEmailSent       NotificationType = "email_sent"
	NotificationMessageReceived NotificationType = "message_received"
)

// NotificationTypes lists every known type in display order.
var NotificationTypes = []NotificationType{
	NotificationInfo,
	NotificationSuccess,
	NotificationWarning,
	NotificationError,
	NotificationFileUploaded,
	NotificationEmailSent,
	NotificationMessageReceived,
}

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Notification is a single push notification received over the real-time
// channel. It is never mutated after creation.
type Notification struct {
	// Type classifies the notification.
	Type NotificationType `json:"type"`

	// Title is the short headline.
	Title string `json:"title"`

	// Message is the human-readable body.
	Message string `json:"message"`

	// Data is the opaque payload that accompanied the event, if any.
	Data json.RawMessage `json:"data,omitempty"`

	// Timestamp is when the notification was created.
	Timestamp time.Time `json:"timestamp"`
}

// ConnectedUser is a snapshot of a user currently attached to the
// notification channel, as reported by the backend.
type ConnectedUser struct {
	UserID      string    `json:"userId"`
	SocketID    string    `json:"socketId"`
	ConnectedAt time.Time `json:"connectedAt"`
}
