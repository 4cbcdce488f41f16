package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nhle/cloudconsole/internal/model"
)

// Event is one frame on the channel, in both directions.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound event names.
const (
	eventRegister    = "register"
	eventJoinRoom    = "joinRoom"
	eventLeaveRoom   = "leaveRoom"
	eventSendMessage = "sendMessage"
	eventRoomMessage = "roomMessage"
)

// Inbound event names that change connection state rather than produce a
// notification.
const (
	eventRegistered = "registered"
	eventWelcome    = "welcome"
)

func newEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s payload: %w", name, err)
	}
	return Event{Name: name, Data: data}, nil
}

// translator turns an inbound payload into a notification. received is the
// local time the frame was read.
type translator func(data json.RawMessage, received time.Time) (model.Notification, error)

// inbound maps every notification-producing event name to its translator.
// Events missing from this table (other than registered and welcome) are
// dropped.
var inbound = map[string]translator{
	"notification":     translateNotification,
	"newMessage":       translateDirectMessage,
	"broadcastMessage": translateBroadcast,
	eventRoomMessage:   translateRoomMessage,
}

type notificationPayload struct {
	Type    model.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
}

type messagePayload struct {
	From      string          `json:"from"`
	Room      string          `json:"room"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
}

func translateNotification(data json.RawMessage, received time.Time) (model.Notification, error) {
	var p notificationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Notification{}, fmt.Errorf("decoding notification: %w", err)
	}
	if p.Type == "" {
		p.Type = model.NotificationInfo
	}

	n := model.Notification{
		Type:      p.Type,
		Title:     p.Title,
		Message:   p.Message,
		Timestamp: received,
	}
	if len(p.Data) > 0 && string(p.Data) != "null" {
		n.Data = p.Data
	}
	return n, nil
}

func translateDirectMessage(data json.RawMessage, received time.Time) (model.Notification, error) {
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Notification{}, fmt.Errorf("decoding newMessage: %w", err)
	}
	return model.Notification{
		Type:      model.NotificationMessageReceived,
		Title:     "New Message",
		Message:   "Message from " + p.From,
		Data:      data,
		Timestamp: parseTimestamp(p.Timestamp, received),
	}, nil
}

func translateBroadcast(data json.RawMessage, received time.Time) (model.Notification, error) {
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Notification{}, fmt.Errorf("decoding broadcastMessage: %w", err)
	}
	return model.Notification{
		Type:      model.NotificationInfo,
		Title:     "Broadcast Message",
		Message:   p.Message,
		Data:      data,
		Timestamp: parseTimestamp(p.Timestamp, received),
	}, nil
}

func translateRoomMessage(data json.RawMessage, received time.Time) (model.Notification, error) {
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Notification{}, fmt.Errorf("decoding roomMessage: %w", err)
	}
	return model.Notification{
		Type:      model.NotificationInfo,
		Title:     "Message in " + p.Room,
		Message:   p.Message,
		Data:      data,
		Timestamp: parseTimestamp(p.Timestamp, received),
	}, nil
}

// parseTimestamp accepts an RFC 3339 string or Unix milliseconds and falls
// back when the value is missing or unreadable.
func parseTimestamp(raw json.RawMessage, fallback time.Time) time.Time {
	if len(raw) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		return fallback
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.UnixMilli(int64(ms))
	}
	return fallback
}
