// Package notifications wraps the backend's notification endpoints, which
// push messages to clients attached to the real-time channel.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/cloudconsole/internal/backend"
	"github.com/nhle/cloudconsole/internal/model"
)

// Message is the common notification body. Empty Type and nil Data are
// omitted from the request so the backend applies its own defaults.
type Message struct {
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Type    model.NotificationType `json:"type,omitempty"`
	Data    json.RawMessage        `json:"data,omitempty"`
}

type userRequest struct {
	UserID string `json:"userId"`
	Message
}

type roomRequest struct {
	Room string `json:"room"`
	Message
}

// SendResult reports whether a direct notification reached a live socket.
type SendResult struct {
	Sent bool `json:"sent"`
}

// UserStatus is the connectivity snapshot for a single user.
type UserStatus struct {
	UserID    string `json:"userId"`
	Connected bool   `json:"connected"`
}

// ConnectedUsers is the list returned by the connected-users query.
type ConnectedUsers struct {
	Count int                   `json:"count"`
	Users []model.ConnectedUser `json:"users"`
}

// Service issues notification requests against the backend.
type Service struct {
	client *backend.Client
}

// New creates a notification service on top of client.
func New(client *backend.Client) *Service {
	return &Service{client: client}
}

// Send pushes a notification to a single user.
func (s *Service) Send(
	ctx context.Context,
	userID string,
	msg Message,
) (*backend.Response[SendResult], error) {
	var resp backend.Response[SendResult]
	body := userRequest{UserID: userID, Message: msg}
	if err := s.client.Post(ctx, "/notifications/send", body, &resp); err != nil {
		return nil, fmt.Errorf("sending notification to %s: %w", userID, err)
	}
	return &resp, nil
}

// Broadcast pushes a notification to every connected user.
func (s *Service) Broadcast(
	ctx context.Context,
	msg Message,
) (*backend.Response[backend.Raw], error) {
	var resp backend.Response[backend.Raw]
	if err := s.client.Post(ctx, "/notifications/broadcast", msg, &resp); err != nil {
		return nil, fmt.Errorf("broadcasting notification: %w", err)
	}
	return &resp, nil
}

// SendToRoom pushes a notification to every member of room.
func (s *Service) SendToRoom(
	ctx context.Context,
	room string,
	msg Message,
) (*backend.Response[backend.Raw], error) {
	var resp backend.Response[backend.Raw]
	body := roomRequest{Room: room, Message: msg}
	if err := s.client.Post(ctx, "/notifications/room", body, &resp); err != nil {
		return nil, fmt.Errorf("sending notification to room %s: %w", room, err)
	}
	return &resp, nil
}

// Status reports whether userID currently holds a channel connection.
func (s *Service) Status(
	ctx context.Context,
	userID string,
) (*backend.Response[UserStatus], error) {
	var resp backend.Response[UserStatus]
	path := "/notifications/status/" + backend.EscapePath(userID)
	if err := s.client.Get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("checking status of %s: %w", userID, err)
	}
	return &resp, nil
}

// Connected lists the users currently attached to the channel.
func (s *Service) Connected(
	ctx context.Context,
) (*backend.Response[ConnectedUsers], error) {
	var resp backend.Response[ConnectedUsers]
	if err := s.client.Get(ctx, "/notifications/connected", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing connected users: %w", err)
	}
	return &resp, nil
}
