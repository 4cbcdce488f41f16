// Package sqs wraps the backend's message queue endpoints.
package sqs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/cloudconsole/internal/backend"
)

// SendRequest is the body of a single send. MessageAttributes is omitted
// when nil.
type SendRequest struct {
	Message           string         `json:"message"`
	DelaySeconds      int            `json:"delaySeconds"`
	MessageAttributes map[string]any `json:"messageAttributes,omitempty"`
}

// BatchMessage is one entry of a batch send. ID must be unique within
// the batch.
type BatchMessage struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	DelaySeconds int    `json:"delaySeconds"`
}

type batchRequest struct {
	Messages []BatchMessage `json:"messages"`
}

// SendResult identifies the enqueued message.
type SendResult struct {
	MessageID string `json:"messageId"`
}

// BatchEntry is an accepted batch entry.
type BatchEntry struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
}

// BatchFailure is a rejected batch entry.
type BatchFailure struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult is whatever per-entry outcome the backend reports. Both
// lists are empty when the backend does not break results down.
type BatchResult struct {
	Successful []BatchEntry   `json:"successful"`
	Failed     []BatchFailure `json:"failed"`
}

// ReceivedMessage is a message pulled from the queue.
type ReceivedMessage struct {
	MessageID         string         `json:"messageId"`
	ReceiptHandle     string         `json:"receiptHandle"`
	Body              string         `json:"body"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	MessageAttributes map[string]any `json:"messageAttributes,omitempty"`
}

// Service issues queue requests against the backend.
type Service struct {
	client *backend.Client
}

// New creates a queue service on top of client.
func New(client *backend.Client) *Service {
	return &Service{client: client}
}

// Send enqueues one message.
func (s *Service) Send(
	ctx context.Context,
	req SendRequest,
) (*backend.Response[SendResult], error) {
	var resp backend.Response[SendResult]
	if err := s.client.Post(ctx, "/sqs/send", req, &resp); err != nil {
		return nil, fmt.Errorf("sending queue message: %w", err)
	}
	return &resp, nil
}

// SendBatch forwards messages verbatim in a single request. Partial
// failures are left in the returned result for the caller to inspect.
func (s *Service) SendBatch(
	ctx context.Context,
	messages []BatchMessage,
) (*backend.Response[BatchResult], error) {
	var resp backend.Response[BatchResult]
	if err := s.client.Post(ctx, "/sqs/send-batch", batchRequest{Messages: messages}, &resp); err != nil {
		return nil, fmt.Errorf("sending batch of %d messages: %w", len(messages), err)
	}
	return &resp, nil
}

// Receive pulls up to maxMessages messages, long-polling for
// waitTimeSeconds. Non-positive values are left to the backend.
func (s *Service) Receive(
	ctx context.Context,
	maxMessages int,
	waitTimeSeconds int,
) (*backend.Response[[]ReceivedMessage], error) {
	q := url.Values{}
	if maxMessages > 0 {
		q.Set("maxMessages", strconv.Itoa(maxMessages))
	}
	if waitTimeSeconds > 0 {
		q.Set("waitTimeSeconds", strconv.Itoa(waitTimeSeconds))
	}

	var resp backend.Response[[]ReceivedMessage]
	if err := s.client.Get(ctx, "/sqs/receive", q, &resp); err != nil {
		return nil, fmt.Errorf("receiving queue messages: %w", err)
	}
	return &resp, nil
}

// Attributes returns the queue's attribute map.
func (s *Service) Attributes(
	ctx context.Context,
) (*backend.Response[map[string]any], error) {
	var resp backend.Response[map[string]any]
	if err := s.client.Get(ctx, "/sqs/attributes", nil, &resp); err != nil {
		return nil, fmt.Errorf("loading queue attributes: %w", err)
	}
	return &resp, nil
}
