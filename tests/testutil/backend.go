package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nhle/cloudconsole/internal/backend"
)

// Request is a captured inbound request to a fake backend.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Body        []byte
}

// JSON decodes the captured body into a generic map.
func (r Request) JSON(t *testing.T) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("decoding captured body %q: %v", r.Body, err)
	}
	return out
}

// Backend is an httptest server that records every request and answers
// with a canned status and body.
type Backend struct {
	Server *httptest.Server
	Client *backend.Client

	mu       sync.Mutex
	requests []Request
	status   int
	body     any
}

// NewBackend starts a fake backend answering 200 with an empty success
// envelope. It is closed when the test completes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		status: http.StatusOK,
		body:   map[string]any{"success": true, "message": "ok"},
	}

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			RawQuery:    r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		status, payload := b.status, b.body
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(b.Server.Close)

	b.Client = backend.NewClient(b.Server.URL+"/api", "", 5*time.Second)
	return b
}

// Respond sets the status and JSON body for subsequent requests.
func (b *Backend) Respond(status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.body = body
}

// RespondData answers 200 with a success envelope wrapping data.
func (b *Backend) RespondData(data any) {
	b.Respond(http.StatusOK, map[string]any{
		"success": true,
		"message": "ok",
		"data":    data,
	})
}

// Requests returns a copy of every captured request.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Last returns the most recent request, failing the test if none arrived.
func (b *Backend) Last(t *testing.T) Request {
	t.Helper()

	reqs := b.Requests()
	if len(reqs) == 0 {
		t.Fatalf("expected at least one request, got none")
	}
	return reqs[len(reqs)-1]
}
