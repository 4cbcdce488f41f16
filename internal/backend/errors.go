package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for any non-2xx response. It is deliberately the only
// failure shape: callers show Message and do not branch on StatusCode.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsRequestError reports whether err (or any error in its chain) is a
// backend *Error.
func IsRequestError(err error) bool {
	var reqErr *Error
	return errors.As(err, &reqErr)
}

// ErrorMessage returns the backend's own message when err carries one,
// otherwise err.Error().
func ErrorMessage(err error) string {
	var reqErr *Error
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}

// errorBody covers the two error envelopes the backend is known to use.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, StatusCode: status}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			e.Message = parsed.Message
		case parsed.Error != "":
			e.Message = parsed.Error
		}
		return e
	}

	if text := strings.TrimSpace(string(body)); len(text) > 0 && len(text) <= 200 {
		e.Message = text
	}
	return e
}
