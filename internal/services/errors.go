package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/moviex/internal/shared"
)

// APIError is a non-2xx response from the catalog service.
//
// Message is the server-provided text when the body carries one; it is what
// ends up in the store's error field.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets callers match any API failure with [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// newAPIError builds an [APIError] from a failed response body.
func newAPIError(status int, body []byte, requestID string) *APIError {
	msg := ""

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		msg = strings.TrimSpace(eb.Message)
		if msg == "" {
			msg = strings.TrimSpace(eb.Error)
		}
	}

	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
		if text := http.StatusText(status); text != "" {
			msg = fmt.Sprintf("%s (%d)", text, status)
		}
	}

	return &APIError{StatusCode: status, Message: msg, RequestID: requestID}
}
