package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// Error kinds. Match with errors.Is against any error returned by the client.
var (
	ErrNetwork        = errors.New("network error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrValidation     = errors.New("request rejected")
	ErrServer         = errors.New("server error")
	ErrSessionInvalid = errors.New("session invalid")
)

// APIError describes a failed API call
type APIError struct {
	Kind       error
	StatusCode int // zero when no response was received
	Message    string
	Err        error // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == e.Kind
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// newResponseError builds an APIError from a non-2xx response
func newResponseError(resp *resty.Response) *APIError {
	status := resp.StatusCode()

	kind := ErrValidation
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case status >= 500:
		kind = ErrServer
	}

	return &APIError{
		Kind:       kind,
		StatusCode: status,
		Message:    errorMessage(resp.Body(), status),
	}
}

// errorMessage pulls the backend's message out of an error body, which is
// either {"error": "..."} or {"message": "..."}
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"error", "message"} {
			if msg := gjson.GetBytes(body, field); msg.Exists() && msg.String() != "" {
				return msg.String()
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected response"
}
