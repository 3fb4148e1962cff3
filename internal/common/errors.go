package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const genericErrorMessage = "Something went wrong. Please try again."

var (
	// ErrUnauthorized matches any APIError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNetwork      = errors.New("network error")
	ErrNotFound     = errors.New("not found")
)

// APIError is the normalized shape of every failed backend call.
// Status is 0 when no response was received.
type APIError struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"raw,omitempty"`
	Err     error           `json:"-"`
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is match normalized errors against the sentinels above.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNetwork:
		return e.Status == 0
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// NormalizeError builds an APIError from a non-2xx response body.
func NormalizeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: genericErrorMessage}
	if len(body) == 0 {
		return apiErr
	}

	if json.Valid(body) {
		apiErr.Raw = json.RawMessage(body)
	} else {
		raw, _ := json.Marshal(string(body))
		apiErr.Raw = raw
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return apiErr
	}
	for _, key := range []string{"message", "detail"} {
		if msg, ok := fields[key].(string); ok && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	return apiErr
}

// NetworkError wraps a transport failure where no response was received.
func NetworkError(err error) *APIError {
	return &APIError{Status: 0, Message: err.Error(), Err: err}
}

// ValidationError is returned for form input rejected before any request is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
