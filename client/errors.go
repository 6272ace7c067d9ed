package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBaseURLRequired is returned by New when Config.BaseURL is empty.
	ErrBaseURLRequired = errors.New("client: base URL is required")
	// ErrTransport marks failures where no response was received. The
	// underlying net or context error stays reachable through errors.Is/As.
	ErrTransport = errors.New("client: transport failure")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Body is the raw response body, capped at maxResponseSize.
	Body []byte
	// Detail is the raw "detail" member of a JSON error body, if any.
	Detail json.RawMessage
	// Message is the "message" member of a JSON error body, if any.
	Message string
}

func (e *APIError) Error() string {
	text := e.DetailText()
	if text == "" {
		text = e.Message
	}
	if text == "" {
		text = strings.TrimSpace(string(e.Body))
	}
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, text)
}

// DetailText renders Detail as text. A string detail is returned as is; a
// validation list of {"msg": ...} objects is joined with "; ". Anything else
// yields "".
func (e *APIError) DetailText() string {
	if e == nil || len(e.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(e.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg != "" {
			msgs = append(msgs, item.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}
	if detail, ok := envelope["detail"]; ok && string(detail) != "null" {
		apiErr.Detail = detail
	}
	if raw, ok := envelope["message"]; ok {
		var message string
		if json.Unmarshal(raw, &message) == nil {
			apiErr.Message = message
		}
	}
	return apiErr
}
