package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown when a failure carries no service message
const GenericMessage = "Something went wrong"

// maxPlainMessage bounds plain-text bodies used as messages
const maxPlainMessage = 200

// Error is a failure reported by the task service
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task service error (%d)", e.Status)
	}
	return fmt.Sprintf("task service error (%d): %s", e.Status, e.Message)
}

// Message returns the human-readable text for err: the service message when
// there is one, GenericMessage otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}

// IsStatus reports whether err is a service error with the given status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// extractMessage pulls the service message out of an error body. The service
// answers either with JSON ({"error": ...}, {"message": ...} or a bare JSON
// string) or with plain text.
func extractMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var obj struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		if msg := rawString(obj.Error); msg != "" {
			return msg
		}
		if obj.Message != "" {
			return obj.Message
		}
		return ""
	}

	var s string
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return strings.TrimSpace(s)
	}

	if strings.HasPrefix(text, "<") {
		// HTML error pages are not worth showing
		return ""
	}
	if len(text) > maxPlainMessage {
		text = text[:maxPlainMessage]
	}
	return text
}

// rawString accepts "error" as either a string or {"message": "..."}
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.Message
	}
	return ""
}
