package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the uniform backend response: {"success": bool, "data": ...}.
// Data is kept raw because the backend is duck-typed; callers must go through
// the Decode helpers, which validate the expected shape instead of trusting it.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`

	action string
}

// RequestError is an application-level failure: the request reached the
// backend but the script reported success=false or returned data in a shape
// the caller cannot use. Distinct from transport errors (plain wrapped
// errors from Client methods).
type RequestError struct {
	Action  string
	Message string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request failed", e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// Err returns nil for a successful envelope, otherwise a *RequestError
// carrying whatever error text the backend put in data.
func (e *Envelope) Err() error {
	if e.Success {
		return nil
	}
	return &RequestError{Action: e.action, Message: e.errorText()}
}

func (e *Envelope) errorText() string {
	if len(e.Data) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Data, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return strings.TrimSpace(payload.Error)
	}
	// Sometimes the script returns a bare string.
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// DecodeList decodes e.Data as a JSON array of T. A success=false envelope or
// non-array data yields a *RequestError, never a partial slice.
func DecodeList[T any](e *Envelope) ([]T, error) {
	if err := e.Err(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(e.Data))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, &RequestError{Action: e.action, Message: "expected a list, got " + shapeOf(e.Data)}
	}
	var out []T
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return nil, &RequestError{Action: e.action, Message: "malformed list: " + err.Error()}
	}
	return out, nil
}

// DecodeValue decodes e.Data as a single T.
func DecodeValue[T any](e *Envelope) (T, error) {
	var out T
	if err := e.Err(); err != nil {
		return out, err
	}
	if len(e.Data) == 0 {
		return out, &RequestError{Action: e.action, Message: "empty data"}
	}
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return out, &RequestError{Action: e.action, Message: "malformed data: " + err.Error()}
	}
	return out, nil
}

func shapeOf(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "":
		return "nothing"
	case strings.HasPrefix(trimmed, "{"):
		return "an object"
	case strings.HasPrefix(trimmed, `"`):
		return "a string"
	case trimmed == "null":
		return "null"
	default:
		return "a scalar"
	}
}
