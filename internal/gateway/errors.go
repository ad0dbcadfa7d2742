package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrTransportUnavailable means no response reached the client at
// all: network down, DNS failure, or the server not answering.
var ErrTransportUnavailable = errors.New("api unreachable")

// FieldError holds the server-reported validation messages for one
// field, in server-declared order.
type FieldError struct {
	Field    string
	Messages []string
}

// RequestRejectedError means the server was reachable and declined
// the operation. Message carries the server-supplied explanation or
// a caller-provided fallback. FieldErrors is populated when the
// server reports per-field validation failures.
type RequestRejectedError struct {
	Message     string
	FieldErrors []FieldError
}

func (e *RequestRejectedError) Error() string {
	return e.Message
}

// ValidationMessage joins all per-field messages comma-separated in
// server-declared order, falling back to Message when the server
// reported none.
func (e *RequestRejectedError) ValidationMessage() string {
	var parts []string
	for _, fe := range e.FieldErrors {
		parts = append(parts, fe.Messages...)
	}
	if len(parts) == 0 {
		return e.Message
	}
	return strings.Join(parts, ", ")
}

func transportError(err error) error {
	return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
}

// rejectionFromBody builds a RequestRejectedError out of a failure
// response body. The body may carry a top-level message, a per-field
// error map under data, or neither.
func rejectionFromBody(body []byte, fallback string) *RequestRejectedError {
	var envelope struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	rej := &RequestRejectedError{Message: fallback}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return rej
	}
	if envelope.Message != "" {
		rej.Message = envelope.Message
	}
	rej.FieldErrors = parseFieldErrors(envelope.Data)
	return rej
}

// parseFieldErrors walks the data object token by token so field
// order matches what the server declared. encoding/json maps would
// lose that order.
func parseFieldErrors(raw json.RawMessage) []FieldError {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil
	}
	var out []FieldError
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out
		}
		field, ok := keyTok.(string)
		if !ok {
			return out
		}
		var messages []string
		if err := dec.Decode(&messages); err != nil {
			return out
		}
		out = append(out, FieldError{Field: field, Messages: messages})
	}
	return out
}
