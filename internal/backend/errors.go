package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ServiceError is a non-2xx answer from the backend
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail)
}

// TransportError is a network failure or an undecodable response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage renders err for the learner.
// Service errors show their detail verbatim (or fallback when there is none),
// transport errors show prefix followed by the underlying message.
func UserMessage(err error, fallback, prefix string) string {
	var se *ServiceError
	if errors.As(err, &se) {
		if se.Detail != "" {
			return se.Detail
		}
		return fallback
	}

	var te *TransportError
	if errors.As(err, &te) {
		return prefix + ": " + te.Err.Error()
	}

	return prefix + ": " + err.Error()
}

// parseDetail extracts the "detail" field of an error body.
// Validation failures carry a structured detail; it is kept as compact JSON.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, payload.Detail); err != nil {
		return string(payload.Detail)
	}
	if buf.String() == "null" {
		return ""
	}
	return buf.String()
}
