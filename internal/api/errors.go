package api

import (
	"errors"
	"fmt"
)

// The client maps every unsuccessful call onto a small set of error kinds so
// that callers never branch on raw status codes or ad hoc response fields.

// NotFoundError means the identifier never existed.
type NotFoundError struct {
	UUID    string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("snippet %s does not exist", e.UUID)
}

// ExpiredError means the snippet existed but its time or view budget is
// exhausted. Distinct from NotFoundError so the UI can tell "vanished"
// apart from "never existed".
type ExpiredError struct {
	UUID    string
	Message string
}

func (e *ExpiredError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("snippet %s has expired", e.UUID)
}

// TransportError covers network failures, malformed responses, and
// unexpected status codes. Retryable by the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError is a structured rejection from the backend: the envelope came
// back with success=false and a human-readable message (validation failures,
// missing auth, and so on).
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsExpired reports whether err is an ExpiredError.
func IsExpired(err error) bool {
	var ex *ExpiredError
	return errors.As(err, &ex)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
