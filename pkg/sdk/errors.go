package sdk

import (
	"errors"
	"fmt"
)

// Kind classifies a Gateway failure so callers can branch without parsing messages.
type Kind string

const (
	// KindUnauthenticated means no credential was stored; no request was sent.
	KindUnauthenticated Kind = "unauthenticated"
	// KindUnauthorized means the server rejected the credential (401).
	KindUnauthorized Kind = "unauthorized"
	// KindNetwork means no response was received. Retryable.
	KindNetwork Kind = "network_error"
	// KindInvalidResponse means the body could not be parsed as JSON.
	KindInvalidResponse Kind = "invalid_response"
	// KindRequestFailed means a well-formed non-2xx response.
	KindRequestFailed Kind = "request_failed"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNetwork         = errors.New("network error")
	ErrInvalidResponse = errors.New("invalid server response")
	ErrRequestFailed   = errors.New("request failed")
)

// Error is returned by every Gateway call that does not succeed.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Code is the server-supplied error code, or the generic "request_failed".
	Code    string
	Message string
	// Body holds the raw response text for InvalidResponse diagnostics.
	Body string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", msg, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", msg, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

func sentinelFor(kind Kind) error {
	switch kind {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindUnauthorized:
		return ErrUnauthorized
	case KindNetwork:
		return ErrNetwork
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindRequestFailed:
		return ErrRequestFailed
	}
	return nil
}

// KindOf extracts the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsAuthFailure reports whether err means the caller must log in again.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrUnauthorized)
}
