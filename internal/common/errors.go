// Package common defines shared constants and sentinel errors used across
// the client engine, the transport and the remote server. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a row does not exist for the calling owner
	// or is already a tombstone.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated means no owner identity is available (or the remote
	// refused the credentials). Mutations and sync refuse to proceed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRemoteRejected is returned when the remote store answered with an error
	// (constraint violation, owner mismatch, invalid row).
	ErrRemoteRejected = errors.New("remote rejected")

	// ErrUnreachable means the remote store could not be reached.
	ErrUnreachable = errors.New("remote unreachable")

	// ErrMalformedPayload marks a stored outbox snapshot that cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownCollection is returned for a collection name the engine does not serve.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrInvalidRow is returned by entity services for field values the
	// remote store would refuse. Nothing is written.
	ErrInvalidRow = errors.New("invalid row")

	// ErrInvalidToken is returned by token parsing on the server.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token is well-formed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// MalformedPayloadError describes why an outbox snapshot could not be decoded.
type MalformedPayloadError struct {
	OpID   string
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload %s: %s: %v", e.OpID, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed payload %s: %s", e.OpID, e.Reason)
}

func (e *MalformedPayloadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedPayload, e.Err}
	}
	return []error{ErrMalformedPayload}
}

// ValidationError names the row and the rule a local mutation broke.
type ValidationError struct {
	Collection string
	ID         string
	Err        error
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s row: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("invalid %s row %s: %v", e.Collection, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidRow, e.Err}
}
