package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotCached      = errors.New("entity not cached")
	ErrInvalidSession = errors.New("session requires both token and user id")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrUnknownField   = errors.New("unknown entity field")
	ErrNoSession      = errors.New("no saved session")
	ErrTokenNotFound  = errors.New("token not found")
)

// StatusError is the backend's {status, message} error body.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// AuthError reports rejected credentials. It is shown to the user and never
// retried.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (status %d)", e.Status)
	}
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
}

type RemoteFetchError struct {
	Type  EntityType
	ID    EntityID
	Cause error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Type, e.ID, e.Cause)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Cause
}

type RemoteWriteError struct {
	Type  EntityType
	ID    EntityID
	Field string
	Cause error
}

func (e *RemoteWriteError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("write %s %s: %v", e.Type, e.ID, e.Cause)
	}
	return fmt.Sprintf("could not update %s of %s %s, reverted: %v", e.Field, e.Type, e.ID, e.Cause)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Cause
}
