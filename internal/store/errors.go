package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrUserAlreadyExists is returned when inserting a duplicate war participant.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUserNotFound is returned when a war participant does not exist.
	// Absence is the canonical "not a participant" signal.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPom is returned when a pom fails validation.
	ErrInvalidPom = errors.New("invalid pom")

	// ErrInvalidEvent is returned when an event fails validation.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidAction is returned when an action fails validation.
	ErrInvalidAction = errors.New("invalid action")
)
