package domain

import "errors"

var (
	// ErrNotFound is returned when a mutation targets an unknown restroom id.
	ErrNotFound = errors.New("restroom not found")
	// ErrValidation is returned when a required field is missing.
	ErrValidation = errors.New("validation failed")
	// ErrNoMatch is returned when the active filters leave nothing to pick.
	ErrNoMatch = errors.New("no restroom matches the current filters")
	// ErrPermissionDenied is returned when a host capability refuses access.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNoSelection is returned by actions that need a selected restroom.
	ErrNoSelection = errors.New("no restroom selected")
)
