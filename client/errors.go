package client

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrEndpointRequired = errors.New("endpoint is required")
	ErrConfigRequired   = errors.New("config is required")
)

// Errors surfaced from server responses.
var (
	ErrNotFound  = errors.New("item not found")
	ErrForbidden = errors.New("access denied")
	ErrBadInput  = errors.New("request rejected")
)
