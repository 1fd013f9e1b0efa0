package shortener

import "errors"

var (
	// ErrNotFound is returned when no link exists for a code or id.
	ErrNotFound = errors.New("link not found")
	// ErrExpired is returned when a link exists but its retention window has passed.
	ErrExpired = errors.New("link expired")
	// ErrInvalidURL is returned for input that is not an absolute http or https URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrConflict is returned by a Repository when the short code is already taken.
	ErrConflict = errors.New("short code already exists")
	// ErrAllocationExhausted is returned when every allocation attempt collided.
	ErrAllocationExhausted = errors.New("short code allocation exhausted")
)
