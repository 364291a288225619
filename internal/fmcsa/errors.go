package fmcsa

import "errors"

var (
	// ErrInvalidIdentifier is returned when a DOT or MC number has no digits or more than eight.
	ErrInvalidIdentifier = errors.New("invalid carrier identifier")

	// ErrCarrierNotFound is returned when FMCSA has no record for the identifier.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrQuotaExceeded is returned when a request window is exhausted.
	ErrQuotaExceeded = errors.New("fmcsa request quota exceeded")

	// ErrUpstream is returned when FMCSA keeps failing after all retries.
	ErrUpstream = errors.New("fmcsa upstream error")
)
