package models

import "errors"

// Error kinds surfaced across the service boundary. Handlers translate these
// into the API error envelope; nothing below this layer retries them.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidVersionIndex = errors.New("invalid version index")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("not authorized")
)
