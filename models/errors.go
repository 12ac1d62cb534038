package models

import "errors"

// Error kinds shared by services and handlers. Handlers map them to HTTP codes.
var (
	ErrInvalidToken       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
)
