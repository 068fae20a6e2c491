package apperr

import "errors"

// Sentinel errors shared by services so handlers can map failures to
// HTTP status codes with errors.Is. Wrap them with fmt.Errorf("...: %w", ...).
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrConflict     = errors.New("conflict")
)
