package model

import "errors"

// Service-boundary error taxonomy. Handlers map these to HTTP status codes;
// anything not in this list is treated as an internal error.
var (
	ErrNotFound     = errors.New("record not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
