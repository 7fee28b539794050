package service

import "errors"

// Error taxonomy surfaced by collaboration operations. Handlers map these
// onto HTTP statuses; callers must treat ErrForbidden as an authorization
// failure, never as an empty result.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrInvalidTarget = errors.New("invalid target")
	ErrLimitReached  = errors.New("invite usage limit reached")
)
