package service

import "errors"

// Sentinel kinds returned by the service. Store and model errors
// (repository.ErrNotFound, model.ErrInvalid) pass through wrapped.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLoginDisabled = errors.New("login is not configured")
)
