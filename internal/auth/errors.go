package auth

import "errors"

// Sentinel kinds for authentication failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrMissingSecret      = errors.New("token secret must not be empty")
)
