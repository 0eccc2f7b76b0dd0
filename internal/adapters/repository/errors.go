package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidReference = errors.New("referenced athlete or meet does not exist")
	ErrClosed           = errors.New("store is closed")
)
