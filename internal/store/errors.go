package store

import "errors"

var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("storage unavailable")
)
