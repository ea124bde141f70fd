package session

import "errors"

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidToken = errors.New("invalid session token")
)
