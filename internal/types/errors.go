package types

import "errors"

var (
	ErrNotFound        = errors.New("requested item not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
)
