package orders

import "errors"

var (
	ErrNotFound     = errors.New("order not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
)
