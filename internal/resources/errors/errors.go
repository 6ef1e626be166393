package errors

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidCapacity = errors.New("capacity must be a positive integer")

	ErrInvalidMinCapacity = errors.New("minimum capacity cannot be negative")
)
