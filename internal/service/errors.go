package service

import "errors"

// Errors returned by the services. Handlers translate them into HTTP responses.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("not found")
)
