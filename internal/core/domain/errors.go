package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the umbrella for every "resource absent" outcome.
var ErrNotFound = errors.New("not found")

var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")

	// ErrInvalidInput marks request content rejected by a domain rule.
	ErrInvalidInput = errors.New("invalid input")
)

// Token failures. Both collapse to an unauthenticated outcome at the boundary.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
