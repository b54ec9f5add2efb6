package domain

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrUserExists          = errors.New("username or email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("access token required")
	ErrInvalidToken        = errors.New("invalid token")
	ErrForbidden           = errors.New("access forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrApplicationCooldown = errors.New("an application was already submitted recently")
	ErrRequestInFlight     = errors.New("a request with this idempotency key is still being processed")
)

// ValidationError describes missing or malformed input. It matches
// ErrValidation under errors.Is and its message is safe to show to clients.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an unknown id for a given entity type.
type NotFoundError struct {
	Entity EntityType
	ID     int64
}

func (e *NotFoundError) Error() string { return string(e.Entity) + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
