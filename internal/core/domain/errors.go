package domain

import "errors"

// Sentinel errors for the admission core. The API layer maps these to HTTP
// status codes in one place (internal/api/error_handler.go).
var (
	// ErrInvalidCredentials covers every credential failure at login. Wrong
	// email and wrong password intentionally collapse into the same error so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
)

// Token verification failures. Callers treat all of them as unauthenticated;
// they stay distinct for logging and metrics.
var (
	ErrTokenMissing          = errors.New("token missing")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
)

// Sequence allocation errors. ErrSequenceTaken and ErrSequenceNotFound are
// internal to the allocator's retry loop; ErrSequenceExhausted surfaces when
// both the retries and the fallback path failed.
var (
	ErrSequenceTaken     = errors.New("sequence already reserved")
	ErrSequenceNotFound  = errors.New("no sequence in scope")
	ErrSequenceExhausted = errors.New("sequence allocation exhausted")
)
