// Package common defines shared constants and sentinel errors used across the
// expensekeeper server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Startup-only errors: secret material is missing or malformed.
	ErrConfiguration = errors.New("configuration error")

	// Caller input errors.
	ErrValidation = errors.New("validation error")

	// Identity errors. ErrInvalidCredentials covers both "unknown email" and
	// "wrong password" and must be reported identically.
	ErrDuplicateIdentity  = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Authenticated encryption tag mismatch on decrypt.
	ErrIntegrity = errors.New("integrity check failed")

	// Token verification errors.
	ErrInvalidSignature = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
)

// Validation details. Each wraps ErrValidation.
var (
	ErrMissingCredentials    = fmt.Errorf("%w: email and password are required", ErrValidation)
	ErrInvalidEmailFormat    = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmailDomainNotAllowed = fmt.Errorf("%w: email domain is not allowed", ErrValidation)
	ErrPasswordTooShort      = fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	ErrPasswordTooLong       = fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
	ErrUnknownRole           = fmt.Errorf("%w: unknown role", ErrValidation)
)
