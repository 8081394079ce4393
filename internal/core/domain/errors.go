package domain

import "errors"

// Validation error kinds. They are reported inside a *ValidationError and
// matched with errors.Is.
var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrWeakPassword      = errors.New("weak password")
	ErrPasswordMismatch  = errors.New("password mismatch")
	ErrUnknownEmail      = errors.New("unknown email")
	ErrRequired          = errors.New("required")
	ErrInvalidValue      = errors.New("invalid value")
)

// ErrAuthFailure is the single outcome of every rejected login. It never
// says whether the username or the password was wrong.
var ErrAuthFailure = errors.New("authentication failed")

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("access forbidden")
	ErrLocked            = errors.New("resource is locked")
)
