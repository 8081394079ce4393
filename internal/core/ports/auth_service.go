package ports

import (
	"context"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// LoginInput carries the raw login form fields.
type LoginInput struct {
	Username string
	Password string
}

// AuthService is the authentication gate.
type AuthService interface {
	// Login confirms the credentials and opens a session. Every rejection
	// is domain.ErrAuthFailure.
	Login(ctx context.Context, in LoginInput) (*domain.Session, error)
	// Authenticate resolves a bearer token to its live session.
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}
