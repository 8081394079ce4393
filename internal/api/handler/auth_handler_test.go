package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
			if in.Username != "alice" || in.Password != "abcdefgh1234" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Session{ID: "s1", AccountID: "a1", Token: "tok", ExpiresAt: expires}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"abcdefgh1234"}`, nil)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || resp.TokenType != "Bearer" || resp.SessionID != "s1" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_FailurePassesThrough(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*domain.Session, error) {
			return nil, domain.ErrAuthFailure
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"nope"}`, nil)
	if err := handler.Login(c); !errors.Is(err, domain.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/v1/auth/login", `{"username":`, nil)
	err := handler.Login(c)
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, sessionID string) error {
			revoked = sessionID
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/v1/auth/logout", "", &domain.Session{ID: "s9", AccountID: "a1"})
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked != "s9" {
		t.Fatalf("expected session s9 revoked, got %q", revoked)
	}
}

func TestAuthHandler_Logout_WithoutSession(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/v1/auth/logout", "", nil)
	if err := handler.Logout(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
