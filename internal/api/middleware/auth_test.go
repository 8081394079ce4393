package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

type stubAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*domain.Session, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	return s.authenticateFn(ctx, token)
}

func acceptToken(want string, sess *domain.Session) *stubAuthenticator {
	return &stubAuthenticator{authenticateFn: func(_ context.Context, token string) (*domain.Session, error) {
		if token != want {
			return nil, domain.ErrUnauthorized
		}
		return sess, nil
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	sess := &domain.Session{ID: "s1", AccountID: "a1", Username: "alice"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(acceptToken("good-token", sess))
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get(SessionKey) != sess {
			t.Fatalf("session not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer not-a-token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			mw := Auth(acceptToken("good-token", &domain.Session{ID: "s1"}))
			handler := mw(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_StoreErrorPropagates(t *testing.T) {
	e := echo.New()
	boom := errors.New("redis down")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	c := e.NewContext(req, httptest.NewRecorder())

	mw := Auth(&stubAuthenticator{authenticateFn: func(context.Context, string) (*domain.Session, error) {
		return nil, boom
	}})
	err := mw(func(echo.Context) error { return nil })(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
