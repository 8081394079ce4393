package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-accounts/internal/api/middleware"
	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// ctxSession returns the session injected by the Auth middleware. A missing
// session means the route was mounted without the middleware.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess, ok := c.Get(middleware.SessionKey).(*domain.Session)
	if !ok || sess == nil {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}
