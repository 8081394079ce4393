package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// RequireStaff lets only staff sessions through. Must run after Auth.
// Rejections are returned as domain errors for the shared error handler.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, _ := c.Get(SessionKey).(*domain.Session)
			if sess == nil {
				return domain.ErrUnauthorized
			}
			if !sess.IsStaff {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
