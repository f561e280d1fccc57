package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/lemon/task-api/internal/core/policy"
)

// RequireAuthenticated rejects requests without a resolved principal before
// the handler runs. Role and ownership checks live in the services, which
// audit their denials.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.Enforce(PrincipalFrom(c), policy.Authenticated()); err != nil {
				return err
			}
			return next(c)
		}
	}
}
