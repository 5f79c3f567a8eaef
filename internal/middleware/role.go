package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/response"
)

// RequireAdmin rejects requests whose verified claims do not carry the admin
// flag. It must run after SessionAuth or RouteGuard has stored the claims.
// API paths get a 403 envelope, pages a plain 403 document.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cl := ClaimsFrom(c)
			if cl == nil {
				return response.Unauthorized(c, msgAuthRequired)
			}
			if !cl.IsAdmin {
				if wantsJSON(c) {
					return response.Error(c, http.StatusForbidden, "Forbidden")
				}
				return c.HTML(http.StatusForbidden, "<!doctype html><html><body><h1>Forbidden</h1></body></html>")
			}
			return next(c)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/auth/")
}
