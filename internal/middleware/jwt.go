package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/response"
	"github.com/iliyamo/session-auth/internal/session"
)

// Messages used by SessionAuth.
const (
	msgAuthRequired = "Authentication required"
	msgInvalidToken = "Invalid or expired token"
)

// SessionAuth returns an Echo middleware that protects API routes.  It
// reads the session cookie, verifies the token and stores the claims on the
// context for handlers (see ClaimsFrom).  A missing cookie or a token that
// fails verification is answered with a 401 envelope.
func SessionAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := session.Read(c.Request())
			if !ok {
				return response.Unauthorized(c, msgAuthRequired)
			}
			claims, ok := v.Verify(raw)
			if !ok {
				return response.Unauthorized(c, msgInvalidToken)
			}
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// OptionalSession stores claims on the context when the request carries a
// valid session and otherwise lets the request through untouched.
func OptionalSession(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := session.Read(c.Request()); ok {
				if claims, ok := v.Verify(raw); ok {
					c.Set(ClaimsKey, claims)
				}
			}
			return next(c)
		}
	}
}
