package middleware

// identity.go holds the helpers shared by the session middlewares for
// storing verified claims on the Echo context and reading them back.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/utils"
)

// ClaimsKey is the echo.Context key under which verified claims are stored.
const ClaimsKey = "session_claims"

// TokenVerifier verifies a session token. It must not fail loudly: false
// means the caller is unauthenticated.
type TokenVerifier interface {
	Verify(token string) (*utils.SessionClaims, bool)
}

// ClaimsFrom returns the verified claims stored on c, or nil.
func ClaimsFrom(c echo.Context) *utils.SessionClaims {
	if cl, ok := c.Get(ClaimsKey).(*utils.SessionClaims); ok {
		return cl
	}
	return nil
}

// userID returns the authenticated user id, or "guest".
func userID(c echo.Context) string {
	if cl := ClaimsFrom(c); cl != nil && cl.UserID != "" {
		return cl.UserID
	}
	return "guest"
}
