package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token and its cookie.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionClaims are the identity attributes embedded in a session token
// together with the standard registered claims (sub, exp, iat).  The JSON
// names match what the browser-side code reads from the token.
type SessionClaims struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// SessionToken is a signed token string along with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// IssueSessionToken builds and signs an HS256 JWT carrying the identity in
// claims.  Expiry is now+ttl, stored as seconds since the epoch; any
// registered claims already set on claims are replaced.
func IssueSessionToken(secret string, claims SessionClaims, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp.Truncate(time.Second)}, nil
}

// VerifySessionToken parses and validates a session token.  It never returns
// an error: a bad signature, a malformed payload, an unexpected algorithm,
// a missing user id or an expiry in the past all yield (nil, false), which
// callers must treat as "unauthenticated".
func VerifySessionToken(token, secret string) (*SessionClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}
