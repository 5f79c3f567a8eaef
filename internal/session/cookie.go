// Package session moves the signed session token between server and browser
// in the auth_token cookie.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the name of the session cookie.
const CookieName = "auth_token"

// Transport writes and clears the session cookie. The cookie is
// always HttpOnly, SameSite=Lax and scoped to Path=/.
type Transport struct {
	Secure bool          // Secure attribute; disable only for plain-HTTP development
	TTL    time.Duration // Max-Age of a freshly written cookie
}

func NewTransport(secure bool, ttl time.Duration) *Transport {
	return &Transport{Secure: secure, TTL: ttl}
}

// Write sets the session cookie to token. Callers must invoke it exactly
// once per successful login or registration response.
func (t *Transport) Write(c echo.Context, token string) {
	c.SetCookie(t.cookie(token, int(t.TTL/time.Second), time.Now().Add(t.TTL)))
}

// Clear overwrites the session cookie with an empty value. Max-Age=0 and a
// past Expires are both sent because some clients and proxies only honour
// one of them.
func (t *Transport) Clear(c echo.Context) {
	c.SetCookie(t.cookie("", -1, time.Unix(0, 0)))
}

// Read returns the session token carried by r, if any.
func Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// maxAge follows net/http: a negative value is emitted as "Max-Age=0".
func (t *Transport) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
