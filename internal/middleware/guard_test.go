package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/session-auth/internal/session"
)

func guardedEcho() *echo.Echo {
	cfg := DefaultGuardConfig(secretVerifier(testSecret), session.NewTransport(true, 0))
	guard := RouteGuard(cfg)

	page := func(c echo.Context) error {
		redirected, _ := c.Get(RedirectedKey).(bool)
		user := "-"
		if cl := ClaimsFrom(c); cl != nil {
			user = cl.Name
		}
		return c.String(http.StatusOK, fmt.Sprintf("%s|%s|%t|%s",
			c.Request().URL.Path, c.Request().URL.RawQuery, redirected, user))
	}

	e := echo.New()
	for _, p := range []string{"/", "/about", "/login", "/register", "/dashboard", "/profile", "/settings"} {
		e.GET(p, page, guard)
	}
	return e
}

func TestGuardConfig_Classify(t *testing.T) {
	cfg := DefaultGuardConfig(nil, nil)

	tests := []struct {
		path string
		want PathClass
	}{
		{"/", PathPublic},
		{"/about", PathPublic},
		{"/about/", PathPublic},
		{"/robots.txt", PathPublic},
		{"/sitemap.xml", PathPublic},
		{"/healthz", PathPublic},
		{"/api/test", PathPublic},
		{"/api/auth/me", PathPublic},
		{"/auth/login", PathPublic},
		{"/static/app.css", PathPublic},
		{"/login", PathAuthPage},
		{"/login/", PathAuthPage},
		{"/register", PathAuthPage},
		{"/dashboard", PathProtected},
		{"/profile", PathProtected},
		{"/settings/security", PathProtected},
		{"/aboutus", PathProtected},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Classify(tt.path))
		})
	}
}

func TestRouteGuard_Decisions(t *testing.T) {
	e := guardedEcho()
	valid := issue(t, false)

	tests := []struct {
		name         string
		target       string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{"public without session", "/", "", http.StatusOK, ""},
		{"public with session", "/about", valid, http.StatusOK, ""},
		{"protected without session", "/dashboard", "", http.StatusTemporaryRedirect, "/login?redirected=1"},
		{"protected with session", "/profile", valid, http.StatusOK, ""},
		{"login without session", "/login", "", http.StatusOK, ""},
		{"login with session", "/login", valid, http.StatusTemporaryRedirect, "/dashboard?redirected=1"},
		{"register with session", "/register", valid, http.StatusTemporaryRedirect, "/dashboard?redirected=1"},
		{"protected with invalid cookie", "/settings", "forged", http.StatusTemporaryRedirect, "/login?redirected=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, tt.target, tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
			if tt.wantLocation != "" {
				assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestRouteGuard_SetsClaimsOnProtectedPages(t *testing.T) {
	rec := do(guardedEcho(), http.MethodGet, "/dashboard", issue(t, false))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dashboard||false|Ann Lee", rec.Body.String())
}

func TestRouteGuard_ClearsInvalidCookie(t *testing.T) {
	rec := do(guardedEcho(), http.MethodGet, "/login", "forged")

	// an invalid cookie counts as no session, so the login page renders
	require.Equal(t, http.StatusOK, rec.Code)
	var cleared *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRouteGuard_MarkerStopsLoops(t *testing.T) {
	e := guardedEcho()

	t.Run("protected page reached through a redirect answers 401", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/dashboard?redirected=1", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
		assert.Contains(t, rec.Body.String(), `href="/login"`)
	})

	t.Run("login page reached through a redirect renders even with a session", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/login?redirected=1", issue(t, false))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/login||true|Ann Lee", rec.Body.String())
	})

	t.Run("marker is stripped but other query params survive", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/dashboard?tab=keys&redirected=1", issue(t, false))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/dashboard|tab=keys|true|Ann Lee", rec.Body.String())
	})
}

// Following the guard's redirects from any start state must terminate
// after at most one hop.
func TestRouteGuard_RedirectChainTerminates(t *testing.T) {
	e := guardedEcho()
	valid := issue(t, false)

	for _, start := range []string{"/", "/login", "/register", "/dashboard", "/profile"} {
		for _, token := range []string{"", valid, "forged"} {
			target, hops := start, 0
			for {
				rec := do(e, http.MethodGet, target, token)
				if rec.Code != http.StatusTemporaryRedirect {
					break
				}
				hops++
				require.LessOrEqual(t, hops, 1, "start=%s", start)
				loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
				require.NoError(t, err)
				target = loc.RequestURI()
			}
		}
	}
}
