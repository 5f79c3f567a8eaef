package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/session"
)

// PathClass is the Route Guard's classification of a request path.
type PathClass int

const (
	// PathPublic is served to everyone.
	PathPublic PathClass = iota
	// PathAuthPage is the login or register page: public, but a signed-in
	// visitor is sent to the dashboard instead.
	PathAuthPage
	// PathProtected requires a valid session.
	PathProtected
)

// RedirectedKey is the echo.Context key set to true when the request arrived
// through a guard redirect.
const RedirectedKey = "guard_redirected"

// GuardConfig configures RouteGuard.
type GuardConfig struct {
	LoginPath      string
	RegisterPath   string
	DashboardPath  string
	PublicPaths    []string // exact matches
	PublicPrefixes []string // API routes protect themselves
	// Marker is the one-shot query parameter carried by guard redirects.
	Marker    string
	Verifier  TokenVerifier
	Transport *session.Transport // clears cookies that fail verification
}

// DefaultGuardConfig returns the site's public/protected layout.
func DefaultGuardConfig(v TokenVerifier, t *session.Transport) GuardConfig {
	return GuardConfig{
		LoginPath:      "/login",
		RegisterPath:   "/register",
		DashboardPath:  "/dashboard",
		PublicPaths:    []string{"/", "/about", "/robots.txt", "/sitemap.xml", "/healthz", "/favicon.ico"},
		PublicPrefixes: []string{"/api/", "/auth/", "/static/"},
		Marker:         "redirected",
		Verifier:       v,
		Transport:      t,
	}
}

// Classify reports how path is treated by the guard.
func (g GuardConfig) Classify(path string) PathClass {
	for _, p := range g.PublicPrefixes {
		if strings.HasPrefix(path, p) || path == strings.TrimSuffix(p, "/") {
			return PathPublic
		}
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == g.LoginPath || path == g.RegisterPath {
		return PathAuthPage
	}
	for _, p := range g.PublicPaths {
		if path == p {
			return PathPublic
		}
	}
	return PathProtected
}

// RouteGuard gates page requests.
//
//	public                      -> allow
//	protected, no valid session -> redirect to login
//	login/register, session     -> redirect to dashboard
//	protected, session          -> allow
//
// The session cookie is fully verified, not just checked for presence; a
// cookie that fails verification is cleared and treated as absent.
//
// Every redirect carries the Marker query parameter. A request that already
// carries it is never redirected again: the login/register page renders and
// a protected page answers 401. The marker is stripped from the request
// before the page handler runs, so it never reaches links or later redirects.
func RouteGuard(cfg GuardConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			class := cfg.Classify(req.URL.Path)
			if class == PathPublic {
				return next(c)
			}

			marked := req.URL.Query().Has(cfg.Marker)

			valid := false
			if raw, ok := session.Read(req); ok {
				if claims, ok := cfg.Verifier.Verify(raw); ok {
					c.Set(ClaimsKey, claims)
					valid = true
				} else if cfg.Transport != nil {
					cfg.Transport.Clear(c)
				}
			}

			switch {
			case class == PathAuthPage && valid && !marked:
				return cfg.redirect(c, cfg.DashboardPath)
			case class == PathProtected && !valid && !marked:
				return cfg.redirect(c, cfg.LoginPath)
			case class == PathProtected && !valid:
				c.Response().Header().Set("Cache-Control", "no-store")
				return c.HTML(http.StatusUnauthorized, unauthorizedPage(cfg.LoginPath))
			}

			if marked {
				cfg.strip(c)
			}
			return next(c)
		}
	}
}

func (g GuardConfig) redirect(c echo.Context, target string) error {
	u := url.URL{Path: target, RawQuery: url.Values{g.Marker: {"1"}}.Encode()}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Redirect(http.StatusTemporaryRedirect, u.String())
}

// strip consumes the marker so it is not propagated past this request.
func (g GuardConfig) strip(c echo.Context) {
	req := c.Request()
	q := req.URL.Query()
	q.Del(g.Marker)
	req.URL.RawQuery = q.Encode()
	req.RequestURI = req.URL.RequestURI()
	c.Set(RedirectedKey, true)
}

func unauthorizedPage(login string) string {
	return `<!doctype html><html><head><title>Sign in required</title></head><body>` +
		`<h1>Sign in required</h1><p>Your session is missing or has expired.</p>` +
		`<p><a href="` + login + `">Log in</a></p></body></html>`
}
