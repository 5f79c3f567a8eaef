package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/session-auth/internal/handler"
	"github.com/iliyamo/session-auth/internal/middleware"
	"github.com/iliyamo/session-auth/internal/session"
)

// Deps carries everything the routes need.
type Deps struct {
	Auth     *handler.AuthHandler
	Pages    *handler.Pages
	SEO      *handler.SEO
	Store    handler.Pinger
	Verifier middleware.TokenVerifier
	Sessions *session.Transport
	Log      *slog.Logger
}

// Setup installs the global middleware chain and the error handler.
func Setup(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log, d.Pages)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
}

// RegisterRoutes registers probes, robots and sitemap. None of them need a
// session.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/test", handler.StoreCheck(d.Store, d.Log))
	e.GET("/robots.txt", d.SEO.Robots)
	e.GET("/sitemap.xml", d.SEO.Sitemap)
}

// RegisterAuth registers the auth API under both /auth and /api/auth. All
// auth responses are marked no-store. /me requires a valid session; logout
// works with or without one.
func RegisterAuth(e *echo.Echo, d Deps) {
	for _, prefix := range []string{"/auth", "/api/auth"} {
		g := e.Group(prefix, middleware.NoStore())
		g.POST("/register", d.Auth.Register)
		g.POST("/login", d.Auth.Login)
		g.POST("/logout", d.Auth.Logout, middleware.OptionalSession(d.Verifier))
		g.GET("/me", d.Auth.Me, middleware.SessionAuth(d.Verifier))
	}
}

// RegisterPages registers the HTML pages behind the Route Guard. The guard
// is attached per route so unknown paths still fall through to 404.
func RegisterPages(e *echo.Echo, d Deps) {
	guard := middleware.RouteGuard(middleware.DefaultGuardConfig(d.Verifier, d.Sessions))
	private := []echo.MiddlewareFunc{guard, middleware.NoStore()}

	optional := middleware.OptionalSession(d.Verifier)

	e.GET("/", d.Pages.Home, guard, optional)
	e.GET("/about", d.Pages.About, guard, optional)
	e.GET("/login", d.Pages.Login, guard)
	e.GET("/register", d.Pages.Register, guard)
	e.GET("/dashboard", d.Pages.Dashboard, private...)
	e.GET("/profile", d.Pages.Profile, private...)
	e.GET("/admin", d.Pages.Admin, append(private, middleware.RequireAdmin())...)
}

// New builds a fully wired Echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	Setup(e, d)
	RegisterRoutes(e, d)
	RegisterAuth(e, d)
	RegisterPages(e, d)
	return e
}
