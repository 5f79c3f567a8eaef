package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/middleware"
	"github.com/iliyamo/session-auth/internal/model"
	"github.com/iliyamo/session-auth/internal/utils"
)

// ProfileReader loads the signed-in user for display.
type ProfileReader interface {
	Profile(ctx context.Context, claims *utils.SessionClaims) (model.PublicUser, error)
}

// Pages serves placeholder HTML for the site's screens. The real UI is built
// elsewhere; these exist so the Route Guard has concrete targets. Users is
// optional; without it the profile page shows the token's claims.
type Pages struct {
	Users ProfileReader
}

type pageData struct {
	Title      string
	Heading    string
	Body       string
	User       string
	Redirected bool
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a>{{if .User}} <a href="/dashboard">Dashboard</a> <a href="/profile">Profile</a>{{else}} <a href="/login">Log in</a> <a href="/register">Register</a>{{end}}</nav>
{{if .Redirected}}<p class="notice">You were redirected here.</p>{{end}}
<h1>{{.Heading}}</h1>
{{if .User}}<p>Signed in as {{.User}}.</p>{{end}}
<p>{{.Body}}</p>
</body>
</html>
`))

func (p *Pages) render(c echo.Context, status int, d pageData) error {
	if cl := middleware.ClaimsFrom(c); cl != nil {
		d.User = cl.Name
	}
	d.Redirected, _ = c.Get(middleware.RedirectedKey).(bool)

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, d); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func (p *Pages) Home(c echo.Context) error {
	return p.render(c, http.StatusOK, pageData{Title: "Home", Heading: "Welcome", Body: "Sign up or log in to continue."})
}

func (p *Pages) About(c echo.Context) error {
	return p.render(c, http.StatusOK, pageData{Title: "About", Heading: "About", Body: "Cookie-based session authentication."})
}

func (p *Pages) Login(c echo.Context) error {
	return p.render(c, http.StatusOK, pageData{Title: "Log in", Heading: "Log in", Body: "POST your email and password to /auth/login."})
}

func (p *Pages) Register(c echo.Context) error {
	return p.render(c, http.StatusOK, pageData{Title: "Register", Heading: "Create an account", Body: "POST your name, email and password to /auth/register."})
}

func (p *Pages) Dashboard(c echo.Context) error {
	return p.render(c, http.StatusOK, pageData{Title: "Dashboard", Heading: "Dashboard", Body: "You are signed in."})
}

func (p *Pages) Profile(c echo.Context) error {
	d := pageData{Title: "Profile", Heading: "Profile"}
	cl := middleware.ClaimsFrom(c)
	if cl != nil {
		d.Body = cl.Email
	}
	if p.Users != nil && cl != nil {
		if u, err := p.Users.Profile(c.Request().Context(), cl); err == nil {
			d.Heading = u.Name
			d.Body = u.Email
		}
	}
	return p.render(c, http.StatusOK, d)
}

// NotFound renders the HTML 404 page.
func (p *Pages) NotFound(c echo.Context) error {
	return p.render(c, http.StatusNotFound, pageData{Title: "Not found", Heading: "404", Body: "This page could not be found."})
}

// Admin is the admin-only landing page.
func (p *Pages) Admin(c echo.Context) error {
	return p.render(c, http.StatusOK, pageData{Title: "Admin", Heading: "Administration", Body: "Admin tools live here."})
}
