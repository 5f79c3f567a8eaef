package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/middleware"
	"github.com/iliyamo/session-auth/internal/response"
	"github.com/iliyamo/session-auth/internal/service"
	"github.com/iliyamo/session-auth/internal/session"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Svc      *service.AuthService
	Sessions *session.Transport
}

func NewAuthHandler(svc *service.AuthService, sessions *session.Transport) *AuthHandler {
	return &AuthHandler{Svc: svc, Sessions: sessions}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const msgInvalidBody = "Invalid request format"

// Register: create the account, start a session and return the public user.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, msgInvalidBody)
	}

	sess, err := h.Svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, c.RealIP())
	if err != nil {
		return fail(c, err)
	}
	h.Sessions.Write(c, sess.Token.Token)
	return response.Success(c, sess.User, "User registered successfully")
}

// Login: verify credentials, start a session and return the public user.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, msgInvalidBody)
	}

	sess, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		return fail(c, err)
	}
	h.Sessions.Write(c, sess.Token.Token)
	return response.Success(c, sess.User, "Login successful")
}

// Logout: clear the cookie. Always 200; the token itself stays valid until
// its expiry if it was copied elsewhere.
func (h *AuthHandler) Logout(c echo.Context) error {
	_ = h.Svc.Logout(c.Request().Context(), middleware.ClaimsFrom(c), c.RealIP())
	h.Sessions.Clear(c)
	return response.Success(c, nil, "Logged out successfully")
}

// Me: return the current record of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.Svc.Me(c.Request().Context(), middleware.ClaimsFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, u, "")
}

// fail renders a service error. Only the client-safe message is exposed.
func fail(c echo.Context, err error) error {
	kind := service.KindOf(err)
	msg := service.MsgInternal
	var ae *service.AuthError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	return response.Error(c, kind.Status(), msg)
}
