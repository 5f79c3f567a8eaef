package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/response"
)

// ErrorHandler renders errors that escape handlers: echo.HTTPErrors (unknown
// routes, bad methods, binder failures) and anything unexpected. API paths
// get the JSON envelope; page paths get HTML.
func ErrorHandler(log *slog.Logger, pages *Pages) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = http.StatusText(status)
			if s, ok := he.Message.(string); ok && status < 500 {
				msg = s
			} else if status < 500 && he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		} else {
			log.Error("unhandled error", "error", err, "method", c.Request().Method, "path", c.Request().URL.Path)
		}

		var werr error
		switch {
		case c.Request().Method == http.MethodHead:
			werr = c.NoContent(status)
		case isAPIPath(c.Request().URL.Path):
			werr = response.Error(c, status, msg)
		case status == http.StatusNotFound && pages != nil:
			werr = pages.NotFound(c)
		default:
			werr = c.HTML(status, "<!doctype html><html><body><h1>"+http.StatusText(status)+"</h1></body></html>")
		}
		if werr != nil {
			log.Error("writing error response", "error", werr)
		}
	}
}

func isAPIPath(p string) bool {
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/auth/") || p == "/api" || p == "/auth"
}
