package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-auth/internal/response"
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the process is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger checks that the credential store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck answers GET /api/test: it verifies the store connection and
// reports the result in the API envelope.
func StoreCheck(p Pinger, log *slog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			log.ErrorContext(ctx, "store check failed", "error", err)
			return response.Error(c, http.StatusInternalServerError, "Failed to connect to the database")
		}
		return response.Success(c, echo.Map{"message": "API is working"}, "Backend connection successful")
	}
}
