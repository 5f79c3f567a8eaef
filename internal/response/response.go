// Package response writes the JSON envelope shared by every API endpoint:
// {success, message, data, errors}.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every API response. Data is always present
// (null on failure) so clients can rely on its key.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
	Errors  any    `json:"errors,omitempty"`
}

// Success writes a 200 envelope carrying data.
func Success(c echo.Context, data any, message string) error {
	if message == "" {
		message = "Success"
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope with the given status.
func Error(c echo.Context, status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// Unauthorized writes a 401 envelope.
func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}
