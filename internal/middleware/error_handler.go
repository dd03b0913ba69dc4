package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"brandPulse/pkg/logger"
	jsonres "brandPulse/pkg/response"
)

// ErrorHandler is the echo-level fallback for errors no handler turned
// into a response itself.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("request_failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	_ = c.JSON(code, jsonres.Error(http.StatusText(code), message, nil))
}
