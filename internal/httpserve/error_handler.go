package httpserve

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/httpserve/handlers"
)

// errorHandler renders every error echo surfaces (missing params, unknown
// routes, panics recovered by the middleware) with the same JSON envelope
// the handlers use for upstream failures.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	}

	if err := c.JSON(code, handlers.ErrorResponse{Error: message}); err != nil {
		log.Error("Failed to send error response", "error", err, "statusCode", code)
	}
}
