package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// RequestLogger logs every request with method, path, status and duration.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			duration := time.Since(start)
			status := c.Response().Status

			logFn := log.Info
			if status >= 500 {
				logFn = log.Error
			} else if status >= 400 {
				logFn = log.Warn
			}

			logFn("Request handled",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration", duration.Round(time.Millisecond),
				"ip", c.RealIP())

			return err
		}
	}
}
