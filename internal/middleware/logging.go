package middleware

import (
	"time"

	"code.cloudfoundry.org/lager/v3"
	"github.com/labstack/echo/v4"
)

// RequestLogger logs method, path, status and duration of every request.
// Form bodies are never logged.
func RequestLogger(logger lager.Logger) echo.MiddlewareFunc {
	logger = logger.Session("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}
			data := lager.Data{
				"method":   c.Request().Method,
				"path":     c.Request().URL.Path,
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
				"remote":   c.RealIP(),
			}
			if err != nil {
				logger.Error("request-failed", err, data)
				return nil
			}
			logger.Info("request", data)
			return nil
		}
	}
}
