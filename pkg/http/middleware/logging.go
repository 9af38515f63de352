package middleware

import (
	"time"

	"StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs every request at debug level. Failures and slow calls
// are reported by Metrics.
func RequestLogging(l *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			l.Debug("http request",
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.String("remote", c.RealIP()),
				logger.Int("status", c.Response().Status),
				logger.Duration("duration_ms", time.Since(start)),
			)
			return nil
		}
	}
}
