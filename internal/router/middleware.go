package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"studentrecords/internal/logger"
)

// contextLogger stores a logger tagged with the request id in the request context.
func contextLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			l := logger.L().With(logger.RequestID(rid))
			c.SetRequest(req.WithContext(logger.ToContext(req.Context(), l)))
			return next(c)
		}
	}
}

// requestLogger writes one access log entry per request. Errors are rendered
// here so the entry carries the final status.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.From(c.Request().Context()).Info("http request",
				logger.Method(v.Method),
				zap.String("uri", v.URI),
				logger.Status(v.Status),
				logger.Duration(v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("user_agent", v.UserAgent),
			)
			return nil
		},
	})
}
