package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stacklet/stacklet-service/internal/errs"
	"github.com/stacklet/stacklet-service/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	APIKeyHeader        = "X-API-Key"
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

// APIKeyAuth authenticates requests with the shared secret, carried either
// in the X-API-Key header or as a bearer token.
func APIKeyAuth(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				authorization := c.Request().Header.Get(AuthorizationHeader)
				apiKey = strings.TrimPrefix(authorization, bearer)
			}
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, errs.ErrorResponse{
					Error:   "Unauthorized",
					Message: "Valid API key required. Use X-API-Key header or Authorization: Bearer token",
				})
			}
			return next(c)
		}
	}
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig() middleware.RequestLoggerConfig {
	cfg := logger.Log{LogLevel: zapcore.DebugLevel, Sink: ""}
	log := logger.NewLogger(cfg, "echo")
	c := middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
	return c
}
