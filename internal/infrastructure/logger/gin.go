package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys shared with the HTTP middleware
const (
	GinRequestIDKey = "request_id"
	GinLoggerKey    = "logger"
)

// GinMiddleware writes one access log line per request. Handlers and later
// middleware reach the request logger through GetGinLogger or FromContext;
// fields they add (actor_id from the actor middleware) appear on the access
// line too.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := base.With(zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path))
		ctx := c.Request.Context()
		if id := c.GetString(GinRequestIDKey); id != "" {
			ctx, reqLogger = WithRequestID(ctx, reqLogger, id)
		} else {
			ctx = WithContext(ctx, reqLogger)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(GinLoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		access := GetGinLogger(c)
		switch {
		case status >= http.StatusInternalServerError:
			access.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			access.Warn("HTTP Request", fields...)
		default:
			access.Info("HTTP Request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 in the standard error envelope.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestID := c.GetString(GinRequestIDKey)
			base.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			body := gin.H{"code": "INTERNAL_ERROR", "message": "Internal server error"}
			if requestID != "" {
				body["request_id"] = requestID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": body})
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger, or a no-op logger outside
// GinMiddleware.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(GinLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
