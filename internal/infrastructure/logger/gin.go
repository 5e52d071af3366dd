package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Gin context keys written by the request id and auth middleware
const (
	GinRequestIDKey = "request_id"
	GinUserIDKey    = "user_id"
)

// GinMiddleware puts a request logger on the request context and writes one
// access line per request once the handlers are done.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		reqLog := base.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))
		if id := c.GetString(GinRequestIDKey); id != "" {
			reqLog = reqLog.With(zap.String("request_id", id))
		}
		c.Request = req.WithContext(WithContext(req.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		ce := reqLog.Check(accessLevel(status), "HTTP request")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if userID := c.GetString(GinUserIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		ce.Write(fields...)
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery turns a handler panic into a 500 and logs it with the stack.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := append(Fields(c.Request.Context()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			base.Error("Panic recovered", fields...)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}
