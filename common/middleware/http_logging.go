package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ixtiyorSaitov/e-commerce-admin/common/logger"
)

// adminEmailKey mirrors the key the admin auth middleware sets.
const adminEmailKey = "admin_email"

// RequestLogger writes an access line per request, tagged with the request id
// and the acting admin when known.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		code := c.Writer.Status()
		line := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", routeOf(c)),
			zap.Int("status", code),
			zap.Int64("took_ms", time.Since(began).Milliseconds()),
			zap.String("ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			line = append(line, zap.String("query", q))
		}
		if id := c.GetString(logger.RequestIDKey); id != "" {
			line = append(line, zap.String("request_id", id))
		}
		if who := c.GetString(adminEmailKey); who != "" {
			line = append(line, zap.String("admin", who))
		}
		if len(c.Errors) > 0 {
			line = append(line, zap.String("errors", c.Errors.String()))
		}

		if ce := log.Check(levelFor(code), "request served"); ce != nil {
			ce.Write(line...)
		}
	}
}

func levelFor(code int) zapcore.Level {
	if code >= 500 {
		return zapcore.ErrorLevel
	}
	if code >= 400 {
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}
