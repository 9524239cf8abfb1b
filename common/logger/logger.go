package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "request_id"

// RequestIDHeader is read from, and echoed back on, every request
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// New builds the process logger for env
func New(env string) (*zap.Logger, error) {
	return NewWithWriter(env, nil)
}

// NewWithWriter builds the process logger for env and, when sink is non-nil,
// tees JSON-encoded entries into it (CloudWatch Logs in production).
func NewWithWriter(env string, sink io.Writer) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if sink == nil {
		log, err := config.Build()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		return log, nil
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(config.EncoderConfig), zapcore.AddSync(os.Stdout), level)

	// the sink always gets JSON, colour codes make no sense there
	sinkEncoder := config.EncoderConfig
	sinkEncoder.EncodeLevel = zapcore.CapitalLevelEncoder
	sinkCore := zapcore.NewCore(zapcore.NewJSONEncoder(sinkEncoder), zapcore.AddSync(sink), level)

	return zap.New(zapcore.NewTee(consoleCore, sinkCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// RequestID assigns every request an ID, taken from X-Request-ID when the
// caller supplies one, and makes it available to handlers and services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// WithRequestID returns a copy of ctx carrying requestID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFrom extracts the request ID from ctx, or "" when there is none
func RequestIDFrom(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.GetString(RequestIDKey)
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// For returns base annotated with the request ID found in ctx
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.L()
	}
	if id := RequestIDFrom(ctx); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}
