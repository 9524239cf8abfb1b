package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWithWriterTeesJSONToSink(t *testing.T) {
	var sink bytes.Buffer
	log, err := NewWithWriter("production", &sink)
	require.NoError(t, err)

	log.Info("category created", zap.String("slug", "electronics"))
	_ = log.Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(sink.Bytes()), &entry))
	assert.Equal(t, "category created", entry["msg"])
	assert.Equal(t, "electronics", entry["slug"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestRequestIDPropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = RequestIDFrom(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestForAnnotatesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	For(WithRequestID(context.Background(), "abc"), base).Info("hello")
	For(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
