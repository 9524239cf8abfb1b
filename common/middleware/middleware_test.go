package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
)

type fakeRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeRecorder) IsEnabled() bool { return true }

func (f *fakeRecorder) RecordCount(_ context.Context, name string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[name]++
	return nil
}

func (f *fakeRecorder) RecordLatency(_ context.Context, name string, _ time.Duration, _ map[string]string) error {
	return f.RecordCount(context.Background(), name, nil)
}

func (f *fakeRecorder) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[name]
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/ok")
	serve(r, http.MethodGet, "/missing")
	serve(r, http.MethodGet, "/boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/x").Code)
}

func TestRateLimiterSweepDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(rate.Inf, 1, 10*time.Millisecond)
	rl.GetLimiter("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rl.Sweep(ctx)

	assert.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.ips) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) {})

	w := serve(r, http.MethodGet, "/x")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(time.Second))

	var hasDeadline bool
	r.GET("/x", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
	})
	serve(r, http.MethodGet, "/x")
	assert.True(t, hasDeadline)
}

func TestMetricsMiddlewareRecordsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &fakeRecorder{counts: map[string]int{}}

	r := gin.New()
	r.Use(MetricsMiddleware(rec, "ecommerce-admin"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	serve(r, http.MethodGet, "/x")

	assert.Eventually(t, func() bool { return rec.count(awspkg.MetricHTTP4xx) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rec.count(awspkg.MetricHTTPRequests))
	assert.Equal(t, 0, rec.count(awspkg.MetricHTTP5xx))
}

func TestPrometheusMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.DELETE("/category/delete-category/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/category/delete-category/:id", http.MethodDelete, "200"))
	serve(r, http.MethodDelete, "/category/delete-category/abc")
	serve(r, http.MethodDelete, "/category/delete-category/def")
	after := testutil.ToFloat64(httpRequests.WithLabelValues("/category/delete-category/:id", http.MethodDelete, "200"))

	assert.Equal(t, 2.0, after-before)
}

func TestStatusCodeToRange(t *testing.T) {
	assert.Equal(t, "2xx", statusCodeToRange(201))
	assert.Equal(t, "3xx", statusCodeToRange(304))
	assert.Equal(t, "4xx", statusCodeToRange(409))
	assert.Equal(t, "5xx", statusCodeToRange(503))
	assert.Equal(t, "unknown", statusCodeToRange(100))
}
