package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/shop-service/internal/config"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics("shop")

	m.RecordRequest("/api/products/:id", http.MethodGet, 200, 20*time.Millisecond)
	m.RecordRequest("/api/products/:id", http.MethodGet, 200, 10*time.Millisecond)
	m.RecordError("/api/products/:id", http.MethodDelete, "FORBIDDEN")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/api/products/:id", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/api/products/:id", http.MethodDelete, "FORBIDDEN")))

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
	nilMetrics.RecordError("/", http.MethodGet, "X")
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics("shop")

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/things/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "/things/:id", fields["route"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestCount.WithLabelValues("/things/:id", http.MethodGet, "418")))
}

func TestRequestLoggerGeneratesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"}, config.AppConfig{Name: "shop", Env: "test"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestLoggerConfigFormats(t *testing.T) {
	app := config.AppConfig{Name: "shop", Env: "production", Version: "1.2.0"}

	cfg, err := loggerConfig(config.LoggerConfig{Level: "DEBUG"}, app)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, zap.DebugLevel, cfg.Level.Level())
	assert.False(t, cfg.Development)
	assert.Equal(t, "production", cfg.InitialFields["env"])

	cfg, err = loggerConfig(config.LoggerConfig{Format: " Console "}, app)
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Encoding)

	_, err = NewLogger(config.LoggerConfig{Format: "xml"}, app)
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestRequestLoggerMethodLabelOutlivesRequest(t *testing.T) {
	metrics := NewMetrics("shop")
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.All("/things/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/things/1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for i := 0; i < 20; i++ {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/2", nil), -1)
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestCount.WithLabelValues("/things/:id", http.MethodPut, "204")))
	assert.Equal(t, 20.0, testutil.ToFloat64(metrics.requestCount.WithLabelValues("/things/:id", http.MethodGet, "204")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.requestCount))
}
