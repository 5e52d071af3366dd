package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(t.Context()) })

	r := gin.New()
	r.Use(HTTPMetrics(mp.Meter("http.server"), zap.NewNop()))
	r.GET("/api/v1/audits/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/audits/abc", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	var total *metricdata.Sum[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "http_server_request_total" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				total = &sum
			}
		}
	}
	require.NotNil(t, total)

	byRoute := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value("route")
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(3), byRoute["/api/v1/audits/:id"])
	assert.Equal(t, int64(1), byRoute["unmatched"])
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, nil))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
