package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/domain/labels"
)

func TestObserveGenerate(t *testing.T) {
	m := New()

	m.ObserveGenerate(labels.ModeRandom, 10, 7)
	m.ObserveGenerate(labels.ModeRandom, 5, 5)
	m.ObserveGenerate(labels.ModeSequential, 2, 2)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.generated.WithLabelValues("random")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.shortfall.WithLabelValues("random")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.generated.WithLabelValues("sequential")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.shortfall.WithLabelValues("sequential")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/labels/:qrcode", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/labels/SOC-0001", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/labels/:qrcode", "GET", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "linksoc_http_requests_total")
}
