package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg, reg)

	r.OrderCreated("cash", 120)
	r.OrderCreated("cash", 30)
	r.OrderCreated("split", 120)
	r.OrderVoided()
	r.LedgerClosed(-5)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.ordersCreated.WithLabelValues("cash")))
	assert.Equal(t, float64(150), testutil.ToFloat64(r.salesTotal.WithLabelValues("cash")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.ordersVoided))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.ledgersClosed))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.OrderCreated("cash", 1)
		r.OrderVoided()
		r.OrderFailed("create", "validation")
		r.LedgerClosed(0)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New()

	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(r.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pos_http_request_duration_seconds_count{method="GET",route="/health",status="200"} 1`)
}
