package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

// Recorder holds the POS counters. A nil *Recorder records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	ordersCreated  *prometheus.CounterVec
	ordersVoided   prometheus.Counter
	orderFailures  *prometheus.CounterVec
	salesTotal     *prometheus.CounterVec
	ledgersClosed  prometheus.Counter
	cashVariance   prometheus.Histogram
	requestSeconds *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves from g
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Recorder {
	r := &Recorder{
		gatherer: g,
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders committed, by payment method.",
		}, []string{"payment_method"}),
		ordersVoided: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_voided_total",
			Help:      "Orders voided.",
		}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Order operations that failed, by operation and reason.",
		}, []string{"operation", "reason"}),
		salesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Order totals committed, by payment method.",
		}, []string{"payment_method"}),
		ledgersClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledgers_closed_total",
			Help:      "Daily ledgers closed.",
		}),
		cashVariance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_variance",
			Help:      "Counted minus expected drawer cash at close.",
			Buckets:   []float64{-500, -100, -50, -10, -1, 0, 1, 10, 50, 100, 500},
		}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		r.ordersCreated,
		r.ordersVoided,
		r.orderFailures,
		r.salesTotal,
		r.ledgersClosed,
		r.cashVariance,
		r.requestSeconds,
	)
	return r
}

func (r *Recorder) OrderCreated(method string, total float64) {
	if r == nil {
		return
	}
	r.ordersCreated.WithLabelValues(method).Inc()
	r.salesTotal.WithLabelValues(method).Add(total)
}

func (r *Recorder) OrderVoided() {
	if r == nil {
		return
	}
	r.ordersVoided.Inc()
}

func (r *Recorder) OrderFailed(operation, reason string) {
	if r == nil {
		return
	}
	r.orderFailures.WithLabelValues(operation, reason).Inc()
}

func (r *Recorder) LedgerClosed(variance float64) {
	if r == nil {
		return
	}
	r.ledgersClosed.Inc()
	r.cashVariance.Observe(variance)
}

// Middleware observes request latency per matched route
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requestSeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
