package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quoteflow"

// Metrics exposes application-level collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	quotationsCreated  *prometheus.CounterVec
	documentsRendered  *prometheus.CounterVec
	fanOutFailures     *prometheus.CounterVec
	shareLinksBuilt    *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// New registers the collectors with reg. Collectors that are already
// registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		quotationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_saved_total",
			Help:      "Quotations persisted, by operation.",
		}, []string{"operation"}),
		documentsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Seller documents rendered, by style.",
		}, []string{"style"}),
		fanOutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_failures_total",
			Help:      "Failed seller fan-out runs, by reason.",
		}, []string{"reason"}),
		shareLinksBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_links_total",
			Help:      "Messaging links built, by whether a recipient was set.",
		}, []string{"recipient"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		httpRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
	}

	var err error
	if m.quotationsCreated, err = registerCounter(reg, m.quotationsCreated); err != nil {
		return nil, err
	}
	if m.documentsRendered, err = registerCounter(reg, m.documentsRendered); err != nil {
		return nil, err
	}
	if m.fanOutFailures, err = registerCounter(reg, m.fanOutFailures); err != nil {
		return nil, err
	}
	if m.shareLinksBuilt, err = registerCounter(reg, m.shareLinksBuilt); err != nil {
		return nil, err
	}
	if m.httpRequests, err = registerCounter(reg, m.httpRequests); err != nil {
		return nil, err
	}
	if err := reg.Register(m.httpRequestLatency); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register histogram: %w", err)
		}
		if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
			m.httpRequestLatency = existing
		}
	}
	return m, nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register counter: %w", err)
		}
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return c, nil
}

func (m *Metrics) QuotationSaved(operation string) {
	if m == nil {
		return
	}
	m.quotationsCreated.WithLabelValues(operation).Inc()
}

func (m *Metrics) DocumentRendered(style string) {
	if m == nil {
		return
	}
	m.documentsRendered.WithLabelValues(style).Inc()
}

func (m *Metrics) FanOutFailed(reason string) {
	if m == nil {
		return
	}
	m.fanOutFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ShareLinkBuilt(hasRecipient bool) {
	if m == nil {
		return
	}
	label := "none"
	if hasRecipient {
		label = "phone"
	}
	m.shareLinksBuilt.WithLabelValues(label).Inc()
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestLatency.WithLabelValues(method, route).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	}
}
