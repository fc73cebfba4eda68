package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quizvote"

var (
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	dbBuckets   = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2}
)

// Prom holds the service's collectors. All of them register on the registry given
// to NewProm, so tests can use a fresh registry each.
type Prom struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	dbLatency *prometheus.HistogramVec
	dbErrors  *prometheus.CounterVec

	votes        *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	f := promauto.With(reg)

	return &Prom{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency.", Buckets: httpBuckets,
		}, []string{"method", "route"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Requests currently being served.",
		}),
		dbLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "db", Name: "query_duration_seconds",
			Help: "Store operation latency by logical op.", Buckets: dbBuckets,
		}, []string{"op", "status"}),
		dbErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "db", Name: "errors_total",
			Help: "Store operation failures by class.",
		}, []string{"op", "class"}),
		votes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "votes_total",
			Help: "Vote submissions by outcome.",
		}, []string{"outcome"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "results_cache", Name: "lookups_total",
			Help: "Results cache lookups by result.",
		}, []string{"result"}),
	}
}

// ObserveVote counts one submission: recorded, already_voted or error.
func (p *Prom) ObserveVote(outcome string) {
	p.votes.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts one results cache lookup: hit, miss or error.
func (p *Prom) ObserveCacheLookup(result string) {
	p.cacheLookups.WithLabelValues(result).Inc()
}

// Middleware records every request under its route template, or "unmatched" for 404s.
func (p *Prom) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p.httpInFlight.Inc()
		start := time.Now()

		c.Next()

		p.httpInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		p.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		p.httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
