// Package metrics exposes the platform's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "star_platform",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "star_platform",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "star_platform",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	pointsMinted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "star_platform",
			Subsystem: "ledger",
			Name:      "points_minted_total",
			Help:      "Total STAR points minted.",
		},
	)

	pointsBurned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "star_platform",
			Subsystem: "ledger",
			Name:      "points_burned_total",
			Help:      "Total STAR points removed from circulation.",
		},
	)

	referralRewards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "star_platform",
			Subsystem: "ledger",
			Name:      "referral_rewards_total",
			Help:      "Total STAR points credited to referrers.",
		},
	)

	participations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "star_platform",
			Subsystem: "ledger",
			Name:      "participations_total",
			Help:      "Total participation records created.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		pointsMinted,
		pointsBurned,
		referralRewards,
		participations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware collects request counts and latencies per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" || path == "/metrics" {
			c.Next()
			return
		}

		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		httpInFlight.Dec()
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordMint adds to the minted-points counter.
func RecordMint(points float64) {
	if points > 0 {
		pointsMinted.Add(points)
	}
}

// RecordReferralReward adds to the referrer-reward counter.
func RecordReferralReward(points float64) {
	if points > 0 {
		referralRewards.Add(points)
	}
}

// RecordParticipation tracks a participation and its burned share.
func RecordParticipation(burned float64) {
	participations.Inc()
	if burned > 0 {
		pointsBurned.Add(burned)
	}
}
