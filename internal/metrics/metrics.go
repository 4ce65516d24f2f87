package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login holds the collectors updated once per login attempt.
type Login struct {
	// Counts login attempts by outcome
	// (success | invalid_credentials | malformed_request | store_unavailable).
	Attempts *prometheus.CounterVec

	// Measures time spent deciding a login attempt.
	Duration *prometheus.HistogramVec

	// Counts successful logins whose stored hash is below the configured cost.
	WeakHashes prometheus.Counter
}

// NewLogin registers the login collectors on reg.  Passing a fresh
// registry per test keeps them independent.
func NewLogin(reg prometheus.Registerer) *Login {
	f := promauto.With(reg)
	return &Login{
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "login_duration_seconds",
				Help:    "Duration of login attempts in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms → ~8s
			},
			[]string{"outcome"},
		),
		WeakHashes: f.NewCounter(prometheus.CounterOpts{
			Name: "login_weak_hash_total",
			Help: "Successful logins whose stored hash uses a lower cost than configured.",
		}),
	}
}

// Observe records one finished attempt.
func (m *Login) Observe(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(outcome).Inc()
	m.Duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
