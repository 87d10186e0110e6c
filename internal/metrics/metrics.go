package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts inbound HTTP requests.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "licensing_portal_requests_total",
		Help: "The total number of HTTP requests",
	})

	// ResponsesTotal counts responses by status code.
	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "licensing_portal_responses_total",
		Help: "The total number of responses by status code",
	}, []string{"status"})

	// RequestDuration observes request handling time.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "licensing_portal_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// LoginAttemptsTotal counts login attempts by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "licensing_portal_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	// RegistrationAttemptsTotal counts signup attempts by outcome.
	RegistrationAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "licensing_portal_registration_attempts_total",
		Help: "The total number of registration attempts",
	}, []string{"status"})

	// TokenRejectionsTotal counts rejected bearer credentials by reason.
	// Missing, forged and session-expired tokens are all 401s to the client
	// but are distinguished here.
	TokenRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "licensing_portal_token_rejections_total",
		Help: "The total number of rejected bearer tokens by reason",
	}, []string{"reason"})

	// ActiveSessions tracks the number of live sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "licensing_portal_active_sessions",
		Help: "The current number of live sessions",
	})
)
