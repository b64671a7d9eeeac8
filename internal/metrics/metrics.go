package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paddock_http_requests_total",
			Help: "Number of HTTP requests by path and status",
		},
		[]string{"path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "paddock_http_request_duration_seconds",
			Help: "Time taken to serve HTTP requests",
		},
	)

	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paddock_sessions_created_total",
			Help: "Number of training sessions created",
		},
	)

	OutboxDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paddock_outbox_deliveries_total",
			Help: "Outbox delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	LoginFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paddock_login_failures_total",
			Help: "Number of failed login attempts",
		},
	)
)

func Register() {
	prometheus.MustRegister(HTTPRequests, HTTPRequestDuration, SessionsCreated,
		OutboxDeliveries, LoginFailures)
}
