// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gophmail_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gophmail_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gophmail_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	Signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gophmail_signups_total",
			Help: "Signup attempts by result",
		},
		[]string{"result"},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gophmail_messages_sent_total",
			Help: "Messages accepted for delivery",
		},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gophmail_messages_deleted_total",
			Help: "Messages deleted by their owners",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gophmail_active_sessions",
			Help: "Sessions currently held in the session table",
		},
	)
)
