package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote VPN server metrics
var (
	// RemoteRequestsTotal tracks requests sent to remote servers by method and outcome
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_requests_total",
			Help: "Total requests sent to remote VPN servers by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// RemoteRequestDuration tracks remote request latency in seconds
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_request_duration_seconds",
			Help:    "Remote VPN server request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)
)

// Orchestration metrics
var (
	// AccountActionsTotal tracks lifecycle actions by kind and result
	AccountActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_actions_total",
			Help: "Total account lifecycle actions by action and result",
		},
		[]string{"action", "result"},
	)

	// AccountsAdoptedTotal tracks accounts found remotely and recorded locally
	AccountsAdoptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_adopted_total",
			Help: "Total remote accounts adopted into the local store",
		},
	)
)

// HTTP API metrics
var (
	// HTTPRequestsTotal tracks API requests by method, route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP API requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome label values
const (
	OutcomeSuccess   = "success"
	OutcomeRemote    = "remote_error"
	OutcomeTransport = "transport_error"
)
