// Package observability — счётчики prometheus для сокет-сессии.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// исходы попытки авторизации
const (
	AuthSent         = "sent"
	AuthUnauthorized = "unauthorized"
	AuthOK           = "ok"
	AuthFailed       = "failed"
)

// исходы повторов
const (
	RetryScheduled = "scheduled"
	RetryRun       = "run"
	RetryStale     = "stale"
	RetryUnknown   = "unknown"
)

var (
	registerOnce sync.Once

	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screepsws",
			Subsystem: "socket",
			Name:      "frames_total",
			Help:      "Inbound SockJS frames by kind.",
		},
		[]string{"kind"},
	)
	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screepsws",
			Subsystem: "socket",
			Name:      "auth_total",
			Help:      "Socket authentication events by outcome.",
		},
		[]string{"outcome"},
	)
	retries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screepsws",
			Subsystem: "socket",
			Name:      "retries_total",
			Help:      "Scheduled recovery actions by fail state and outcome.",
		},
		[]string{"state", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesReceived, authAttempts, retries)
	})
}

func RecordFrame(kind string) {
	RegisterMetrics()
	framesReceived.WithLabelValues(kind).Inc()
}

func RecordAuth(outcome string) {
	RegisterMetrics()
	authAttempts.WithLabelValues(outcome).Inc()
}

func RecordRetry(state, outcome string) {
	RegisterMetrics()
	retries.WithLabelValues(state, outcome).Inc()
}

// Handler — /metrics для CLI.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
