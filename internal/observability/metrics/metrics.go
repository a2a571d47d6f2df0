package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "easyshifthq_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "easyshifthq_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	invitationOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "easyshifthq_invitation_operations_total",
		Help: "Invitation lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	timeOffDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "easyshifthq_time_off_decisions_total",
		Help: "Time-off requests approved or denied",
	}, []string{"decision"})

	notificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "easyshifthq_notifications_total",
		Help: "Outbox notification deliveries by kind and result",
	}, []string{"kind", "result"})

	outboxBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "easyshifthq_outbox_backlog",
		Help: "Notifications waiting for delivery",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func ObserveInvitation(operation string, err error) {
	invitationOperations.WithLabelValues(operation, result(err)).Inc()
}

func ObserveTimeOffDecision(decision string) {
	timeOffDecisions.WithLabelValues(decision).Inc()
}

func ObserveNotification(kind string, err error) {
	notificationsDelivered.WithLabelValues(kind, result(err)).Inc()
}

// SetOutboxBacklog sets the backlog gauge to a specific count.
func SetOutboxBacklog(count int64) {
	if count < 0 {
		count = 0
	}
	outboxBacklog.Set(float64(count))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
