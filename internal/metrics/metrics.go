package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spendly"

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)

	sweptRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "swept_records_total",
		Help:      "Expenses deleted by the retention sweep.",
	})

	sweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "sweep_failures_total",
		Help:      "Retention sweeps that returned an error.",
	})

	amendsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "expense",
		Name:      "amends_rejected_total",
		Help:      "Amends refused by the edit limit or a concurrent amend.",
	}, []string{"reason"})

	activeSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "active_subscriptions",
		Help:      "Open change watchers per topic.",
	}, []string{"topic"})
)

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	requestDuration.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

func RecordSweep(deleted int) {
	sweptRecords.Add(float64(deleted))
}

func RecordSweepFailure() {
	sweepFailures.Inc()
}

func RecordAmendRejected(reason string) {
	amendsRejected.WithLabelValues(reason).Inc()
}

func SubscriptionOpened(topic string) {
	activeSubscriptions.WithLabelValues(topic).Inc()
}

func SubscriptionClosed(topic string) {
	activeSubscriptions.WithLabelValues(topic).Dec()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
