package install

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outline",
			Subsystem: "install",
			Name:      "transitions_total",
			Help:      "Total number of install state transitions by provider and target state",
		},
		[]string{"provider", "state"},
	)

	installDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "outline",
			Subsystem: "install",
			Name:      "duration_seconds",
			Help:      "Time from monitor start to a terminal install state",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8), // 5s to ~10min
		},
		[]string{"provider", "result"},
	)

	fetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outline",
			Subsystem: "install",
			Name:      "attribute_fetch_failures_total",
			Help:      "Total number of failed attribute fetches by provider and strategy",
		},
		[]string{"provider", "strategy"},
	)
)

func init() {
	prometheus.MustRegister(
		transitionsTotal,
		installDuration,
		fetchFailuresTotal,
	)
}

func recordTransitionMetric(provider string, state State) {
	transitionsTotal.WithLabelValues(provider, state.String()).Inc()
}

func recordDurationMetric(provider string, state State, seconds float64) {
	installDuration.WithLabelValues(provider, state.String()).Observe(seconds)
}

func recordFetchFailureMetric(provider, strategy string) {
	fetchFailuresTotal.WithLabelValues(provider, strategy).Inc()
}
