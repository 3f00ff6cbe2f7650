package dispatch

import "github.com/prometheus/client_golang/prometheus"

const (
	ModeBeacon = "beacon"
	ModeFetch  = "fetch"
)

type metrics struct {
	attempts *prometheus.CounterVec
	failures *prometheus.CounterVec
	bytes    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browsetrace",
			Name:      "dispatch_attempts_total",
			Help:      "Event transmissions attempted, by delivery mode",
		}, []string{"mode"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browsetrace",
			Name:      "dispatch_failures_total",
			Help:      "Event transmissions that failed or were refused, by delivery mode",
		}, []string{"mode"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "browsetrace",
			Name:      "dispatch_bytes_total",
			Help:      "Serialized event bytes handed to a transport",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.failures, m.bytes)
	}
	return m
}
