package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "genaid",
			Subsystem: "bridge",
			Name:      "calls_total",
			Help:      "Total bridge calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "genaid",
			Subsystem: "bridge",
			Name:      "call_duration_seconds",
			Help:      "Time from submission to completion of queued bridge calls",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300, 1800},
		},
		[]string{"op"},
	)

	laneDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "genaid",
			Subsystem: "lane",
			Name:      "queue_depth",
			Help:      "Queued plus running work items on the worker lane",
		},
	)
)

func init() {
	prometheus.MustRegister(callsTotal, callDuration, laneDepth)
}

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeInvalid  = "invalid"
	outcomeRejected = "rejected"
)

func observeCall(op, outcome string) { callsTotal.WithLabelValues(op, outcome).Inc() }

func observeDone(op string, submitted time.Time, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	observeCall(op, outcome)
	callDuration.WithLabelValues(op).Observe(time.Since(submitted).Seconds())
}
