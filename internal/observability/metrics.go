package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tracetrade_wallet"

var (
	registerOnce sync.Once

	initAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "init_attempts_total",
			Help:      "Bridge initialization attempts by result.",
		},
		[]string{"attempt", "result"},
	)
	recoveryRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "runs_total",
			Help:      "Storage recovery runs by tier.",
		},
		[]string{"tier"},
	)
	recoveryDeletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "deletions_total",
			Help:      "Storage recovery deletions by tier and result.",
		},
		[]string{"tier", "result"},
	)
	pairingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "outcomes_total",
			Help:      "Pairing outcomes by source and result.",
		},
		[]string{"source", "result"},
	)
	bridgeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "events_total",
			Help:      "Bridge events consumed by kind.",
		},
		[]string{"kind"},
	)
	transactionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transactions",
			Name:      "outcomes_total",
			Help:      "Dispatched transactions by outcome.",
		},
		[]string{"outcome"},
	)
	connectionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "paired",
			Help:      "1 while a wallet session is paired.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			initAttempts,
			recoveryRuns,
			recoveryDeletions,
			pairingOutcomes,
			bridgeEvents,
			transactionOutcomes,
			connectionState,
		)
	})
}

func RecordInitAttempt(attempt int, success bool) {
	RegisterMetrics()
	result := "failure"
	if success {
		result = "success"
	}
	initAttempts.WithLabelValues(strconv.Itoa(attempt), result).Inc()
}

func RecordRecovery(tier, removed, failed int) {
	RegisterMetrics()
	tierLabel := strconv.Itoa(tier)
	recoveryRuns.WithLabelValues(tierLabel).Inc()
	recoveryDeletions.WithLabelValues(tierLabel, "removed").Add(float64(removed))
	recoveryDeletions.WithLabelValues(tierLabel, "failed").Add(float64(failed))
}

func RecordPairing(source, result string) {
	RegisterMetrics()
	pairingOutcomes.WithLabelValues(source, result).Inc()
}

func RecordBridgeEvent(kind string) {
	RegisterMetrics()
	bridgeEvents.WithLabelValues(kind).Inc()
}

func RecordTransaction(outcome string) {
	RegisterMetrics()
	transactionOutcomes.WithLabelValues(outcome).Inc()
}

func SetPaired(paired bool) {
	RegisterMetrics()
	if paired {
		connectionState.Set(1)
		return
	}
	connectionState.Set(0)
}
