package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ripple_blocks_reader"

type metrics struct {
	blocksRead        *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	readRetries       prometheus.Counter
	readDuration      prometheus.Histogram
	lastBlock         prometheus.Gauge
	lastIrreversible  prometheus.Gauge
	irreversibleRetry prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		blocksRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "scan", Name: "blocks_total",
			Help: "counters of read blocks by result, 'found' or 'not_found'",
		}, []string{"result"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "scan", Name: "transactions_total",
			Help: "counters of read transactions by status, 'executed' or 'failed'",
		}, []string{"status"}),
		readRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "scan", Name: "read_retries_total",
			Help: "count of block read retries after integration errors",
		}),
		readDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "scan", Name: "read_block_duration_seconds",
			Help:    "block read durations, including node calls and decoding",
			Buckets: prometheus.DefBuckets,
		}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "scan", Name: "last_block",
			Help: "number of the latest read and stored block",
		}),
		lastIrreversible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "irreversible", Name: "last_block",
			Help: "number of the latest irreversible block",
		}),
		irreversibleRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "irreversible", Name: "retries_total",
			Help: "count of polls the node had no validated ledger",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(
			m.blocksRead,
			m.transactions,
			m.readRetries,
			m.readDuration,
			m.lastBlock,
			m.lastIrreversible,
			m.irreversibleRetry,
		)
	}
	return m
}
