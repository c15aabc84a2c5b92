// Package metrics holds the process's Prometheus collectors, exposed
// read-only at GET /metrics alongside the tabulated endpoints (an
// addition, not a replacement of any endpoint's shape).
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Set struct {
	BytesReplicated   *prometheus.CounterVec
	TransferDuration  *prometheus.HistogramVec
	TransfersInFlight prometheus.Gauge
}

func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		BytesReplicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brig_bytes_replicated_total",
			Help: "Total bytes replicated per dataset.",
		}, []string{"dataset"}),
		TransferDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brig_transfer_duration_seconds",
			Help:    "Transfer duration by dataset and result.",
			Buckets: prometheus.DefBuckets,
		}, []string{"dataset", "result"}),
		TransfersInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brig_transfers_in_flight",
			Help: "Number of transfers currently in the progress registry.",
		}),
	}
	reg.MustRegister(s.BytesReplicated, s.TransferDuration, s.TransfersInFlight)
	return s
}
