package core

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters a caller registers against its own
// prometheus.Registerer. The core never starts an HTTP listener itself —
// it only exposes the collectors for a host process to serve however it
// likes.
type Metrics struct {
	AdmissionOutcomes *prometheus.CounterVec
	ReorgFlips        prometheus.Counter
	ReorgChannels     prometheus.Counter
}

// NewMetrics constructs unregistered collectors with the standard
// "channelledger_" namespace.
func NewMetrics() *Metrics {
	return &Metrics{
		AdmissionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "channelledger",
			Subsystem: "admission",
			Name:      "outcomes_total",
			Help:      "State-update admission outcomes by classification.",
		}, []string{"outcome"}),
		ReorgFlips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channelledger",
			Subsystem: "reorg",
			Name:      "event_flips_total",
			Help:      "Number of channel_events rows whose block_is_valid flipped.",
		}),
		ReorgChannels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channelledger",
			Subsystem: "reorg",
			Name:      "channels_touched_total",
			Help:      "Number of distinct channels touched by set_recent_blocks calls.",
		}),
	}
}

// MustRegister registers every collector against reg, panicking on a
// duplicate-registration error (mirrors prometheus.MustRegister).
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.AdmissionOutcomes, m.ReorgFlips, m.ReorgChannels)
}
