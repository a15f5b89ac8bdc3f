package metrics

import (
	"github.com/mikey/mail-ingress/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mail_ingress"

// StatsSource exposes the mail handler counters
type StatsSource interface {
	Stats() core.Stats
}

// Metrics holds the collectors served on /metrics
type Metrics struct {
	Received *prometheus.CounterVec
	Rejected *prometheus.CounterVec
	Registry *prometheus.Registry
}

// New creates a registry with the ingress counters and the handler counters
// read from stats at scrape time
func New(stats StatsSource) *Metrics {
	m := &Metrics{}

	m.Received = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "received_mails_total",
			Help:      "Number of mails received by an ingress",
		},
		[]string{"ingress"},
	)

	m.Rejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_mails_total",
			Help:      "Number of mails rejected before reaching the handler",
		},
		[]string{"ingress", "reason"},
	)

	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(m.Received, m.Rejected)

	if stats != nil {
		m.Registry.MustRegister(handlerCounters(stats)...)
	}
	return m
}

func handlerCounters(stats StatsSource) []prometheus.Collector {
	counter := func(name, help string, labels prometheus.Labels, value func(core.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        name,
				Help:        help,
				ConstLabels: labels,
			},
			func() float64 { return float64(value(stats.Stats())) },
		)
	}

	outcome := func(o string) prometheus.Labels { return prometheus.Labels{"outcome": o} }
	const outcomeHelp = "Number of attachments by archiving outcome"

	return []prometheus.Collector{
		counter("mails_processed_total", "Number of mails with attachments handled", nil,
			func(s core.Stats) uint64 { return s.MailsProcessed }),
		counter("attachments_processed_total", "Number of attachments handled", nil,
			func(s core.Stats) uint64 { return s.AttachmentsProcessed }),
		counter("attachment_bytes_processed_total", "Original size of the attachments handled", nil,
			func(s core.Stats) uint64 { return s.AttachmentBytesProcessed }),
		counter("attachments_total", outcomeHelp, outcome("uploaded"),
			func(s core.Stats) uint64 { return s.Uploaded }),
		counter("attachments_total", outcomeHelp, outcome("cached"),
			func(s core.Stats) uint64 { return s.Cached }),
		counter("attachments_total", outcomeHelp, outcome("dropped"),
			func(s core.Stats) uint64 { return s.Dropped }),
		counter("attachments_total", outcomeHelp, outcome("failed"),
			func(s core.Stats) uint64 { return s.Failed }),
	}
}

// IncReceived counts a mail accepted by an ingress. Safe on a nil receiver.
func (m *Metrics) IncReceived(ingress string) {
	if m == nil {
		return
	}
	m.Received.WithLabelValues(ingress).Inc()
}

// IncRejected counts a mail dropped by an ingress. Safe on a nil receiver.
func (m *Metrics) IncRejected(ingress, reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(ingress, reason).Inc()
}
