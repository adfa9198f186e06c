package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	SyncRuns          prometheus.Counter
	SyncFailures      prometheus.Counter
	EnvelopesUpserted prometheus.Counter
	WebhooksReceived  prometheus.Counter
	WebhooksRejected  prometheus.Counter
	SyncDuration      prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SyncRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "envelope_sync_runs_total",
			Help: "Total number of envelope sync attempts",
		}),
		SyncFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "envelope_sync_failures_total",
			Help: "Total number of failed envelope sync attempts",
		}),
		EnvelopesUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "envelope_sync_envelopes_upserted_total",
			Help: "Total number of envelopes upserted by sync runs",
		}),
		WebhooksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "envelope_sync_webhooks_received_total",
			Help: "Total number of DocuSign Connect notifications received",
		}),
		WebhooksRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "envelope_sync_webhooks_rejected_total",
			Help: "Total number of Connect notifications rejected (bad signature or payload)",
		}),
		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "envelope_sync_duration_seconds",
			Help:    "Time spent per envelope sync run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
