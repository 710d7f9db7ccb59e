package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StoreRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reelcheck_store_requests_total",
		Help: "Record store requests by table, operation and outcome",
	}, []string{"table", "op", "outcome"})
	StoreUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reelcheck_record_store_up",
		Help: "1 when the last record store probe succeeded",
	})
	QueueBuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelcheck_queue_build_duration_seconds",
		Help:    "Time spent building a review queue or summary",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	QueueItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reelcheck_queue_items",
		Help: "Items in the last review queue built, by kind",
	}, []string{"kind"})
	AuditsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelcheck_audits_started_total",
		Help: "Audit webhook triggers started",
	})
	AuditOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reelcheck_audit_outcomes_total",
		Help: "Audit webhook outcomes",
	}, []string{"outcome"})
	ActiveAudits = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reelcheck_active_audits",
		Help: "Campaigns currently marked as being audited",
	})
	OutreachMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reelcheck_outreach_messages_total",
		Help: "Outreach messages recorded, by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		StoreRequests,
		StoreUp,
		QueueBuildDuration,
		QueueItems,
		AuditsStarted,
		AuditOutcomes,
		ActiveAudits,
		OutreachMessages,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveQueueBuild records how long building kind took and how many items it produced.
func ObserveQueueBuild(kind string, start time.Time, items int) {
	QueueBuildDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	QueueItems.WithLabelValues(kind).Set(float64(items))
}

func IncStoreRequest(table, op, outcome string) {
	StoreRequests.WithLabelValues(table, op, outcome).Inc()
}
