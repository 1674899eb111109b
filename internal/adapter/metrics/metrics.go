package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics holds all Prometheus metrics for the ingestion service.
type IngestMetrics struct {
	EventsTotal    *prometheus.CounterVec
	BytesTotal     prometheus.Counter
	PublishPending prometheus.Counter
	PublishSeconds prometheus.Histogram
}

// NewIngestMetrics initializes and registers the ingestion metrics.
func NewIngestMetrics() *IngestMetrics {
	return &IngestMetrics{
		EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Total number of ingested events by status.",
		}, []string{"status"}), // status: accepted, error_validation, error_media_type, error_publish
		BytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "ingest",
			Name:      "bytes_total",
			Help:      "Total number of payload bytes ingested.",
		}),
		PublishPending: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "ingest",
			Name:      "publish_pending_total",
			Help:      "Total number of publishes whose ack wait expired and returned the pending handle.",
		}),
		PublishSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "ingest",
			Name:      "publish_seconds",
			Help:      "Time spent waiting for the queue to acknowledge a publish.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// WorkerMetrics holds all Prometheus metrics for the processing worker.
type WorkerMetrics struct {
	DeliveriesTotal   *prometheus.CounterVec
	ProcessingSeconds prometheus.Histogram
	RecordsUpserted   prometheus.Counter
}

// NewWorkerMetrics initializes and registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		DeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "worker",
			Name:      "deliveries_total",
			Help:      "Total number of push deliveries by status.",
		}, []string{"status"}), // status: processed, error_envelope, error_store, error_internal
		ProcessingSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "worker",
			Name:      "processing_seconds",
			Help:      "Simulated processing time per delivery.",
			Buckets:   []float64{.05, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		RecordsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ingest_pipeline",
			Subsystem: "worker",
			Name:      "records_upserted_total",
			Help:      "Total number of processed records written to the store.",
		}),
	}
}
