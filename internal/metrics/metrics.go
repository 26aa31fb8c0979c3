package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for ingestion outcomes, store latency and HTTP traffic.
var (
	IngestEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logagg_ingest_events_total",
			Help: "Ingestion attempts by outcome (accepted, duplicate, rejected, unprocessed)",
		},
		[]string{"status"},
	)

	IngestBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logagg_ingest_batch_size",
			Help:    "Number of events per ingest call",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	StoreSaveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logagg_store_save_duration_seconds",
			Help:    "Duration of one conditional insert plus counter update",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logagg_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logagg_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Register registers all collectors on reg. Collectors already registered on reg
// are skipped, so calling Register twice is harmless.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		IngestEventsTotal,
		IngestBatchSize,
		StoreSaveDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
