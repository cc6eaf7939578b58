package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PhotosProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobomb",
		Name:      "photos_processed_total",
		Help:      "Total number of photos run through face extraction",
	}, []string{"outcome"}) // ready | faceless | failed

	FacesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photobomb",
		Name:      "faces_extracted_total",
		Help:      "Total number of face embeddings extracted",
	})

	ClusteringRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photobomb",
		Name:      "clustering_runs_total",
		Help:      "Total number of full clustering passes",
	})

	ClusteringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "photobomb",
		Name:      "clustering_duration_seconds",
		Help:      "Duration of one cluster+bind+reconcile pass",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	ClustersBound = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photobomb",
		Name:      "clusters_bound",
		Help:      "Clusters bound to an account in the last pass",
	})

	ClustersUnbound = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photobomb",
		Name:      "clusters_unbound",
		Help:      "Clusters with no verification photo in the last pass",
	})

	SuggestionsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photobomb",
		Name:      "suggestions_computed_total",
		Help:      "Total number of predicted photo ids written to accounts",
	})

	BindingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photobomb",
		Name:      "binding_conflicts_total",
		Help:      "Clusters containing verification photos from multiple accounts",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photobomb",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photobomb",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photobomb",
		Name:      "queue_depth",
		Help:      "Pending photo change messages in the work queue",
	})
)
