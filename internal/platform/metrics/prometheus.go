package metrics

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the service's Prometheus collectors on a private registry.
type Manager struct {
	Registry *prometheus.Registry

	ListingsCreated       prometheus.Counter
	ListingsUpdated       prometheus.Counter
	ListingsDeleted       prometheus.Counter
	ImagesUploaded        prometheus.Counter
	PromotionFallbacks    prometheus.Counter
	StorageDeleteFailures prometheus.Counter
	OrphanAssetsSwept     prometheus.Counter
	FavoriteToggles       *prometheus.CounterVec // result: added|removed
	OperationErrors       *prometheus.CounterVec // op, kind
	OperationLatency      *prometheus.HistogramVec
}

func NewManager(namespace string) *Manager {
	m := &Manager{
		Registry: prometheus.NewRegistry(),
		ListingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "listings_created_total",
			Help: "Total number of listings created.",
		}),
		ListingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "listings_updated_total",
			Help: "Total number of listings updated.",
		}),
		ListingsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "listings_deleted_total",
			Help: "Total number of listings deleted.",
		}),
		ImagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "images_uploaded_total",
			Help: "Total number of image objects written to storage.",
		}),
		PromotionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "image_promotion_fallbacks_total",
			Help: "Images left in the temporary namespace because promotion failed.",
		}),
		StorageDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "storage_delete_failures_total",
			Help: "Best-effort storage deletions that failed.",
		}),
		OrphanAssetsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orphan_assets_swept_total",
			Help: "Orphaned temporary images removed by the sweeper.",
		}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "favorite_toggles_total",
			Help: "Favorite toggles by resulting state.",
		}, []string{"result"}),
		OperationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_errors_total",
			Help: "Normalized operation failures by operation and kind.",
		}, []string{"op", "kind"}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_latency_seconds",
			Help:    "Latency of public operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	m.Registry.MustRegister(
		m.ListingsCreated,
		m.ListingsUpdated,
		m.ListingsDeleted,
		m.ImagesUploaded,
		m.PromotionFallbacks,
		m.StorageDeleteFailures,
		m.OrphanAssetsSwept,
		m.FavoriteToggles,
		m.OperationErrors,
		m.OperationLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// StartServer serves /metrics on port. Blocks until the server stops.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Metrics port not configured, metrics server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
