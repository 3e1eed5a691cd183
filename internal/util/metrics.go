package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogSnapshotsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_snapshots_applied_total",
		Help: "Total number of full catalog snapshots applied to the store",
	})

	CatalogSnapshotReadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_snapshot_reads_failed_total",
		Help: "Total number of failed full-collection reads",
	})

	CategoriesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_categories_written_total",
		Help: "Total number of category document writes",
	}, []string{"op"})

	ProductsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_products_written_total",
		Help: "Total number of product mutations",
	}, []string{"op"})

	AdminWritesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_admin_writes_failed_total",
		Help: "Total number of failed admin mutations",
	}, []string{"reason"})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart state transitions",
	}, []string{"op"})

	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders handed to the notification sink",
	})

	NotificationsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_published_total",
		Help: "Total number of outbound messages published",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of outbound messages that failed to publish",
	})

	NotificationsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_dropped_total",
		Help: "Total number of outbound messages dropped for lack of a contact destination",
	})

	NotificationsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_delivered_total",
		Help: "Total number of outbound messages drained by the delivery worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
