package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Booking store metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec
	StoreRecords    prometheus.Gauge

	// Notification metrics
	EmailsSent       prometheus.Counter
	EmailsFailed     prometheus.Counter
	EmailRetries     prometheus.Counter
	DispatchQueueLen prometheus.Gauge
	BulkRecipients   *prometheus.CounterVec

	// Broker metrics
	EventsPublished *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		StoreOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of booking store operations",
		}, []string{"operation", "status"}),
		StoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of booking store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		StoreRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_records",
			Help:      "Current number of persisted appointments",
		}),

		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Total number of successfully delivered emails",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Total number of emails that failed delivery",
		}),
		EmailRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_retry_attempts_total",
			Help:      "Total number of email delivery retry attempts",
		}),
		DispatchQueueLen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queue_size",
			Help:      "Current number of notifications waiting for dispatch",
		}),
		BulkRecipients: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_recipients_total",
			Help:      "Total number of bulk campaign recipients by outcome",
		}, []string{"status"}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of appointment events published to the broker",
		}, []string{"event_type", "status"}),
	}
}

// NewUnregistered builds the same metric set without touching the default
// registry. Used by tests, which may construct several instances per process.
func NewUnregistered(namespace string) *Metrics {
	return &Metrics{
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of booking store operations",
		}, []string{"operation", "status"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of booking store operations",
		}, []string{"operation"}),
		StoreRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_records",
			Help:      "Current number of persisted appointments",
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Total number of successfully delivered emails",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Total number of emails that failed delivery",
		}),
		EmailRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_retry_attempts_total",
			Help:      "Total number of email delivery retry attempts",
		}),
		DispatchQueueLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queue_size",
			Help:      "Current number of notifications waiting for dispatch",
		}),
		BulkRecipients: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_recipients_total",
			Help:      "Total number of bulk campaign recipients by outcome",
		}, []string{"status"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of appointment events published to the broker",
		}, []string{"event_type", "status"}),
	}
}
