package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec
	DBQueryDuration    *prometheus.HistogramVec
	DBTxRetries        *prometheus.CounterVec

	BookingsCreated       *prometheus.CounterVec
	BookingsRejected      *prometheus.CounterVec
	StatusTransitions     *prometheus.CounterVec
	NotificationsSent     *prometheus.CounterVec
	NotificationsFailed   *prometheus.CounterVec
	MessagingChannelState *prometheus.GaugeVec
}

// New создает и регистрирует метрики в DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре (отдельный реестр удобен в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBTxRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_tx_retries_total",
			Help:        "Transactions retried after serialization failure",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings successfully created",
			ConstLabels: constLabels,
		}, []string{"payment_method"}),

		BookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_rejected_total",
			Help:        "Booking creation attempts rejected",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_status_transitions_total",
			Help:        "Applied booking status transitions",
			ConstLabels: constLabels,
		}, []string{"from", "to", "actor"}),

		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_sent_total",
			Help:        "Notifications delivered to the messaging channel",
			ConstLabels: constLabels,
		}, []string{"kind"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_failed_total",
			Help:        "Notifications that could not be delivered",
			ConstLabels: constLabels,
		}, []string{"kind"}),

		MessagingChannelState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "messaging_channel_state",
			Help:        "1 for the current state of the messaging channel, 0 otherwise",
			ConstLabels: constLabels,
		}, []string{"state"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.DBQueryDuration,
		m.DBTxRetries,
		m.BookingsCreated,
		m.BookingsRejected,
		m.StatusTransitions,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.MessagingChannelState,
	)

	return m
}
