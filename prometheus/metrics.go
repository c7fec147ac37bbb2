package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Outbound send outcomes
	MessagesSentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_sent_total",
			Help: "Total number of outbound messages accepted by the carrier",
		},
	)

	MessagesFailedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_failed_total",
			Help: "Total number of outbound messages rejected by the carrier",
		},
	)

	MessagesSkippedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_skipped_total",
			Help: "Total number of sends skipped by the consent gate",
		},
	)

	// Inbound webhook traffic
	InboundMessagesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_inbound_messages_total",
			Help: "Total number of inbound messages received from the carrier",
		},
	)

	// Status callback transitions by reported status
	StatusCallbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_status_callbacks_total",
			Help: "Total number of delivery status callbacks by reported status",
		},
		[]string{"status"},
	)

	// Consent ledger operations
	ConsentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_consent_operations_total",
			Help: "Total number of consent ledger transitions",
		},
		[]string{"operation"}, // "opt_in" or "opt_out"
	)

	// Webhook signature rejections
	SignatureFailureCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_webhook_signature_failures_total",
			Help: "Total number of webhook requests rejected for a bad signature",
		},
	)

	// Reminder scheduling
	RemindersEnqueuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_reminders_enqueued_total",
			Help: "Total number of appointment reminders enqueued for sending",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(MessagesSentCounter)
	prometheus.MustRegister(MessagesFailedCounter)
	prometheus.MustRegister(MessagesSkippedCounter)
	prometheus.MustRegister(InboundMessagesCounter)
	prometheus.MustRegister(StatusCallbackCounter)
	prometheus.MustRegister(ConsentOperationCounter)
	prometheus.MustRegister(SignatureFailureCounter)
	prometheus.MustRegister(RemindersEnqueuedCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordMessageSent records a carrier-accepted outbound send
func RecordMessageSent() {
	MessagesSentCounter.Inc()
}

// RecordMessageFailed records a carrier-rejected outbound send
func RecordMessageFailed() {
	MessagesFailedCounter.Inc()
}

// RecordMessageSkipped records a send skipped by the consent gate
func RecordMessageSkipped() {
	MessagesSkippedCounter.Inc()
}

// RecordInboundMessage records an inbound message from the carrier
func RecordInboundMessage() {
	InboundMessagesCounter.Inc()
}

// RecordStatusCallback records a delivery status callback by reported status
func RecordStatusCallback(status string) {
	StatusCallbackCounter.With(prometheus.Labels{"status": status}).Inc()
}

// RecordConsentOperation records a consent ledger transition
func RecordConsentOperation(operation string) {
	ConsentOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordSignatureFailure records a rejected webhook signature
func RecordSignatureFailure() {
	SignatureFailureCounter.Inc()
}

// RecordReminderEnqueued records an enqueued appointment reminder
func RecordReminderEnqueued() {
	RemindersEnqueuedCounter.Inc()
}
