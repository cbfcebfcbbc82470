package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorbridge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SessionsBookedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_sessions_booked_total",
			Help: "Total number of sessions booked",
		},
		[]string{"tier"},
	)

	SessionCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorbridge_session_cancellations_total",
			Help: "Total number of session cancellations",
		},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_withdrawals_total",
			Help: "Total number of withdrawal requests by outcome",
		},
		[]string{"status"},
	)

	TokensDebitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_tokens_debited_total",
			Help: "Total tokens debited from accounts",
		},
		[]string{"type"},
	)

	TokensCreditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_tokens_credited_total",
			Help: "Total tokens credited to accounts",
		},
		[]string{"type"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mentorbridge_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSessionBooked(tier string) {
	SessionsBookedTotal.WithLabelValues(tier).Inc()
}

func RecordSessionCancellation() {
	SessionCancellationsTotal.Inc()
}

func RecordWithdrawal(status string) {
	WithdrawalsTotal.WithLabelValues(status).Inc()
}

func RecordDebit(txType string, tokens int64) {
	TokensDebitedTotal.WithLabelValues(txType).Add(float64(tokens))
}

func RecordCredit(txType string, tokens int64) {
	TokensCreditedTotal.WithLabelValues(txType).Add(float64(tokens))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
