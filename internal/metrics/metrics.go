package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "member_finance"

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Ledger
	TransactionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_created_total",
			Help:      "Manual transactions recorded",
		},
		[]string{"type"}, // income|expense
	)
	TransactionsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_deleted_total",
			Help:      "Manual transactions deleted",
		},
	)
	BankBalanceUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_balance_updates_total",
			Help:      "Bank balance snapshots appended",
		},
	)
	BankBalanceReadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_balance_read_failures_total",
			Help:      "Bank balance reads that degraded to an unknown reading",
		},
	)
	FormRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_form_rejections_total",
			Help:      "Transaction form submissions rejected before reaching the database",
		},
		[]string{"reason"}, // validation|in_progress
	)

	// Reconciliation
	Reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Dashboard reconciliations by outcome",
		},
		[]string{"status"}, // match|mismatch|unknown
	)

	// Audit
	AuditFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Audit events that could not be persisted or published",
		},
		[]string{"stage"}, // persist|publish
	)
)

// Handler serves /metrics.
var Handler = promhttp.Handler

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			TransactionsCreated,
			TransactionsDeleted,
			BankBalanceUpdates,
			BankBalanceReadFailures,
			FormRejections,
			Reconciliations,
			AuditFailures,
		)
	})
}
