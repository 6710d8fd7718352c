// Package metrics exposes the handful of counters/timers the bank updates
// on every operation, built directly on github.com/rcrowley/go-metrics —
// the library backing the teacher's own metrics package.
package metrics

import (
	"github.com/rcrowley/go-metrics"
)

// registry is the process-wide metrics registry.
var registry = metrics.NewRegistry()

// Registry returns the process-wide metrics registry, for wiring an
// exporter (InfluxDB, Prometheus, a debug HTTP handler, ...).
func Registry() metrics.Registry { return registry }

// Counter returns (creating if necessary) a named counter.
func Counter(name string) metrics.Counter {
	return metrics.GetOrRegisterCounter(name, registry)
}

// Timer returns (creating if necessary) a named timer, for measuring
// operation latency.
func Timer(name string) metrics.Timer {
	return metrics.GetOrRegisterTimer(name, registry)
}

// Histogram returns (creating if necessary) a named histogram over a
// uniform sample, for distributions like payable amounts.
func Histogram(name string) metrics.Histogram {
	return metrics.GetOrRegisterHistogram(name, registry, metrics.NewUniformSample(1028))
}

const (
	// MetricPaymentsProcessed counts successful process_payment calls.
	MetricPaymentsProcessed = "bank/payments/processed"
	// MetricPaymentsRejectedPrefix counts failed process_payment calls, by error
	// kind; callers append ".<kind>" to this prefix.
	MetricPaymentsRejectedPrefix = "bank/payments/rejected"
	// MetricPaymentsAmount samples the payable amount of processed payments.
	MetricPaymentsAmount = "bank/payments/amount"
	// MetricDeposits counts deposit calls.
	MetricDeposits = "bank/deposits/count"
	// MetricDoubleSpendReports counts confirmed report_double_spend calls.
	MetricDoubleSpendReports = "bank/doublespend/reported"
)
