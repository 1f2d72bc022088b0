// Package telemetry installs the OpenTelemetry providers and exposes the
// service's shared instruments.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/tenantd"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Operation metrics
	OperationsStartedTotal  metric.Int64Counter
	OperationsFinishedTotal metric.Int64Counter
	OperationDuration       metric.Float64Histogram

	// Store metrics
	TransactionsTotal         metric.Int64Counter
	TransactionRollbacksTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.OperationsStartedTotal, _ = meter.Int64Counter(
		"tenantd.operations.started.total",
		metric.WithDescription("Total number of operations started"),
		metric.WithUnit("{operation}"),
	)

	m.OperationsFinishedTotal, _ = meter.Int64Counter(
		"tenantd.operations.finished.total",
		metric.WithDescription("Total number of operations finished, by outcome"),
		metric.WithUnit("{operation}"),
	)

	m.OperationDuration, _ = meter.Float64Histogram(
		"tenantd.operations.duration",
		metric.WithDescription("Duration of operations"),
		metric.WithUnit("ms"),
	)

	m.TransactionsTotal, _ = meter.Int64Counter(
		"tenantd.store.transactions.total",
		metric.WithDescription("Total number of store transactions"),
		metric.WithUnit("{transaction}"),
	)

	m.TransactionRollbacksTotal, _ = meter.Int64Counter(
		"tenantd.store.transaction_rollbacks.total",
		metric.WithDescription("Total number of store transaction rollbacks"),
		metric.WithUnit("{transaction}"),
	)

	return m
}

// OperationStarted records the start of one pipeline operation.
func (m *Metrics) OperationStarted(operation string) {
	m.OperationsStartedTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("operation", operation)))
}

// OperationFinished records the outcome and duration of one pipeline operation.
func (m *Metrics) OperationFinished(operation string, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.OperationsFinishedTotal.Add(context.Background(), 1, attrs)
	m.OperationDuration.Record(context.Background(), float64(elapsed.Milliseconds()), attrs)
}
