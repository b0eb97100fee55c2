package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	CreateUserRequestsTotal   metric.Int64Counter
	CreateUserDurationSeconds metric.Float64Histogram
	StoreOpsTotal             metric.Int64Counter
	StoreOpErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-user-management")
		var err error
		m := &AppMetrics{}

		m.CreateUserRequestsTotal, err = meter.Int64Counter(
			"create_user_requests_total",
			metric.WithDescription("Total number of user create requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create create_user_requests_total: %v", err)
		}

		m.CreateUserDurationSeconds, err = meter.Float64Histogram(
			"create_user_duration_seconds",
			metric.WithDescription("Duration of user create requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create create_user_duration_seconds: %v", err)
		}

		m.StoreOpsTotal, err = meter.Int64Counter(
			"store_ops_total",
			metric.WithDescription("Total number of user store operations"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_ops_total: %v", err)
		}

		m.StoreOpErrorsTotal, err = meter.Int64Counter(
			"store_op_errors_total",
			metric.WithDescription("Total number of user store operation errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_op_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
