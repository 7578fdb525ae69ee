package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the planner's metric instruments.
type AppMetrics struct {
	CollectionsSavedTotal metric.Int64Counter
	InvariantRepairsTotal metric.Int64Counter
	RouteLegsTotal        metric.Int64Counter
	ProviderCallDuration  metric.Float64Histogram
	ProviderCallErrors    metric.Int64Counter
	ChatMessagesTotal     metric.Int64Counter
	TripsGeneratedTotal   metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is configured; before that the instruments
// are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("KhonKaenTravelPlanner")
		var err error
		m := &AppMetrics{}

		m.CollectionsSavedTotal, err = meter.Int64Counter(
			"collections_saved_total",
			metric.WithDescription("Total number of collection writes"),
			metric.WithUnit("{save}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create collections_saved_total: %v", err)
		}

		m.InvariantRepairsTotal, err = meter.Int64Counter(
			"plan_invariant_repairs_total",
			metric.WithDescription("Start locations cleared because they matched accommodation"),
			metric.WithUnit("{repair}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plan_invariant_repairs_total: %v", err)
		}

		m.RouteLegsTotal, err = meter.Int64Counter(
			"route_legs_total",
			metric.WithDescription("Route legs requested, by outcome"),
			metric.WithUnit("{leg}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_legs_total: %v", err)
		}

		m.ProviderCallDuration, err = meter.Float64Histogram(
			"provider_call_duration_seconds",
			metric.WithDescription("Duration of outbound provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_call_duration_seconds: %v", err)
		}

		m.ProviderCallErrors, err = meter.Int64Counter(
			"provider_call_errors_total",
			metric.WithDescription("Total number of failed outbound provider calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_call_errors_total: %v", err)
		}

		m.ChatMessagesTotal, err = meter.Int64Counter(
			"chat_messages_total",
			metric.WithDescription("Messages sent to the assistant"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_messages_total: %v", err)
		}

		m.TripsGeneratedTotal, err = meter.Int64Counter(
			"trips_generated_total",
			metric.WithDescription("Trips created by the assistant, by source"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trips_generated_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
