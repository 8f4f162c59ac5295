package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/birbparty/commerce-sdk/sdk"
)

// MetricsObserver exports SDK activity as Prometheus metrics.
type MetricsObserver struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	inFlight        prometheus.Gauge
	circuitState    *prometheus.GaugeVec
	circuitChanges  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

var _ sdk.Observer = (*MetricsObserver)(nil)

// NewMetricsObserver registers the SDK metrics with reg. A nil reg uses
// the default Prometheus registerer.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsObserver{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "commerce_requests_total",
			Help: "Total number of platform requests",
		}, []string{"method", "resource", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "commerce_request_duration_seconds",
			Help:    "Duration of platform requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "commerce_request_errors_total",
			Help: "Total number of failed platform requests by error type",
		}, []string{"method", "resource", "type"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "commerce_requests_in_flight",
			Help: "Number of platform requests waiting for a response",
		}),

		circuitState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commerce_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		}, []string{"endpoint"}),

		circuitChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "commerce_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		}, []string{"endpoint", "to"}),

		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "commerce_cache_lookups_total",
			Help: "Response cache lookups by result",
		}, []string{"result"}),
	}
}

// OnRequestStart implements sdk.Observer.
func (m *MetricsObserver) OnRequestStart(method, path string) {
	m.inFlight.Inc()
}

// OnRequestEnd implements sdk.Observer.
func (m *MetricsObserver) OnRequestEnd(method, path string, statusCode int, duration time.Duration, err error) {
	m.inFlight.Dec()

	resource := resourceLabel(path)
	status := "none"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.requestsTotal.WithLabelValues(method, resource, status).Inc()
	m.requestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())

	if err != nil {
		errType := sdk.ErrorTypeUnknown
		var sdkErr *sdk.Error
		if errors.As(err, &sdkErr) {
			errType = sdkErr.Type
		}
		m.errorsTotal.WithLabelValues(method, resource, errType.String()).Inc()
	}
}

// OnCircuitBreakerStateChange implements sdk.Observer.
func (m *MetricsObserver) OnCircuitBreakerStateChange(endpoint string, oldState, newState sdk.CircuitState) {
	m.circuitState.WithLabelValues(endpoint).Set(float64(newState))
	m.circuitChanges.WithLabelValues(endpoint, newState.String()).Inc()
}

// OnCacheHit implements sdk.Observer.
func (m *MetricsObserver) OnCacheHit(key string) {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// OnCacheMiss implements sdk.Observer.
func (m *MetricsObserver) OnCacheMiss(key string) {
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// resourceLabel keeps the first path segment so ids and keys do not
// become label values.
func resourceLabel(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "project"
	}
	return path
}

// InitMetrics installs an OTLP meter provider as the global one. The
// returned function flushes and stops it.
func InitMetrics(ctx context.Context, cfg *Config) (func(context.Context) error, error) {
	if !cfg.EnableMetrics || cfg.ExportToFile {
		return func(context.Context) error { return nil }, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	interval := time.Duration(cfg.MetricsInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}
