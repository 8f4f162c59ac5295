// Package telemetry wires logging, Prometheus metrics and OpenTelemetry
// tracing for the commands and services in this module.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Providers holds what Init started so it can be stopped again.
type Providers struct {
	shutdown []func(context.Context) error
}

// Init initializes logging, metrics and tracing from cfg.
func Init(ctx context.Context, cfg *Config) (*Providers, error) {
	if err := InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	p := &Providers{}

	stopMetrics, err := InitMetrics(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	p.shutdown = append(p.shutdown, stopMetrics)

	stopTracing, err := InitTracing(ctx, cfg)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	p.shutdown = append(p.shutdown, stopTracing)

	L().WithFields(logrus.Fields{
		"service":      cfg.ServiceName,
		"version":      cfg.ServiceVersion,
		"environment":  cfg.Environment,
		"exportToFile": cfg.ExportToFile,
	}).Info("Telemetry initialized")

	return p, nil
}

// Shutdown flushes the exporters and closes the log file.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(p.shutdown) - 1; i >= 0; i-- {
		if err := p.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := CloseLogger(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PrometheusHandler serves the metrics gathered by g.
func PrometheusHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ServerMetrics are the HTTP metrics of a fiber service.
type ServerMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewServerMetrics registers the HTTP server metrics with reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	factory := promauto.With(reg)
	return &ServerMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// FiberMiddleware traces, measures and logs every request. metrics may be nil.
func FiberMiddleware(metrics *ServerMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		ctx, span := StartSpan(c.UserContext(), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()

		// Route is only known once the router matched.
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		duration := time.Since(start)

		if metrics != nil {
			metrics.requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
			metrics.requestDuration.WithLabelValues(c.Method(), route).Observe(duration.Seconds())
		}

		span.SetAttributes(
			semconv.HTTPMethodKey.String(c.Method()),
			semconv.HTTPTargetKey.String(c.OriginalURL()),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPStatusCodeKey.Int(status),
		)

		entry := WithContext(ctx).WithFields(logrus.Fields{
			"method":         c.Method(),
			"path":           c.Path(),
			"status":         status,
			"duration":       duration.Milliseconds(),
			"correlation_id": c.Get("X-Correlation-ID"),
		})

		switch {
		case err != nil:
			RecordError(ctx, err)
			entry.WithError(err).Error("Request failed")
		case status >= 400:
			entry.Warn("Request completed with error status")
		default:
			entry.Debug("Request completed")
		}
		return err
	}
}
