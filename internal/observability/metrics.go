package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

const meterName = "crm-dashboard-backend"

type AppMetrics struct {
	authLoginCounter         metric.Int64Counter
	authRegisterCounter      metric.Int64Counter
	authReqDuration          metric.Float64Histogram
	tokenValidationCounter   metric.Int64Counter
	passwordHashDuration     metric.Float64Histogram
	crmOperationCounter      metric.Int64Counter
	crmOperationDuration     metric.Float64Histogram
	repositoryOpsCounter     metric.Int64Counter
	dispatchCounter          metric.Int64Counter
	listCacheCounter         metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
	databaseStartupCounter   metric.Int64Counter
	databaseStartupDuration  metric.Float64Histogram
	toolCommandRuns          metric.Int64Counter
	middlewareEvents         metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.password.hash.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			errs = append(errs, fmt.Errorf("counter %s: %w", name, err))
		}
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithDescription(desc))
		if err != nil {
			errs = append(errs, fmt.Errorf("histogram %s: %w", name, err))
		}
		return h
	}

	m := &AppMetrics{
		authLoginCounter:         counter("auth.login.attempts", "Login attempts by outcome"),
		authRegisterCounter:      counter("auth.register.attempts", "Registration attempts by outcome"),
		authReqDuration:          seconds("auth.request.duration", "Duration of auth endpoint requests in seconds"),
		tokenValidationCounter:   counter("auth.token.validation.events", "Bearer token gate decisions"),
		passwordHashDuration:     seconds("auth.password.hash.duration", "Time spent hashing or verifying passwords"),
		crmOperationCounter:      counter("crm.operations", "CRM entity operations by outcome"),
		crmOperationDuration:     seconds("crm.operation.duration", "Duration of CRM entity operations in seconds"),
		repositoryOpsCounter:     counter("repository.operations", "Repository calls by outcome"),
		dispatchCounter:          counter("communication.dispatch.events", "Outbound email, sms and call dispatches"),
		listCacheCounter:         counter("list.cache.events", "List cache lookups and invalidations"),
		healthCheckResultCounter: counter("health.check.results", "Readiness dependency check results"),
		healthCheckDuration:      seconds("health.check.duration", "Duration of health dependency checks in seconds"),
		databaseStartupCounter:   counter("database.startup.events", "Database migrate and seed outcomes"),
		databaseStartupDuration:  seconds("database.startup.duration", "Duration of database startup phases in seconds"),
		toolCommandRuns:          counter("tool.command.runs", "CLI tool command executions"),
		middlewareEvents:         counter("http.middleware.validation.events", "Request validation decisions taken by middleware"),
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return m, nil
}

func loadMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthLogin(ctx context.Context, status string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthRegister(ctx context.Context, status string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.authRegisterCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordTokenValidation(ctx context.Context, outcome, source string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

func RecordPasswordHashDuration(ctx context.Context, op string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.passwordHashDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

func RecordCRMOperation(ctx context.Context, entity, action, outcome string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.crmOperationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
	m.crmOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("action", action),
	))
}

func RecordRepositoryOperation(ctx context.Context, repo, op, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repo),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordCommunicationDispatch(ctx context.Context, channel, mode, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.dispatchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
}

func RecordListCacheEvent(ctx context.Context, namespace, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.listCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("phase", phase)))
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.middlewareEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}
