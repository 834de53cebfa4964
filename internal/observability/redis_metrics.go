package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentRedisClient adds command counters, latency and keyspace hit/miss
// metrics to the list cache client.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	hook, err := newRedisMetricsHook(otel.Meter(meterName))
	if err != nil {
		logger.Warn("redis observability instrumentation disabled", "error", err)
		return
	}
	client.AddHook(hook)
	logger.Info("redis observability instrumentation enabled")
}

type redisMetricsHook struct {
	commands metric.Int64Counter
	latency  metric.Float64Histogram
	keyspace metric.Int64Counter
}

func newRedisMetricsHook(meter metric.Meter) (*redisMetricsHook, error) {
	commands, err := meter.Int64Counter("redis.command.total", metric.WithDescription("Redis commands executed by status"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("redis.command.duration", metric.WithUnit("s"), metric.WithDescription("Redis command latency in seconds"))
	if err != nil {
		return nil, err
	}
	keyspace, err := meter.Int64Counter("redis.keyspace.lookups", metric.WithDescription("Redis GET lookups by hit or miss"))
	if err != nil {
		return nil, err
	}
	return &redisMetricsHook{commands: commands, latency: latency, keyspace: keyspace}, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, cmd, err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)
		for _, cmd := range cmds {
			h.observe(ctx, cmd, cmd.Err(), elapsed)
		}
		return err
	}
}

func (h *redisMetricsHook) observe(ctx context.Context, cmd redis.Cmder, err error, elapsed time.Duration) {
	command := strings.ToLower(cmd.Name())
	status := redisCommandStatus(err)
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	)
	h.commands.Add(ctx, 1, attrs)
	h.latency.Record(ctx, elapsed.Seconds(), attrs)
	if command == "get" && status != "error" {
		outcome := "hit"
		if status == "miss" {
			outcome = "miss"
		}
		h.keyspace.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, redis.Nil):
		return "miss"
	default:
		return "error"
	}
}
