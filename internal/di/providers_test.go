package di

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/channel"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/config"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}
	srv := provideHTTPServer(cfg, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.ReadTimeout.Seconds() != 10 {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}
}

func TestProvideRouterDependencies(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}, OTELTracingEnabled: true}
	dep := provideRouterDependencies(nil, nil, nil, nil, nil, nil, nil, nil, nil, cfg)
	if !dep.EnableOTelHTTP {
		t.Fatal("expected otel http enabled")
	}
	if len(dep.CORSOrigins) != 1 || dep.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %+v", dep.CORSOrigins)
	}
}

func TestProvideJWTManagerRequiresSecret(t *testing.T) {
	if _, err := provideJWTManager(&config.Config{JWTIssuer: "crm"}); err == nil {
		t.Fatal("expected error for empty signing secret")
	}
	mgr, err := provideJWTManager(&config.Config{JWTIssuer: "crm", JWTSecret: "abcdefghijklmnopqrstuvwxyz123456"})
	if err != nil || mgr == nil {
		t.Fatalf("expected jwt manager, got %v", err)
	}
}

func TestProvideRedisClient(t *testing.T) {
	if client := provideRedisClient(&config.Config{RedisEnabled: false}, slog.Default()); client != nil {
		t.Fatal("expected nil redis client when redis is disabled")
	}
	cfg := &config.Config{RedisEnabled: true, RedisAddr: "localhost:6379", RedisPassword: "pw", RedisDB: 2}
	client := provideRedisClient(cfg, slog.Default())
	if client == nil {
		t.Fatal("expected redis client")
	}
	t.Cleanup(func() { _ = client.Close() })
	rc, ok := client.(*redis.Client)
	if !ok {
		t.Fatalf("expected *redis.Client, got %T", client)
	}
	if opts := rc.Options(); opts.Addr != cfg.RedisAddr || opts.Password != cfg.RedisPassword || opts.DB != cfg.RedisDB {
		t.Fatalf("unexpected redis options: %+v", opts)
	}
}

func TestProvideListCacheStore(t *testing.T) {
	if _, ok := provideListCacheStore(&config.Config{ListCacheEnabled: false}, nil).(*service.NoopListCacheStore); !ok {
		t.Fatal("expected noop store when cache disabled")
	}
	if _, ok := provideListCacheStore(&config.Config{ListCacheEnabled: true}, nil).(*service.InMemoryListCacheStore); !ok {
		t.Fatal("expected in-memory store without redis")
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := provideListCacheStore(&config.Config{ListCacheEnabled: true}, client)
	if _, ok := store.(*service.RedisListCacheStore); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}
	ctx := context.Background()
	if err := store.Set(ctx, "customers", "page=1", []byte(`[]`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, hit, err := store.Get(ctx, "customers", "page=1"); err != nil || !hit {
		t.Fatalf("expected cache hit, got hit=%v err=%v", hit, err)
	}
}

func TestProvideSenders(t *testing.T) {
	cfg := &config.Config{EmailMode: "mock", SMSMode: "twilio", CallMode: "mock", TwilioAccountSID: "AC1", TwilioAuthToken: "tok", TwilioFromNumber: "+15550000000", TwilioAPIBaseURL: "https://api.twilio.com"}
	senders, err := provideSenders(cfg, slog.Default())
	if err != nil {
		t.Fatalf("provide senders: %v", err)
	}
	if channel.Mode(senders.Email) != "mock" || channel.Mode(senders.SMS) != "twilio" || channel.Mode(senders.Call) != "mock" {
		t.Fatalf("unexpected sender modes: %s %s %s", channel.Mode(senders.Email), channel.Mode(senders.SMS), channel.Mode(senders.Call))
	}

	cfg.EmailMode = "carrier-pigeon"
	if _, err := provideSenders(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for unsupported email mode")
	}
}

func TestProvideReadinessProbeRunnerSkipsRedisWhenDisabled(t *testing.T) {
	runner := provideReadinessProbeRunner(&config.Config{ReadinessProbeTimeout: time.Second}, nil, nil)
	ready, results := runner.Ready(context.Background())
	if !ready || len(results) != 0 {
		t.Fatalf("expected ready with no checks, got %v %+v", ready, results)
	}
}

func TestProvideApp(t *testing.T) {
	cfg := &config.Config{HTTPPort: "8080", ShutdownTimeout: 20 * time.Second, ShutdownHTTPDrainTimeout: 10 * time.Second, ShutdownObservabilityTimeout: 8 * time.Second}
	logger := slog.Default()
	srv := &http.Server{Addr: ":8080", ReadHeaderTimeout: time.Second}
	runtime := &observability.Runtime{}

	app := provideApp(cfg, logger, srv, runtime, nil, nil, nil)
	if app == nil {
		t.Fatal("expected app")
	}
	if app.Config != cfg || app.Logger != logger || app.Server != srv || app.Observability != runtime {
		t.Fatal("app dependencies not wired as expected")
	}
	if app.ShutdownHTTPDrainTimeout != 10*time.Second {
		t.Fatalf("unexpected drain timeout: %v", app.ShutdownHTTPDrainTimeout)
	}
}
