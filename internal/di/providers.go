package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/app"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/channel"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/config"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/health"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/handler"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/middleware"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/router"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/security"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

const listCacheRedisPrefix = "crm_list_cache"

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideListCacheStore,
	provideReadinessProbeRunner,
	provideSenders,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewCustomerRepository,
	repository.NewStageRepository,
	repository.NewLeadRepository,
	repository.NewContactRepository,
	repository.NewTaskRepository,
	repository.NewCommunicationRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	providePasswordHasher,
	wire.Bind(new(service.PasswordHasher), new(*security.PasswordHasher)),
	wire.Bind(new(service.SessionTokenIssuer), new(*security.JWTManager)),
	wire.Bind(new(middleware.TokenVerifier), new(*security.JWTManager)),
)

var ServiceSet = wire.NewSet(
	service.NewAuthService,
	provideCustomerService,
	service.NewStageService,
	service.NewLeadService,
	service.NewContactService,
	service.NewTaskService,
	service.NewCommunicationService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.CustomerServiceInterface), new(*service.CustomerService)),
	wire.Bind(new(service.StageServiceInterface), new(*service.StageService)),
	wire.Bind(new(service.LeadServiceInterface), new(*service.LeadService)),
	wire.Bind(new(service.ContactServiceInterface), new(*service.ContactService)),
	wire.Bind(new(service.TaskServiceInterface), new(*service.TaskService)),
	wire.Bind(new(service.CommunicationServiceInterface), new(*service.CommunicationService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewCustomerHandler,
	handler.NewStageHandler,
	handler.NewLeadHandler,
	handler.NewContactHandler,
	handler.NewTaskHandler,
	handler.NewCommunicationHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// MigrationRunner applies the schema and the default pipeline stages
// without starting the HTTP stack.
type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() (*database.SeedReport, error) {
	if err := database.Migrate(m.db); err != nil {
		return nil, err
	}
	return database.SeedSync(m.db, database.SeedInput{})
}

func (m *MigrationRunner) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db, database.SeedInput{}); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideListCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.ListCacheStore {
	switch {
	case !cfg.ListCacheEnabled:
		return service.NewNoopListCacheStore()
	case redisClient != nil:
		return service.NewRedisListCacheStore(redisClient, listCacheRedisPrefix)
	default:
		return service.NewInMemoryListCacheStore()
	}
}

func provideSenders(cfg *config.Config, logger *slog.Logger) (channel.Senders, error) {
	senders, err := channel.NewSenders(channel.Settings{
		EmailMode: cfg.EmailMode,
		SMSMode:   cfg.SMSMode,
		CallMode:  cfg.CallMode,
		SMTP: channel.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		},
		Twilio: channel.TwilioSettings{
			APIBaseURL: cfg.TwilioAPIBaseURL,
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
		},
	}, nil, logger)
	if err != nil {
		return channel.Senders{}, fmt.Errorf("configure communication channels: %w", err)
	}
	logger.Info("communication channels configured",
		"email", channel.Mode(senders.Email),
		"sms", channel.Mode(senders.SMS),
		"call", channel.Mode(senders.Call),
	)
	return senders, nil
}

func provideJWTManager(cfg *config.Config) (*security.JWTManager, error) {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret)
}

func providePasswordHasher(cfg *config.Config) *security.PasswordHasher {
	return security.NewPasswordHasher(cfg.AuthHashWorkers)
}

func provideCustomerService(repo repository.CustomerRepository, cache service.ListCacheStore, cfg *config.Config, logger *slog.Logger) *service.CustomerService {
	return service.NewCustomerService(repo, cache, cfg.ListCacheTTL, logger)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	customerHandler *handler.CustomerHandler,
	stageHandler *handler.StageHandler,
	leadHandler *handler.LeadHandler,
	contactHandler *handler.ContactHandler,
	taskHandler *handler.TaskHandler,
	communicationHandler *handler.CommunicationHandler,
	verifier middleware.TokenVerifier,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:          authHandler,
		CustomerHandler:      customerHandler,
		StageHandler:         stageHandler,
		LeadHandler:          leadHandler,
		ContactHandler:       contactHandler,
		TaskHandler:          taskHandler,
		CommunicationHandler: communicationHandler,
		TokenVerifier:        verifier,
		CORSOrigins:          cfg.CORSAllowedOrigins,
		Readiness:            readiness,
		EnableOTelHTTP:       cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := []health.Checker{
		health.NewDBChecker(db),
		health.NewSchemaChecker(db),
	}
	if cfg.RedisEnabled {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
