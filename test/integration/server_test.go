package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/channel"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/config"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/handler"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/router"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/security"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

const (
	testIssuer = "crm-dashboard"
	testSecret = "integration-secret-0123456789abcdef"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	URL    string
	Client *http.Client
	DB     *gorm.DB
	Sent   *channel.RecordingSender
}

// newCRMTestServer serves the full router over a private in-memory sqlite
// database opened the same way the API opens it.
func newCRMTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(&config.Config{DatabaseDriver: "sqlite", DatabaseURL: dsn})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db = db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, database.SeedInput{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return newCRMTestServerOn(t, db)
}

// newCRMTestServerOn wires repositories, services and handlers over an
// already migrated and seeded database.
func newCRMTestServerOn(t *testing.T, db *gorm.DB) *testServer {
	t.Helper()

	log := slog.Default()
	jwtMgr, err := security.NewJWTManager(testIssuer, testSecret)
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	senders, err := channel.NewSenders(channel.Settings{EmailMode: "mock", SMSMode: "mock", CallMode: "mock"}, nil, log)
	if err != nil {
		t.Fatalf("senders: %v", err)
	}
	recorder, ok := senders.Email.(*channel.RecordingSender)
	if !ok {
		t.Fatalf("expected recording sender, got %T", senders.Email)
	}

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	stageRepo := repository.NewStageRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	contactRepo := repository.NewContactRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	historyRepo := repository.NewCommunicationRepository(db)

	authSvc := service.NewAuthService(userRepo, security.NewPasswordHasher(2), jwtMgr, log)
	customerSvc := service.NewCustomerService(customerRepo, service.NewInMemoryListCacheStore(), time.Minute, log)

	r := router.NewRouter(router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authSvc),
		CustomerHandler:      handler.NewCustomerHandler(customerSvc),
		StageHandler:         handler.NewStageHandler(service.NewStageService(stageRepo)),
		LeadHandler:          handler.NewLeadHandler(service.NewLeadService(leadRepo, customerRepo, stageRepo)),
		ContactHandler:       handler.NewContactHandler(service.NewContactService(contactRepo, customerRepo)),
		TaskHandler:          handler.NewTaskHandler(service.NewTaskService(taskRepo, customerRepo)),
		CommunicationHandler: handler.NewCommunicationHandler(service.NewCommunicationService(historyRepo, customerRepo, contactRepo, senders, log)),
		TokenVerifier:        jwtMgr,
		CORSOrigins:          []string{"http://localhost"},
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{URL: srv.URL, Client: srv.Client(), DB: db, Sent: recorder}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, body any) (*http.Response, apiEnvelope) {
	t.Helper()
	resp, raw := s.do(t, method, path, token, body)
	var env apiEnvelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, env
}

// registerAndLogin creates a user and returns a session token for it.
func (s *testServer) registerAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()
	resp, _ := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed status=%d", resp.StatusCode)
	}

	resp, raw := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed status=%d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Token == "" {
		t.Fatalf("login returned no token: %s", raw)
	}
	return out.Token
}
