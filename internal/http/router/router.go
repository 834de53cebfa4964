package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/health"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/handler"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/middleware"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
)

const defaultBodyLimit = 1 << 20

type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	CustomerHandler      *handler.CustomerHandler
	StageHandler         *handler.StageHandler
	LeadHandler          *handler.LeadHandler
	ContactHandler       *handler.ContactHandler
	TaskHandler          *handler.TaskHandler
	CommunicationHandler *handler.CommunicationHandler
	TokenVerifier        middleware.TokenVerifier
	CORSOrigins          []string
	Readiness            *health.ProbeRunner
	EnableOTelHTTP       bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(defaultBodyLimit))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	authRoutes := func(r chi.Router) {
		r.Post("/register", dep.AuthHandler.Register)
		r.Post("/login", dep.AuthHandler.Login)
	}
	r.Route("/auth", authRoutes)

	gate := middleware.AuthMiddleware(dep.TokenVerifier)
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", authRoutes)

		r.Group(func(r chi.Router) {
			r.Use(gate)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", dep.CustomerHandler.List)
				r.Post("/", dep.CustomerHandler.Create)
				r.Get("/{id}", dep.CustomerHandler.Get)
				r.Put("/{id}", dep.CustomerHandler.Update)
				r.Delete("/{id}", dep.CustomerHandler.Delete)
			})
			r.Route("/stages", func(r chi.Router) {
				r.Get("/", dep.StageHandler.List)
				r.Post("/", dep.StageHandler.Create)
				r.Put("/{id}", dep.StageHandler.Update)
				r.Delete("/{id}", dep.StageHandler.Delete)
			})
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", dep.LeadHandler.List)
				r.Post("/", dep.LeadHandler.Create)
				r.Get("/{id}", dep.LeadHandler.Get)
				r.Put("/{id}", dep.LeadHandler.Update)
				r.Delete("/{id}", dep.LeadHandler.Delete)
			})
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", dep.ContactHandler.List)
				r.Post("/", dep.ContactHandler.Create)
				r.Get("/customer/{customer_id}", dep.ContactHandler.ListByCustomer)
				r.Get("/type/{type}", dep.ContactHandler.ListByType)
				r.Get("/{id}", dep.ContactHandler.Get)
				r.Put("/{id}", dep.ContactHandler.Update)
				r.Delete("/{id}", dep.ContactHandler.Delete)
			})
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", dep.TaskHandler.List)
				r.Post("/", dep.TaskHandler.Create)
				r.Get("/{id}", dep.TaskHandler.Get)
				r.Put("/{id}", dep.TaskHandler.Update)
				r.Delete("/{id}", dep.TaskHandler.Delete)
			})
			r.Route("/communication", func(r chi.Router) {
				r.Post("/email", dep.CommunicationHandler.SendEmail)
				r.Post("/sms", dep.CommunicationHandler.SendSMS)
				r.Post("/call", dep.CommunicationHandler.MakeCall)
				r.Get("/history", dep.CommunicationHandler.History)
				r.Get("/history/{customer_id}", dep.CommunicationHandler.History)
				r.Get("/contacts/{customer_id}", dep.CommunicationHandler.ContactBook)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
