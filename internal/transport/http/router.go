package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventlift/internal/platform/metrics"
	"eventlift/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Router bundles the handlers and cross-cutting dependencies of the HTTP
// surface.
type Router struct {
	Auth      *AuthHandler
	Admin     *AdminHandler
	Files     *FileHandler
	Validator middleware.TokenValidator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// New wires all routes with the shared middleware chain.
func New(deps Router) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.HandleRegister)
		r.Post("/verify-otp", deps.Auth.HandleVerifyOTP)
		r.Post("/login", deps.Auth.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Validator, logger))
			r.Get("/me", deps.Auth.HandleMe)
			r.Put("/profile", deps.Auth.HandleUpdateProfile)
			r.Put("/password", deps.Auth.HandleChangePassword)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, logger))
		r.Use(middleware.RequireAdmin(logger))
		r.Get("/users/pending", deps.Admin.HandleListPending)
		r.Get("/users", deps.Admin.HandleListAll)
		r.Put("/verify/{userId}", deps.Admin.HandleSetStatus)
		r.Put("/users/{userId}/reset-password", deps.Admin.HandleResetPassword)
	})

	r.Route("/api/files", func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, logger))
		r.Get("/user/{id}/document", deps.Files.HandleUserDocument)
	})

	return r
}
