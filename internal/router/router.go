package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/owt-boats/internal/api/auth"
	"github.com/FACorreiaa/owt-boats/internal/api/boat"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Logger         *slog.Logger
	AuthHandler    *auth.HandlerImpl
	BoatHandler    *boat.HandlerImpl
	PrincipalStore auth.PrincipalStore
	TokenIssuer    *auth.TokenIssuer
	AllowedOrigins []string
}

// SetupRouter builds the API routes. Server-wide middleware (request id,
// logging, recoverer) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		// token endpoint, guarded by basic credentials
		r.With(auth.BasicAuth(cfg.Logger, cfg.PrincipalStore)).Post("/auth", cfg.AuthHandler.Token)

		// every boat operation: valid token (401) then USER role (403)
		r.Route("/boats", func(r chi.Router) {
			r.Use(auth.Authenticate(cfg.Logger, cfg.TokenIssuer))
			r.Use(auth.RequireRole(cfg.Logger, auth.RoleUser))
			cfg.BoatHandler.Routes(r)
		})
	})

	return r
}
