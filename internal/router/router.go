// internal/router/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-user-management/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	UserHandler            *user.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "user"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint, public
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Every user route sits behind the identity extractor; the create
	// handler additionally requires the admin role.
	r.Route("/users", func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)

		r.Post("/create", cfg.UserHandler.CreateUser)
		r.Get("/me", cfg.UserHandler.GetCurrentUser)
		r.Put("/update", cfg.UserHandler.UpdateUser)
		r.Delete("/delete", cfg.UserHandler.DeleteUser)
	})

	return r
}
