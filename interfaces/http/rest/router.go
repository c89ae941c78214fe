package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"notes-backend/application/services"
	"notes-backend/interfaces/http/rest/handlers"
	"notes-backend/interfaces/http/rest/middleware"
	"notes-backend/pkg/auth"
	pkgerrors "notes-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	authService *services.AuthService
	noteService *services.NoteService
	tokens      *auth.JWTService
	cookies     *auth.CookieManager
	corsOrigin  string
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	authService *services.AuthService,
	noteService *services.NoteService,
	tokens *auth.JWTService,
	cookies *auth.CookieManager,
	corsOrigin string,
	logger *zap.Logger,
) *Router {
	return &Router{
		authService: authService,
		noteService: noteService,
		tokens:      tokens,
		cookies:     cookies,
		corsOrigin:  corsOrigin,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	errorHandler := pkgerrors.NewErrorHandler(rt.logger)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{rt.corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)

	requireAuth := middleware.RequireAuth(rt.cookies, rt.tokens, rt.logger)
	optionalAuth := middleware.OptionalAuth(rt.cookies, rt.tokens, rt.logger)

	authHandler := handlers.NewAuthHandler(rt.authService, rt.tokens, rt.cookies, errorHandler, rt.logger)
	noteHandler := handlers.NewNoteHandler(rt.noteService, errorHandler, rt.logger)

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	router.Route("/api/notes", func(r chi.Router) {
		// Public read: auth optional, visibility decided per note
		r.With(optionalAuth).Get("/{noteID}", noteHandler.GetNote)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", noteHandler.ListNotes)
			r.Post("/", noteHandler.CreateNote)
			r.Put("/{noteID}", noteHandler.UpdateNote)
			r.Patch("/{noteID}", noteHandler.UpdateVisibility)
			r.Delete("/{noteID}", noteHandler.DeleteNote)
		})
	})

	// Unmatched routes get the JSON error body rather than the default
	// plain-text 404
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
