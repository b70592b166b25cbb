package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/geoprofiles/backend/internal/handlers"
	appMiddleware "github.com/geoprofiles/backend/internal/middleware"
	"github.com/geoprofiles/backend/internal/models"
	"github.com/geoprofiles/backend/internal/services"
	"github.com/geoprofiles/backend/internal/validation"
)

// Options wires the router to its collaborators.
type Options struct {
	Profiles       *services.ProfileService
	Friendships    *services.FriendshipService
	Validator      *validation.Validator
	Logger         *zap.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the HTTP routes.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	profileHandler := handlers.NewProfileHandler(opts.Profiles, opts.Validator, log, opts.RequestTimeout)
	friendHandler := handlers.NewFriendHandler(opts.Profiles, opts.Friendships, log, opts.RequestTimeout)
	metrics := appMiddleware.NewMetrics(opts.Registry)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(metrics.Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	unknown := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.NewErrorResponse("unknown endpoint"))
	}
	r.NotFound(unknown)
	r.MethodNotAllowed(unknown)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", profileHandler.ListProfiles)
		r.Post("/", profileHandler.CreateProfile)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
			r.Delete("/", profileHandler.DeleteProfile)

			r.Get("/friends", friendHandler.ListFriends)
			r.Put("/friends", friendHandler.AddFriend)
			r.Get("/distance/{otherId}", profileHandler.Distance)
		})
	})

	return r
}

// Server owns the HTTP listener.
type Server struct {
	http *http.Server
	log  *zap.Logger
}

func New(addr string, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server starting", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
