// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/domain/geo"
	"locallens/internal/server/handlers"
)

// Dependencies are the collaborators the HTTP surface is built on.
// Snapshots and Subscriber are optional.
type Dependencies struct {
	Aggregator    content.Aggregator
	Snapshots     handlers.SnapshotLister
	SnapshotLimit int
	Feed          content.PostFeed
	Posts         content.PostSource
	Events        content.EventFinder
	EventsConfig  config.EventsConfig
	Geocoder      geo.Geocoder
	Subscriber    handlers.Subscriber
	Logger        *log.Logger
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := NewRouter(cfg, deps)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the route tree
func NewRouter(cfg config.ServerConfig, deps Dependencies) *chi.Mux {
	router := chi.NewRouter()

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	logger := deps.Logger.WithPrefix("http")

	// Create handler dependencies
	newsHandler := handlers.NewNewsHandler(deps.Aggregator, deps.Snapshots, deps.SnapshotLimit, logger)
	postsHandler := handlers.NewPostsHandler(deps.Feed, deps.Posts, logger)
	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.EventsConfig.DefaultRadius, deps.EventsConfig.DefaultPageSize, logger)
	geoHandler := handlers.NewGeoHandler(deps.Geocoder, logger)
	imageHandler := handlers.NewImageProxyHandler(requestTimeout, logger)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// News API
			r.Route("/news", func(r chi.Router) {
				r.Get("/", newsHandler.GetNews)
				r.Get("/snapshots", newsHandler.GetSnapshots)
			})

			// Community posts
			r.Get("/posts", postsHandler.GetPosts)
			r.Get("/reddit", postsHandler.GetSubreddit)

			// Events API
			r.Get("/events", eventsHandler.GetEvents)

			// Geo API
			r.Route("/geo", func(r chi.Router) {
				r.Get("/search", geoHandler.Search)
				r.Get("/reverse", geoHandler.Reverse)
			})

			r.Get("/proxy-image", imageHandler.ProxyImage)
		})
	})

	router.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint for aggregation events
	if deps.Subscriber != nil {
		router.Get("/ws/news", handlers.NewsWebSocketHandler(deps.Subscriber, deps.Snapshots, logger))
	}

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
