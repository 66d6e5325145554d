package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/cardsearch/internal/api/websocket"
	"github.com/ramonehamilton/cardsearch/internal/cache"
	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

// requestTimeout bounds a single request. A full aggregation of a broad query
// walks hundreds of pages, so this is generous.
const requestTimeout = 5 * time.Minute

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	frontendURL    string
	debug          bool
	includeDigital bool

	// WebSocket hub for state events
	wsHub *websocket.Hub

	session *session.Session
	metrics *metrics.SearchMetrics
	store   cache.Store
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	FrontendURL string // Allowed browser origin; empty allows localhost origins
	Debug       bool

	// IncludeDigital applies to searches that do not say otherwise
	IncludeDigital bool
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:        8080,
		FrontendURL: "",
	}
}

// Services holds what the routes are served from.
type Services struct {
	Session *session.Session
	Metrics *metrics.SearchMetrics
	Store   cache.Store
}

// NewServer creates a new API server and registers the WebSocket hub as a
// session observer.
func NewServer(cfg *Config, services *Services) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	wsHub := websocket.NewHub(cfg.FrontendURL)
	wsHub.SetWelcome(websocket.Welcome(services.Session))
	services.Session.Observe(websocket.NewSessionObserver(wsHub, cfg.Debug))

	s := &Server{
		router:      chi.NewRouter(),
		port:        cfg.Port,
		frontendURL:    cfg.FrontendURL,
		debug:          cfg.Debug,
		includeDigital: cfg.IncludeDigital,
		wsHub:          wsHub,
		session:        services.Session,
		metrics:        services.Metrics,
		store:          services.Store,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(requestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT only
	s.router.Use(jsonContentTypeMiddleware)
}

func (s *Server) allowedOrigins() []string {
	if s.frontendURL != "" {
		return []string{strings.TrimRight(s.frontendURL, "/")}
	}
	return []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"}
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the hub and the HTTP listener in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
