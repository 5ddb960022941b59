package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/lmittmann/tint"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/summary-content/pkg/summarycontent/api"
	"github.com/tendant/summary-content/pkg/summarycontent/config"
)

func main() {
	configFile := flag.String("config", "", "config file (YAML, JSON, TOML or .env); environment variables override it")
	flag.Parse()

	opts := []config.Option{}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	opts = append(opts, config.WithEnv())

	serverConfig, err := config.Load(opts...)
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(serverConfig.Environment))

	ctx := context.Background()
	aggregator, pool, err := serverConfig.BuildAggregator(ctx)
	if err != nil {
		slog.Error("Failed to build aggregator", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	server, err := NewHTTPServer(aggregator, serverConfig)
	if err != nil {
		slog.Error("Failed to create HTTP server", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Summary content server starting", "port", serverConfig.Port, "env", serverConfig.Environment, "schema", serverConfig.DBSchema)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
	}

	slog.Info("Server exiting")
}

// newLogger prints colorized text in development and JSON everywhere else
func newLogger(environment string) *slog.Logger {
	if environment == "development" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// HTTPServer exposes the content summaries over HTTP
type HTTPServer struct {
	finder api.SummaryFinder
	config *config.ServerConfig
	auth   func(http.Handler) http.Handler
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(finder api.SummaryFinder, serverConfig *config.ServerConfig) (*HTTPServer, error) {
	auth, err := api.AuthMiddleware(serverConfig.AuthConfig())
	if err != nil {
		return nil, err
	}
	return &HTTPServer{
		finder: finder,
		config: serverConfig,
		auth:   auth,
	}, nil
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(httplog.NewLogger("summary-content", httplog.Options{
		LogLevel: slog.LevelInfo,
		JSON:     s.config.Environment != "development",
		Concise:  true,
	})))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if s.config.Environment == "development" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-KEY"},
			MaxAge:         300,
		}))
	}

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)

	contents := api.NewContentsHandler(s.finder, api.WithPageSizes(s.config.DefaultPageSize, s.config.MaxPageSize))
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.auth)
			r.Mount("/contents", contents.Routes())
		})
	})

	return r
}
