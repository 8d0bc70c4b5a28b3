package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"brigade/internal/staffing/handler"
	"brigade/pkg/config"
	"brigade/pkg/contracts"
	"brigade/pkg/middleware"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.RateLimiter
	healthHandler    *http.Handler
	apiHandler       *http.Handler
	publicHandler    *http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp builds the three route groups: health endpoints with minimal
// middleware, the operator API, and the public response surface, which
// additionally gets per-IP rate limiting and idempotency caching.
func (a *Application) SetApp(apiHandlers []contracts.Handler, publicHandlers []contracts.Handler) {
	a.setHealthHandler()
	a.setAPIHandler(apiHandlers)
	a.setPublicHandler(publicHandlers)
	a.setAppServer()
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(a.cfg.Client.Mongo.Client, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = &healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAPIHandler(apiHandlers []contracts.Handler) {
	apiRouter := httprouter.New()
	for _, h := range apiHandlers {
		h.RegisterRoutes(apiRouter)
	}

	var apiHTTPHandler http.Handler = apiRouter
	apiHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(apiHTTPHandler)
	apiHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(apiHTTPHandler)
	apiHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(apiHTTPHandler)
	apiHTTPHandler = middleware.RequestLogging(a.cfg.Log)(apiHTTPHandler)
	apiHTTPHandler = middleware.Recovery(a.cfg.Log)(apiHTTPHandler)
	a.apiHandler = &apiHTTPHandler
	a.cfg.Log.Info("API endpoints configured")
}

func (a *Application) setPublicHandler(publicHandlers []contracts.Handler) {
	publicRouter := httprouter.New()
	for _, h := range publicHandlers {
		h.RegisterRoutes(publicRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.ClientIPExtractor,
		a.cfg.Log,
	)

	var publicHTTPHandler http.Handler = publicRouter
	publicHTTPHandler = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(publicHTTPHandler)
	publicHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(publicHTTPHandler)
	publicHTTPHandler = middleware.RateLimit(a.rateLimiter)(publicHTTPHandler)
	publicHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(publicHTTPHandler)
	publicHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(publicHTTPHandler)
	publicHTTPHandler = middleware.RequestLogging(a.cfg.Log)(publicHTTPHandler)
	publicHTTPHandler = middleware.Recovery(a.cfg.Log)(publicHTTPHandler)
	a.publicHandler = &publicHTTPHandler
	a.cfg.Log.Info("Public endpoints configured with rate limiting and idempotency")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", *a.healthHandler)
	mux.Handle("/ready", *a.healthHandler)
	mux.Handle("/public/", *a.publicHandler)
	mux.Handle("/", *a.apiHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
