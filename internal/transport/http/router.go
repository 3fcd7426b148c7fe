package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type StockService interface {
	StockLister
	StockUpdater
}

type DonorService interface {
	DonorRegistrar
	DonorFinder
	DonorLister
	DonorUpdater
	DonorRemover
}

type RequestService interface {
	RequestSubmitter
	RequestLister
	RequestStatusUpdater
}

// MetricsCollector instruments the router and serves the scrape endpoint.
type MetricsCollector interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// RouterConfig holds the router's optional collaborators. With a nil Metrics
// no scrape route is registered; Ready pingers back GET /ready.
type RouterConfig struct {
	Logger      *slog.Logger
	CORSOrigins []string
	Metrics     MetricsCollector
	MetricsPath string
	Ready       []Pinger
}

// NewRouter wires every endpoint of the service.
func NewRouter(cfg RouterConfig, stock StockService, donors DonorService, requests RequestService) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return RequestLogger(next, logger)
	})
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         300,
	}))

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	r.Get("/ready", HandleReady(cfg.Ready...))
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.Metrics.Handler())
	}

	r.Get("/blood-stock", HandleListStock(stock))
	r.Put("/blood-stock", HandleUpdateStock(stock))

	r.Route("/donors", func(r chi.Router) {
		r.Get("/", HandleListDonors(donors))
		r.Post("/", HandleRegisterDonor(donors))
		r.Get("/{id}", HandleGetDonor(donors))
		r.Put("/{id}", HandleUpdateDonor(donors))
		r.Delete("/{id}", HandleDeleteDonor(donors))
	})

	r.Route("/requests", func(r chi.Router) {
		r.Get("/", HandleListRequests(requests))
		r.Post("/", HandleSubmitRequest(requests))
		r.Put("/{id}/status", HandleUpdateRequestStatus(requests))
	})

	return r
}
