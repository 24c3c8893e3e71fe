package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/game-store/api-contract"
	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/http/apierr"
	"github.com/tuanvumaihuynh/game-store/internal/http/metric"
	"github.com/tuanvumaihuynh/game-store/internal/http/middleware"
	"github.com/tuanvumaihuynh/game-store/internal/http/swagger"
	"github.com/tuanvumaihuynh/game-store/internal/service"
	"github.com/tuanvumaihuynh/game-store/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics
	router   routers.Router

	catalog service.ProductCatalog
	ledger  service.SaleLedger
	stats   service.StatisticsService
	health  db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

// New creates the HTTP service. health may be nil when the store has no
// remote dependency to probe.
func New(
	cfg config.HTTP,
	log *slog.Logger,
	catalog service.ProductCatalog,
	ledger service.SaleLedger,
	stats service.StatisticsService,
	health db.HealthChecker,
) (*Service, error) {
	router, err := newContractRouter()
	if err != nil {
		return nil, fmt.Errorf("new contract router: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:      cfg,
		logger:   log.With(slog.String("service", "http")),
		registry: registry,
		metrics:  metric.New(registry),
		router:   router,
		catalog:  catalog,
		ledger:   ledger,
		stats:    stats,
		health:   health,
	}, nil
}

func newContractRouter() (routers.Router, error) {
	doc, err := apicontract.Load()
	if err != nil {
		return nil, err
	}

	return legacy.NewRouter(doc)
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler builds the full router with middlewares and routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.CorrelationID(),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
		middleware.OpenAPIValidator(s.router),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.catalog)
	sales := newSaleHandler(s.ledger)
	statistics := newStatisticsHandler(s.stats)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handle(products.List))
			r.Post("/", s.handle(products.Create))
			r.Get("/low-stock", s.handle(products.LowStock))
			r.Get("/{id}", s.handle(products.Get))
			r.Put("/{id}", s.handle(products.Update))
			r.Delete("/{id}", s.handle(products.Delete))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", s.handle(sales.List))
			r.Post("/", s.handle(sales.Create))
			r.Get("/statistics", s.handle(statistics.Get))
			r.Get("/{id}", s.handle(sales.Get))
			r.Delete("/{id}", s.handle(sales.Delete))
		})
	})

	r.Get(middleware.HealthPath, s.handle(s.healthz))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, apierr.NotFoundErr.StatusCode, apierr.NotFoundErr)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, apierr.MethodNotAllowedErr.StatusCode, apierr.MethodNotAllowedErr)
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) error {
	if s.health != nil {
		healthy, err := s.health.IsHealthy(r.Context())
		if err != nil || !healthy {
			return apperr.StoreUnavailableErr.WrapParent(err)
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	return nil
}

// handle adapts a handler returning an error to http.HandlerFunc.
func (s *Service) handle(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	writeJSON(w, res.StatusCode, res)
}
