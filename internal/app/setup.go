// Package app wires the product proxy: record store, gateway, HTTP and gRPC servers.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productproxy/internal/config"
	"github.com/abgdnv/productproxy/internal/recordstore"
	"github.com/abgdnv/productproxy/internal/service"
	"github.com/abgdnv/productproxy/internal/transport/rest"
	"github.com/abgdnv/productproxy/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/productproxy/pkg/config"
	"github.com/abgdnv/productproxy/pkg/messaging"
	"github.com/abgdnv/productproxy/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Dependencies struct {
	ProductService service.ProductService
	Metrics        http.Handler
	Health         *health.Server
	Logger         *slog.Logger
}

// NewRecordStore builds the store selected by cfg.Mode.
func NewRecordStore(cfg pkgconfig.RecordStoreConfig, logger *slog.Logger) (recordstore.Store, error) {
	switch cfg.Mode {
	case pkgconfig.RecordStoreModeMemory:
		logger.Warn("Using in-memory record store, data is lost on restart")
		return recordstore.NewInMemory(), nil
	case pkgconfig.RecordStoreModeHTTP, "":
		return recordstore.NewHTTPStore(bootstrap.NewStoreClient(cfg, logger), cfg.URL), nil
	default:
		return nil, fmt.Errorf("unknown record store mode: %s", cfg.Mode)
	}
}

// SetupDependencies builds the gateway over store. publisher may be nil, metrics may be nil.
func SetupDependencies(store recordstore.Store, publisher messaging.Publisher, metrics http.Handler, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(store, publisher, logger),
		Metrics:        metrics,
		Health:         health.NewServer(),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the routes for the product proxy.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return server.Instrument(mux, "product-proxy")
}

// wireRoutes sets up the HTTP routes for the product proxy.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// SetupHttpServer creates and configures an HTTP server for the product proxy.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(deps.Health))
}
