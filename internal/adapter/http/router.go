package http

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/waterorder/internal/app"
)

// RouterConfig holds the inbound HTTP settings.
type RouterConfig struct {
	ServiceName string
	Version     string
	// Credentials maps user names to passwords for HTTP basic auth.
	Credentials map[string]string
	Logger      *slog.Logger
}

// NewRouter builds the chi router with middleware and the water order API.
// Every route, including the API docs, sits behind basic auth.
func NewRouter(svc *app.OrderService, cfg RouterConfig) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.BasicAuth(cfg.ServiceName, cfg.Credentials))

	api := humachi.New(router, huma.DefaultConfig(cfg.ServiceName, cfg.Version))
	Register(api, svc)

	return router
}
