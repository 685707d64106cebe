package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	healthhandler "geodados/ms_municipios/internal/adapters/http/health"
	municipalityhandler "geodados/ms_municipios/internal/adapters/http/municipality"
	"geodados/ms_municipios/internal/infrastructure/config"
	custommiddleware "geodados/ms_municipios/internal/infrastructure/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps collects everything the router wires together.
type RouterDeps struct {
	Municipality *municipalityhandler.Handler
	Health       *healthhandler.Handler
	RateLimit    config.RateLimitSettings
	StaticDir    string
	Logger       *slog.Logger
}

// NewRouter assembles the middleware chain and mounts all routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.CORS)

	if deps.RateLimit.Enabled {
		limiter := custommiddleware.NewRateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst, deps.Logger)
		r.Use(limiter.Handler)
	}

	r.Get("/health", deps.Health.Status)
	deps.Municipality.Register(r)

	mountStatic(r, deps.StaticDir, deps.Logger)

	return r
}

// mountStatic serves the bundled web page from the configured directory.
// A missing directory is logged and skipped so API-only deployments work.
func mountStatic(r chi.Router, dir string, log *slog.Logger) {
	if dir == "" {
		return
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Warn("static directory unresolved, skipping", "dir", dir, "error", err)
		return
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		log.Warn("static directory not found, skipping", "dir", abs)
		return
	}

	fs := http.FileServer(http.Dir(abs))
	r.Get("/", fs.ServeHTTP)
	r.Get("/js/*", fs.ServeHTTP)
	r.Get("/css/*", fs.ServeHTTP)
	r.Get("/index.html", fs.ServeHTTP)
}
