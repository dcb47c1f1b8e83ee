package router

import (
	"net/http"
	"strings"

	"webbrowser/internal/api/v1/handler"
	"webbrowser/internal/api/v1/middleware"
	"webbrowser/internal/config"
)

func New(cfg *config.Config, h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheckHandler)
	mux.HandleFunc("POST /parse", h.ParseWebpage)
	mux.HandleFunc("GET /resources", h.ListResources)

	// Resource URIs carry "//", which ServeMux would clean and redirect,
	// so they are dispatched before the mux sees them.
	routes := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, handler.ResourcePrefix) {
			h.ReadResource(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	return middleware.RecoverPanic(
		middleware.Logging(
			middleware.MetricsMiddleware(
				middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(routes),
			),
		),
	)
}

func NewMetricsRouter() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", handler.MetricsHandler())
	return mux
}
