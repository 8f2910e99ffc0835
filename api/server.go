/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the back-office frontend
  5. Metrics:    Prometheus request counters/latency

ROUTE GROUPS:
  /api/royalty/*   Royalty calculation, books, statements, reference data
  /metrics         Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. The server runs inside the back office's
  private network; auth and tenancy live at the gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Statement-Available"},
		AllowCredentials: true,
	}))
	r.Use(metricsMiddleware)

	// API routes
	r.Route("/api/royalty", func(r chi.Router) {
		r.Get("/", h.Info)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.ListBooks)
			r.Post("/", h.SaveBook)
			r.Delete("/", h.DeleteBook)
		})

		r.Post("/calculate", h.Calculate)
		r.Post("/render", h.RenderStatement)

		r.Route("/statements", func(r chi.Router) {
			r.Post("/", h.SaveStatements)
			r.Get("/{party}/{name}", h.ListPersonStatements)
			r.Delete("/{party}/{name}", h.DeleteStatement)
		})

		r.Get("/contract-tokens/{uid}", h.ContractTokens)
		r.Get("/categories", h.ListCategories)
		r.Get("/format-types", h.ListFormatTypes)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Royalty Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Royalty Engine API</h1>
<ul>
<li><a href="/api/royalty/">/api/royalty/</a> - API index</li>
<li><a href="/api/royalty/books">/api/royalty/books</a> - List books</li>
<li><a href="/metrics">/metrics</a> - Prometheus metrics</li>
</ul>
</body>
</html>`))
	})

	return r
}
