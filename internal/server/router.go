package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BST1120/mapper2/internal/config"
	"github.com/BST1120/mapper2/internal/handler"
	"github.com/BST1120/mapper2/internal/service"
)

// NewRouter wires HTTP routes and middleware. Reads are open; mutations sit
// behind the per-tenant edit session.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	registry *prometheus.Registry,
	sessions service.SessionService,
	health handler.HealthHandler,
	session handler.SessionHandler,
	tenant handler.TenantHandler,
	board handler.BoardHandler,
	snapshot handler.SnapshotHandler,
	timeline handler.TimelineHandler,
	audit handler.AuditHandler,
	roster handler.RosterHandler,
	ws *handler.WSHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Identity-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Open: auth, provisioning and every read model. The websocket route
	// skips the timeout middleware group on purpose; it is long-lived.
	session.RegisterRoutes(r)
	tenant.RegisterRoutes(r)
	ws.RegisterRoutes(r)
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Timeout(60 * time.Second))
		snapshot.RegisterRoutes(pr)
		timeline.RegisterRoutes(pr)
		audit.RegisterRoutes(pr)
	})

	// Mutations require an edit session.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Timeout(60 * time.Second))
		pr.Use(EditSessionMiddleware(sessions))
		board.RegisterRoutes(pr)
		roster.RegisterRoutes(pr)
		session.RegisterProtectedRoutes(pr)
	})

	return r
}
