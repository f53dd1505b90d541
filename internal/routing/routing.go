// Package routing wires the HTTP routes and middleware chain.
package routing

import (
	"net/http"

	"agora/internal/forum"
	"agora/internal/handlers"
	"agora/internal/middleware"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Users    forum.UserSource
	Logger   zerolog.Logger

	// Tracing enables the otelhttp wrapper. Off unless an exporter is
	// configured.
	Tracing bool
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Create CrossOriginProtection for CSRF protection
	cop := http.NewCrossOriginProtection()

	// Public endpoints
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Member-facing content routes
	mux.Handle("POST /api/topics", cop.Handler(http.HandlerFunc(h.CreateTopic)))
	mux.HandleFunc("GET /api/topics", h.ListTopics)
	mux.HandleFunc("GET /api/topics/{id}", h.GetTopic)
	mux.Handle("PUT /api/topics/{id}", cop.Handler(http.HandlerFunc(h.UpdateTopic)))
	mux.Handle("DELETE /api/topics/{id}", cop.Handler(http.HandlerFunc(h.DeleteTopic)))
	mux.Handle("POST /api/topics/{id}/posts", cop.Handler(http.HandlerFunc(h.CreatePost)))
	mux.HandleFunc("GET /api/topics/{id}/posts", h.ListPosts)
	mux.Handle("PUT /api/posts/{id}", cop.Handler(http.HandlerFunc(h.UpdatePost)))
	mux.Handle("DELETE /api/posts/{id}", cop.Handler(http.HandlerFunc(h.DeletePost)))
	mux.Handle("POST /api/votes", cop.Handler(http.HandlerFunc(h.Vote)))
	mux.Handle("POST /api/reports", cop.Handler(http.HandlerFunc(h.SubmitReport)))

	// Moderator routes
	mux.HandleFunc("GET /api/mod/reports", h.ListReports)
	mux.Handle("POST /api/mod/reports/{id}/resolve", cop.Handler(http.HandlerFunc(h.ResolveReport)))
	mux.Handle("POST /api/mod/reports/{id}/dismiss", cop.Handler(http.HandlerFunc(h.DismissReport)))
	mux.Handle("POST /api/mod/topics/{id}/pin", cop.Handler(http.HandlerFunc(h.TogglePin)))
	mux.Handle("POST /api/mod/topics/{id}/lock", cop.Handler(http.HandlerFunc(h.ToggleLock)))
	mux.Handle("POST /api/mod/topics/{id}/hide", cop.Handler(http.HandlerFunc(h.ToggleHideTopic)))
	mux.Handle("POST /api/mod/posts/{id}/hide", cop.Handler(http.HandlerFunc(h.ToggleHidePost)))
	mux.Handle("POST /api/mod/warnings", cop.Handler(http.HandlerFunc(h.WarnUser)))
	mux.HandleFunc("GET /api/mod/users/{id}/warnings", h.ListWarnings)
	mux.Handle("POST /api/mod/notes", cop.Handler(http.HandlerFunc(h.AddNote)))
	mux.HandleFunc("GET /api/mod/users/{id}/notes", h.ListNotes)
	mux.Handle("POST /api/mod/users/{id}/ban", cop.Handler(http.HandlerFunc(h.BanUser)))
	mux.Handle("POST /api/mod/quick/delete-and-ban", cop.Handler(http.HandlerFunc(h.DeleteAndBan)))
	mux.Handle("POST /api/mod/quick/hide-and-warn", cop.Handler(http.HandlerFunc(h.HideAndWarn)))
	mux.HandleFunc("GET /api/mod/audit", h.AuditLog)
	mux.HandleFunc("GET /api/mod/stats", h.ModStats)

	// Admin routes
	mux.Handle("POST /api/admin/users/{id}/unban", cop.Handler(http.HandlerFunc(h.UnbanUser)))
	mux.Handle("PUT /api/admin/moderators/{id}", cop.Handler(http.HandlerFunc(h.AddModerator)))
	mux.Handle("DELETE /api/admin/moderators/{id}", cop.Handler(http.HandlerFunc(h.RemoveModerator)))

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Request logging with metrics (sees the resolved actor)
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	// 2. Actor resolution from the identity header
	handler = middleware.ActorMiddleware(cfg.Users)(handler)

	// 3. Trace spans around everything request-scoped
	if cfg.Tracing {
		handler = otelhttp.NewHandler(handler, "http.request")
	}

	// 4. Response compression (outermost)
	handler = gzhttp.GzipHandler(handler)

	return handler
}
