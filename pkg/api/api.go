// Package api exposes a roadmap store over HTTP.
//
// Routes mirror the store operations. Mutations addressing unknown ids
// answer 204 like any other no-op; malformed bodies answer 400 with a coded
// error, unknown edge endpoints 404 and prerequisite cycles 422.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/roadmap/pkg/config"
	"github.com/matzehuels/roadmap/pkg/observability"
	"github.com/matzehuels/roadmap/pkg/store"
)

// maxBodyBytes bounds request bodies; an imported roadmap is the largest.
const maxBodyBytes = 4 << 20

// Options configures the handler.
type Options struct {
	// Settings returns the current configuration. It is called per request,
	// so a hot-reloading loader can be plugged in. Defaults to config.Default.
	Settings func() *config.Config

	// Gatherer serves /metrics. Defaults to the Prometheus default registry.
	Gatherer prometheus.Gatherer

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Handler holds the HTTP handler dependencies.
type Handler struct {
	store    *store.Store
	settings func() *config.Config
	logger   *log.Logger
}

// New creates an HTTP handler serving st and registers all routes.
func New(st *store.Store, opts Options) http.Handler {
	h := &Handler{store: st, settings: opts.Settings, logger: opts.Logger}
	if h.settings == nil {
		h.settings = config.Default
	}
	if h.logger == nil {
		h.logger = log.Default()
	}

	metricsHandler := promhttp.Handler()
	if opts.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Get("/roadmap", h.getRoadmap)
	r.Post("/reset", h.reset)
	r.Post("/import", h.importRoadmap)
	r.Post("/layout", h.applyLayout)
	r.Put("/direction", h.setDirection)
	r.Get("/fit", h.fit)
	r.Get("/export", h.export)

	r.Put("/selection", h.selectNode)
	r.Delete("/selection", h.clearSelection)

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", h.addNode)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getNode)
			r.Delete("/", h.deleteNode)
			r.Patch("/", h.updateNode)
			r.Post("/children", h.addChild)
			r.Post("/toggle-expanded", h.toggleExpanded)
			r.Post("/toggle-collapse", h.toggleCollapse)
			r.Put("/status", h.setStatus)
			r.Put("/position", h.setPosition)
			r.Post("/duplicate", h.duplicate)
		})
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", h.addEdge)
		r.Delete("/{id}", h.deleteEdge)
	})

	return r
}

// observe reports every response to the HTTP hooks and the debug log.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		h.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
