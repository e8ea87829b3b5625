// Package http serves the artwork API, the release listings and operational endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coverart/internal/backend"
	"coverart/internal/core"
	"coverart/internal/flood"
)

const (
	serviceName     = "coverart"
	shutdownTimeout = 10 * time.Second
	// maxArtworkFanOut limits concurrent artwork lookups per release listing.
	maxArtworkFanOut = 8
)

// ArtworkResolver resolves media references to artwork URLs.
type ArtworkResolver interface {
	Resolve(ctx context.Context, mediaURL string) (string, error)
}

// Catalog reads releases and shows from the site API.
type Catalog interface {
	ListReleases(ctx context.Context) ([]backend.Release, error)
	GetRelease(ctx context.Context, urlTitle string) (*backend.Release, error)
	ListShows(ctx context.Context) ([]backend.Show, error)
	UpcomingShows(ctx context.Context) (*backend.UpcomingShows, error)
}

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

// handlers bundles the dependencies of the API routes.
type handlers struct {
	logger   *zap.Logger
	metrics  *Metrics
	resolver ArtworkResolver
	catalog  Catalog
	limiter  *flood.Floodgate
}

// NewServer wires the routes. A nil limiter leaves the artwork endpoint unlimited.
func NewServer(
	config *core.ServerConfig,
	logger *zap.Logger,
	metrics *Metrics,
	resolver ArtworkResolver,
	catalog Catalog,
	limiter *flood.Floodgate,
) *Server {
	h := &handlers{
		logger:   logger,
		metrics:  metrics,
		resolver: resolver,
		catalog:  catalog,
		limiter:  limiter,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  createHTTPServer(config, setupRoutes(h)),
		metrics: metrics,
	}
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func setupRoutes(h *handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, h.logger, `{"status":"ok","service":"`+serviceName+`"}`)
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, h.logger, `{"status":"ready","service":"`+serviceName+`"}`)
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/artwork", h.instrument("artwork", h.rateLimited(h.artwork)))
	mux.HandleFunc("GET /api/releases", h.instrument("releases", h.listReleases))
	mux.HandleFunc("GET /api/releases/{urlTitle}", h.instrument("release", h.getRelease))
	mux.HandleFunc("GET /api/shows", h.instrument("shows", h.listShows))
	mux.HandleFunc("GET /api/shows/upcoming", h.instrument("upcoming_shows", h.upcomingShows))

	mux.HandleFunc("GET /{$}", homeHandler(h.logger))

	return mux
}

func writeStatus(w http.ResponseWriter, logger *zap.Logger, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Debug("Failed to write status response", zap.Error(err))
	}
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(homePage)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>Coverart</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">Coverart</h1>
    <p>SoundCloud artwork resolution for the release pages</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><a href="/api/releases">Releases</a> - Releases with artwork</div>
    <div class="endpoint"><a href="/api/shows">Shows</a> - All shows</div>
    <div class="endpoint"><a href="/api/shows/upcoming">Upcoming shows</a> - Shows still to come</div>
    <div class="endpoint">/api/artwork?url=&lt;track url&gt; - Artwork for a single track</div>
    <div class="endpoint"><a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint"><a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint"><a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handlers) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		h.metrics.RecordRequest(route, strconv.Itoa(rec.status))
	}
}

// rateLimited rejects requests from clients that exceeded their allowance.
func (h *handlers) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if ip == "" {
			ip = r.RemoteAddr
		}

		if !h.limiter.Allow(ip) {
			w.Header().Set("Retry-After", "60")
			h.writeError(w, http.StatusTooManyRequests, errors.New("too many requests, try again later"))
			return
		}

		next(w, r)
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}
