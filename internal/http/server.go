package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"donatrack/internal/cache"
	"donatrack/internal/core"
	"donatrack/internal/form"
	"donatrack/internal/log"
	"donatrack/internal/metrics"
	"donatrack/internal/middleware/ratelimit"
	"donatrack/internal/middleware/security"
	"donatrack/internal/middleware/trace"
	"donatrack/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Records is the service surface the handlers need.
type Records interface {
	store.RecordStore
	Remove(ctx context.Context, kind core.Kind, id string) error
	Stats(ctx context.Context) (core.Stats, error)
}

// Options tunes the server. Zero values pick the defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	MaxSessions        int
	SessionTTL         time.Duration
	IdempotencyTTL     time.Duration
	CacheSweepInterval time.Duration
	ReadyTimeout       time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(log.DefaultConfig())
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = ratelimit.DefaultConfig().RequestsPerMinute
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = form.DefaultMaxSessions
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = form.DefaultSessionTTL
	}
	if o.IdempotencyTTL <= 0 {
		o.IdempotencyTTL = 24 * time.Hour
	}
	if o.CacheSweepInterval <= 0 {
		o.CacheSweepInterval = 10 * time.Minute
	}
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = 2 * time.Second
	}
	return o
}

// Server wraps http.Server with the record API and its background helpers.
type Server struct {
	http.Server
	records      Records
	sessions     *form.Sessions
	idempotency  *cache.LRUCache[*idempotentEntry]
	caches       *cache.Manager
	limiter      *ratelimit.Limiter
	logger       *log.Logger
	readyTimeout time.Duration
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// HTTP/2 is served in cleartext alongside HTTP/1.1.
func NewServer(addr string, records Records, opts Options) *Server {
	opts = opts.withDefaults()

	s := &Server{
		records:      records,
		sessions:     form.NewSessions(opts.MaxSessions, opts.SessionTTL),
		idempotency:  cache.NewLRUCache[*idempotentEntry](maxIdempotencyKeys, opts.IdempotencyTTL),
		caches:       cache.NewManager(opts.Logger.WithComponent(log.ComponentCache).Logger),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		logger:       opts.Logger,
		readyTimeout: opts.ReadyTimeout,
	}
	s.caches.Register(s.sessions.Cache())
	s.caches.Register(s.idempotency)
	s.caches.StartCleanup(opts.CacheSweepInterval)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(s.routes(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

func (s *Server) routes() http.Handler {
	ips := security.NewClientIPResolver()
	tracer := trace.NewMiddleware(ips.ClientIP,
		log.NewStructuredLogger(s.logger.WithComponent(log.ComponentHTTP)), observeRequest)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(tracer.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
		r.Use(s.limiter.Middleware(ips.ClientIP, ratelimit.MutatingOnly, handleRateLimited))

		r.Get("/stats", s.handleStats)

		r.Route("/forms", func(r chi.Router) {
			r.Use(log.ComponentMiddleware(log.ComponentForms))
			r.Get("/{kind}", s.handleFormSchema)
			r.Post("/{kind}/sessions", s.handleOpenSession)
			r.Get("/sessions/{sid}", s.handleGetSession)
			r.Put("/sessions/{sid}/fields/{key}", s.handleSetField)
			r.Post("/sessions/{sid}/submit", s.handleSubmitSession)
			r.Delete("/sessions/{sid}", s.handleDiscardSession)
		})

		r.Route("/{kind}", func(r chi.Router) {
			r.Use(log.ComponentMiddleware(log.ComponentRecords))
			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Get("/{id}", s.handleGet)
			r.Patch("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleDelete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: "method not allowed"})
	})
	return r
}

// observeRequest feeds the request histogram, labelled by route pattern so
// record ids do not explode the label space.
func observeRequest(r *http.Request, status int, elapsed time.Duration) {
	route := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			route = p
		}
	}
	metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, ErrorBody{Error: "rate limit exceeded"})
}

// Sessions exposes the form session registry.
func (s *Server) Sessions() *form.Sessions {
	return s.sessions
}

// Shutdown stops background cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
		if errors.Is(shutdownErr, http.ErrServerClosed) {
			shutdownErr = nil
		}
	})
	return shutdownErr
}
