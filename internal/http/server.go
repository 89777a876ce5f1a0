package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
	"orcamento/internal/log"
	"orcamento/internal/middleware/ratelimit"
	"orcamento/internal/middleware/security"
	"orcamento/internal/middleware/trace"
	appweb "orcamento/web"
)

const (
	// readyTimeout bounds the budget API ping behind /readyz.
	readyTimeout = 5 * time.Second
	// staticMaxAge is the Cache-Control max-age of embedded assets.
	staticMaxAge = 3600
)

// Dashboard is the controller behind the pages.
type Dashboard interface {
	Load(ctx context.Context) dashboard.View
	Submit(ctx context.Context, form dashboard.FormState) dashboard.SubmitResult
}

// Pinger checks that the budget API answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the dashboard page and its htmx partials.
type Server struct {
	http.Server
	renderer *Renderer
	dash     Dashboard
	pinger   Pinger
	logger   *log.Logger

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	appMetrics      *appMetrics

	shutdownOnce sync.Once
}

// appMetrics counts submissions by outcome.
type appMetrics struct {
	uptime   time.Time
	accepted int64
	rejected int64
	failed   int64
	invalid  int64
}

func (m *appMetrics) count(outcome core.Outcome) {
	switch outcome {
	case core.OutcomeAccepted:
		atomic.AddInt64(&m.accepted, 1)
	case core.OutcomeRejected:
		atomic.AddInt64(&m.rejected, 1)
	case core.OutcomeFailed:
		atomic.AddInt64(&m.failed, 1)
	case core.OutcomeInvalid:
		atomic.AddInt64(&m.invalid, 1)
	}
}

// NewServer configures routes and middleware. pinger may be nil, in which
// case /readyz only checks the templates.
func NewServer(addr string, dash Dashboard, pinger Pinger, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		renderer:    renderer,
		dash:        dash,
		pinger:      pinger,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		appMetrics:  &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, extractClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/dashboard", s.handleDashboard)
	mux.HandleFunc("/ui/expenses", s.handleCreateExpense)
	mux.HandleFunc("/ui/form", s.handleFormEvent)
	mux.HandleFunc(dashboard.NavPath, s.handleNav)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(extractClientIP, s.handleRateLimited, http.MethodPost)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
