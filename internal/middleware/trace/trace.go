// Package trace assigns request IDs and logs every request once it completes.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"orcamento/internal/log"
)

type contextKey struct{}

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// maxIncomingID bounds request IDs accepted from clients.
const maxIncomingID = 64

// Middleware tags each request with an ID and a request scoped logger and
// counts responses by status class.
type Middleware struct {
	clientIP func(*http.Request) string
	logger   *log.Logger
	slog     *log.StructuredLogger

	total   atomic.Int64
	byClass [6]atomic.Int64
}

// NewMiddleware creates a trace middleware. clientIP may be nil.
func NewMiddleware(logger *log.Logger, clientIP func(*http.Request) string) *Middleware {
	return &Middleware{
		clientIP: clientIP,
		logger:   logger,
		slog:     log.NewStructuredLogger(logger),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := ""
		if m.clientIP != nil {
			ip = m.clientIP(r)
		}

		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxIncomingID {
			id = NewRequestID()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := context.WithValue(r.Context(), contextKey{}, id)
		ctx = log.NewContext(ctx, m.logger.With(log.FieldRequestID, id))
		r = r.WithContext(ctx)

		m.total.Add(1)
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		if class := rw.status / 100; class > 0 && class < len(m.byClass) {
			m.byClass[class].Add(1)
		}
		m.slog.LogHTTPEnd(ctx, r, rw.status, time.Since(start).Milliseconds(), ip)
	})
}

// Total returns the number of requests received, including those in flight.
func (m *Middleware) Total() int64 {
	return m.total.Load()
}

// Responses returns how many responses had a status in class (2 for 2xx).
func (m *Middleware) Responses(class int) int64 {
	if class <= 0 || class >= len(m.byClass) {
		return 0
	}
	return m.byClass[class].Load()
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// NewRequestID returns a fresh random request ID.
func NewRequestID() string {
	return "req_" + uuid.NewString()
}

// RequestID returns the ID stored by Middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
