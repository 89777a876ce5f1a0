// Package ratelimit limits how often a client may call the write endpoints.
package ratelimit

import (
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per client IP in fixed windows. A client's window
// opens with its first request and lasts Config.Window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	hits    atomic.Int64

	limit      int
	length     time.Duration
	staleAfter time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start    time.Time
	lastSeen time.Time
	count    int
}

// Config holds rate limiter configuration. Zero fields take the defaults.
type Config struct {
	RequestsPerMinute int
	Window            time.Duration
	// StaleAfter drops clients idle for longer than this.
	StaleAfter      time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig allows 60 submissions per minute and per client.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		Window:            time.Minute,
		StaleAfter:        10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine; call Stop
// to end it.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = def.StaleAfter
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		clients:    make(map[string]*window),
		limit:      config.RequestsPerMinute,
		length:     config.Window,
		staleAfter: config.StaleAfter,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go l.cleanupLoop(config.CleanupInterval)
	return l
}

// Allow records a request from clientIP and reports whether it is within
// the limit.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.start) >= l.length {
		l.clients[clientIP] = &window{start: now, lastSeen: now, count: 1}
		return true
	}

	w.count++
	w.lastSeen = now
	if w.count > l.limit {
		l.hits.Add(1)
		return false
	}
	return true
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupStaleEntries()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) cleanupStaleEntries() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.staleAfter)
	for ip, w := range l.clients {
		if w.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// ActiveClients returns the number of clients currently tracked.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Hits returns how many requests were refused.
func (l *Limiter) Hits() int64 {
	return l.hits.Load()
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware limits requests whose method is in methods (all methods when
// empty). onLimit writes the refusal; nil means a plain 429.
func (l *Limiter) Middleware(clientIP func(*http.Request) string, onLimit http.HandlerFunc, methods ...string) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			counted := len(methods) == 0 || slices.Contains(methods, r.Method)
			if counted && !l.Allow(clientIP(r)) {
				onLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
