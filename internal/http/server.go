package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"hisab/internal/log"
	"hisab/internal/reports"
	"hisab/internal/storage"
)

type contextKey string

const (
	ownerIDKey   contextKey = "owner_id"
	requestIDKey contextKey = "request_id"
)

// ownerID returns the resolved owner identity for the request. The identity
// provider in front of the service injects it as X-User-ID; the middleware
// rejects requests without one, so handlers can rely on it being set.
func ownerID(r *http.Request) string {
	v, _ := r.Context().Value(ownerIDKey).(string)
	return v
}

// Server is the JSON API surface. It embeds http.Server so callers get
// ListenAndServe for free; Shutdown additionally stops the background
// cleanup goroutines.
type Server struct {
	http.Server
	storage   *storage.Repository
	generator *reports.Generator

	rateLimiter    *rateLimiter
	dashboardCache *lruCache[dashboardJSON]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Per-client token buckets with stale-entry cleanup.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientLimiter
	limit        rate.Limit
	burst        int
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientLimiter),
		limit:       rate.Limit(1), // 60 requests per minute
		burst:       10,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(clientKey string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, exists := rl.clients[clientKey]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientKey] = client
	}
	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for key, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, repo *storage.Repository, gen *reports.Generator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		storage:          repo,
		generator:        gen,
		rateLimiter:      newRateLimiter(),
		dashboardCache:   newLRUCache[dashboardJSON](500, 30*time.Second),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.protect(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.protect(s.handleCreateCategory))

	mux.HandleFunc("GET /api/transactions", s.protect(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.protect(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.protect(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protect(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protect(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/reports/dashboard", s.protect(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/daily", s.protect(s.handleListDailyReports))
	mux.HandleFunc("POST /api/reports/generate", s.protect(s.handleGenerateReport))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.dashboardCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// protect wraps a handler with the full middleware chain: owner identity,
// request tracing, rate limiting, and security headers.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		owner := r.Header.Get("X-User-ID")
		if owner == "" {
			slog.WarnContext(ctx, "Request without owner identity",
				log.FieldRequestID, requestID,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, clientIP)
			writeError(w, http.StatusUnauthorized, "missing owner identity", "")
			return
		}
		ctx = context.WithValue(ctx, ownerIDKey, owner)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldOwnerID, owner,
			log.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.storage.ListPendingExportReports(r.Context(), 1); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
