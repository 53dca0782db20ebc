package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/matijazezelj/fuelnet/internal/config"
	"github.com/matijazezelj/fuelnet/internal/source"
)

// Server is the fuelnet HTTP server providing the REST API.
//
// The network is not safe for concurrent use, so every handler holds mu:
// queries take the read lock, mutations and reloads the write lock.
type Server struct {
	mu      sync.RWMutex
	network *source.Network

	logger     *slog.Logger
	listen     string
	readOnly   bool
	apiToken   string
	corsOrigin string
	srv        *http.Server
	done       chan struct{}
	stopOnce   sync.Once

	// rate limiter state
	limiters sync.Map // map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// limiterIdle is how long a client may stay silent before its limiter is
// dropped.
const limiterIdle = 10 * time.Minute

type ctxKey int

const requestIDKey ctxKey = iota

// New creates a new Server serving network.
func New(network *source.Network, cfg config.ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		network:    network,
		logger:     logger,
		listen:     cfg.Listen,
		readOnly:   cfg.ReadOnly,
		apiToken:   cfg.APIToken,
		corsOrigin: cfg.CORSOrigin,
		done:       make(chan struct{}),
	}
}

// SetNetwork replaces the served network. In-flight queries finish against
// the previous one.
func (s *Server) SetNetwork(n *source.Network) {
	s.mu.Lock()
	s.network = n
	s.mu.Unlock()

	networkReloads.Inc()
	observeNetwork(n)
}

// securityHeaders adds standard security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request body size to 64 KB on mutating methods.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
		}
		next.ServeHTTP(w, r)
	})
}

// requestID propagates X-Request-ID, generating one when the client sent none.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// corsHandler allows the configured origin on API routes. Without an
// origin, no CORS headers are sent.
func (s *Server) corsHandler(next http.Handler) http.Handler {
	if s.corsOrigin == "" {
		return next
	}
	c := cors.New(cors.Options{
		AllowedOrigins: []string{s.corsOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	})
	return c.Handler(next)
}

// rateLimiter limits API requests to 10/sec burst 20 per client IP.
func (s *Server) rateLimiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if ip == "" {
			ip = r.RemoteAddr
		}

		now := time.Now().UnixNano()
		fresh := &ipLimiter{limiter: rate.NewLimiter(10, 20)}
		fresh.lastSeen.Store(now)
		val, _ := s.limiters.LoadOrStore(ip, fresh)
		il := val.(*ipLimiter)
		il.lastSeen.Store(now)

		if !il.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sweepLimiters drops idle limiter entries every five minutes until the
// server shuts down.
func (s *Server) sweepLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.pruneLimiters(now, limiterIdle)
		case <-s.done:
			return
		}
	}
}

// pruneLimiters deletes limiters last used more than maxIdle before now.
func (s *Server) pruneLimiters(now time.Time, maxIdle time.Duration) {
	cutoff := now.Add(-maxIdle).UnixNano()
	s.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiter).lastSeen.Load() < cutoff {
			s.limiters.Delete(key)
		}
		return true
	})
}

// authMiddleware returns a handler that checks for a valid bearer token
// on /api/ routes when an API token is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken != "" && strings.HasPrefix(r.URL.Path, "/api/") {
			auth := r.Header.Get("Authorization")
			token := strings.TrimPrefix(auth, "Bearer ")
			if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, s)

	// security headers → body limit → CORS → request id → rate limit → auth → metrics → mux
	var handler http.Handler = mux
	handler = instrument(handler)
	handler = s.authMiddleware(handler)
	handler = s.rateLimiter(handler)
	handler = requestID(handler)
	handler = s.corsHandler(handler)
	handler = limitBody(handler)
	handler = securityHeaders(handler)
	return handler
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.mu.RLock()
	observeNetwork(s.network)
	s.mu.RUnlock()

	s.srv = &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go s.sweepLimiters()

	s.logger.Info("starting server", "listen", s.listen, "read_only", s.readOnly)
	if s.apiToken != "" {
		s.logger.Info("API authentication enabled")
	} else {
		s.logger.Warn("API authentication disabled (set server.api_token to enable)")
	}
	fmt.Printf("fuelnet server running at http://localhost%s\n", s.listen)

	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server. Calling it more than once is
// safe.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
