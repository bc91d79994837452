package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finbook/internal/cache"
	"finbook/internal/core"
	"finbook/internal/period"
	"finbook/internal/reports"
)

// Store is the persistence surface the API needs: the read side consumed by
// the reporting engine plus the mutations exposed as write endpoints.
type Store interface {
	reports.Repository

	CreateAccount(ctx context.Context, a core.Account) (int64, error)
	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	CreateTransferPair(ctx context.Context, fromAccount, toAccount int64, amount core.Money, date core.Date, description string) (int64, int64, error)
	DeleteTransaction(ctx context.Context, id int64) error
	CreateRecurring(ctx context.Context, rd core.RecurringDefinition) (int64, error)
	DisableRecurring(ctx context.Context, id int64) error
}

type Server struct {
	http.Server
	store       Store
	engine      *reports.Engine
	rateLimiter *rateLimiter

	// Serialized report envelopes keyed by path+query. Any mutation purges
	// the whole cache so reads never observe stale aggregates.
	reportCache *cache.LRUCache[[]byte]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store Store, engine *reports.Engine, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		store:            store,
		engine:           engine,
		rateLimiter:      newRateLimiter(),
		reportCache:      cache.NewLRUCache[[]byte](cacheSize, cacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/reports/income-expense", s.withMiddleware(s.handleIncomeExpense))
	mux.HandleFunc("GET /api/reports/categories", s.withMiddleware(s.handleExpenseCategories))
	mux.HandleFunc("GET /api/reports/top-categories", s.withMiddleware(s.handleTopCategories))
	mux.HandleFunc("GET /api/reports/cash-flow", s.withMiddleware(s.handleCashFlow))
	mux.HandleFunc("GET /api/reports/budget-progress", s.withMiddleware(s.handleBudgetProgress))
	mux.HandleFunc("GET /api/reports/comparison", s.withMiddleware(s.handleComparison))
	mux.HandleFunc("GET /api/reports/net-worth", s.withMiddleware(s.handleNetWorth))
	mux.HandleFunc("GET /api/reports/upcoming", s.withMiddleware(s.handleUpcoming))

	mux.HandleFunc("GET /api/accounts", s.withMiddleware(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.withMiddleware(s.handleCreateAccount))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transfers", s.withMiddleware(s.handleCreateTransfer))
	mux.HandleFunc("POST /api/recurring", s.withMiddleware(s.handleCreateRecurring))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.withMiddleware(s.handleDisableRecurring))

	return s
}

// startCacheCleanup runs periodic expiry sweeps over the report cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.reportCache.CleanExpired(); removed > 0 {
				slog.Debug("Report cache cleanup completed", "entries_removed", removed)
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
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request IDs, logging, and rate limiting for writes.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutations only; reports are cached and cheap.
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, envelope{Error: &apiError{Code: "rate_limited", Message: "too many requests"}})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(ctx, "Handler panicked", "request_id", requestID, "panic", rec, "url", r.URL.Path)
				writeJSON(rw, http.StatusInternalServerError, envelope{Error: &apiError{Code: "internal", Message: "internal error"}})
			}

			duration := time.Since(start)
			slog.InfoContext(ctx, "Request completed",
				"request_id", requestID,
				"method", r.Method,
				"url", r.URL.Path,
				"status", rw.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", clientIP)
		}()

		next(rw, r)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// cachedReport serves a report from the cache when possible, otherwise builds
// it, stores the serialized envelope and writes it out.
func (s *Server) cachedReport(w http.ResponseWriter, r *http.Request, build func(ctx context.Context) (any, error)) {
	key := r.URL.Path
	if q := r.URL.RawQuery; q != "" {
		key += "?" + q
	}

	if body, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", "key", key)
		writeRaw(w, http.StatusOK, body)
		return
	}

	data, err := build(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "key", key, "error", err)
		writeError(w, err)
		return
	}

	body, err := json.Marshal(envelope{Data: data})
	if err != nil {
		slog.ErrorContext(r.Context(), "Report marshal failed", "key", key, "error", err)
		writeError(w, err)
		return
	}
	body = append(body, '\n')

	s.reportCache.Set(key, body)
	writeRaw(w, http.StatusOK, body)
}

// invalidateReports drops every cached report after a mutation.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

// filterAndPeriod parses the two query parameters every report shares.
func filterAndPeriod(r *http.Request) (core.AccountFilter, period.Period, error) {
	filter, err := parseAccounts(r)
	if err != nil {
		return core.AccountFilter{}, "", err
	}
	p, err := parsePeriod(r)
	if err != nil {
		return core.AccountFilter{}, "", err
	}
	return filter, p, nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
