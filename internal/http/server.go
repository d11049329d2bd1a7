// Package http exposes the JSON API: account endpoints, expense and
// budget CRUD, and the live dashboard as JSON, PNG chart, and
// server-sent events.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/charts"
	"spendwise/internal/log"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
)

type Server struct {
	http.Server

	accounts   *services.AccountService
	expenses   *services.ExpenseService
	budgets    *services.BudgetService
	dashboards *services.DashboardService

	charts     *charts.Renderer
	chartCache *cache.ChartCache

	tracer *trace.Middleware
	logger *log.Logger

	janitorCancel context.CancelFunc
	shutdownOnce  sync.Once
}

type Options struct {
	Addr           string
	Accounts       *services.AccountService
	Expenses       *services.ExpenseService
	Budgets        *services.BudgetService
	Dashboards     *services.DashboardService
	Logger         *log.Logger
	ChartCacheSize int
	ChartCacheTTL  time.Duration
}

// NewServer configures the routes and returns a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	cacheSize := opts.ChartCacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cacheTTL := opts.ChartCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	janitorCtx, janitorCancel := context.WithCancel(context.Background())

	s := &Server{
		accounts:      opts.Accounts,
		expenses:      opts.Expenses,
		budgets:       opts.Budgets,
		dashboards:    opts.Dashboards,
		charts:        charts.NewRenderer(),
		chartCache:    cache.NewChartCache(cacheSize, cacheTTL),
		logger:        logger,
		janitorCancel: janitorCancel,
	}
	go s.chartCache.Janitor(janitorCtx, 10*time.Minute)

	s.tracer = trace.NewMiddleware(logger, nil)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/metricsz", method(http.MethodGet, s.handleMetrics))

	mux.HandleFunc("/api/auth/signup", method(http.MethodPost, s.handleSignUp))
	mux.HandleFunc("/api/auth/login", method(http.MethodPost, s.handleSignIn))
	mux.HandleFunc("/api/auth/logout", method(http.MethodPost, s.withAuth(s.handleSignOut)))
	mux.HandleFunc("/api/me", s.withAuth(s.handleMe))

	mux.HandleFunc("/api/expenses", s.withAuth(s.handleExpenses))
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/budget", s.withAuth(s.handleBudget))

	mux.HandleFunc("/api/dashboard", s.withAuth(s.handleDashboard))
	mux.HandleFunc("/api/dashboard/chart.png", s.withAuth(s.handleDashboardChart))
	mux.HandleFunc("/api/dashboard/stream", s.withAuth(s.handleDashboardStream))

	handler := s.tracer.Middleware(log.Middleware(logger)(mux))

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitorCancel()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func method(want string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != want {
			w.Header().Set("Allow", want)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// handleMetrics reports the rolling request counters kept by the trace
// middleware.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]int64{
		"totalRequests":      m.TotalRequests,
		"lastResponseMicros": m.LastResponseMicros,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
