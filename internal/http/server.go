// Package http serves the JSON API: advice, chat, expenses and settings.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fintech/internal/assistant"
	"fintech/internal/auth"
	applog "fintech/internal/log"
	"fintech/internal/middleware/ratelimit"
	"fintech/internal/middleware/security"
	"fintech/internal/middleware/trace"
	"fintech/internal/services"
	"fintech/internal/store"
)

// HeaderChatSession echoes the chat session id on /api/chat replies.
const HeaderChatSession = "X-Chat-Session"

type Options struct {
	Addr      string
	Store     store.Store
	Expenses  *services.ExpenseService
	Assistant *assistant.Assistant
	Sessions  *assistant.Sessions
	// Ping reports backend readiness; nil means always ready.
	Ping func(ctx context.Context) error
	// JWTSecret signs tokens for the authenticated advice endpoint. When
	// empty that endpoint rejects every request.
	JWTSecret          string
	RateLimitPerMinute int
	// BlockSuspicious answers 403 to probe-like requests instead of only logging them.
	BlockSuspicious bool
	Logger          *applog.Logger
}

type Server struct {
	http.Server

	store     store.Store
	expenses  *services.ExpenseService
	assistant *assistant.Assistant
	sessions  *assistant.Sessions
	ping      func(ctx context.Context) error
	jwtSecret string

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	upgrader     websocket.Upgrader
	wsConns      sync.WaitGroup
	closing      chan struct{}
	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware. The rate limiter's cleanup
// goroutine runs until Shutdown.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		store:     opts.Store,
		expenses:  opts.Expenses,
		assistant: opts.Assistant,
		sessions:  opts.Sessions,
		ping:      opts.Ping,
		jwtSecret: opts.JWTSecret,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(opts.BlockSuspicious),
		closing:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	requireToken := auth.Middleware(s.jwtSecret, func(w http.ResponseWriter, r *http.Request, err error) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="advice"`)
		writeError(w, r, err)
	})

	mux.Handle("POST /api/advice/ai-response", requireToken(http.HandlerFunc(s.handleAdvice)))
	mux.HandleFunc("POST /api/advice/public-ai-response", s.handlePublicAdvice)
	mux.Handle("GET /api/advice/financial-health", requireToken(http.HandlerFunc(s.handleFinancialHealth)))
	mux.Handle("GET /api/advice/tax-estimate", requireToken(http.HandlerFunc(s.handleTaxEstimate)))

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("DELETE /api/chat/{session}", s.handleCloseChat)
	mux.HandleFunc("GET /ws/chat", s.handleChatSocket)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/summary", s.handleExpenseSummary)
	mux.HandleFunc("GET /api/expenses/tax-summary", s.handleTaxSummary)
	mux.HandleFunc("GET /api/expenses/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/expenses/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/settings/categories", s.handleGetCategories)
	mux.HandleFunc("PUT /api/settings/categories", s.handlePutCategories)
	mux.HandleFunc("GET /api/settings/tax", s.handleGetTaxSettings)
	mux.HandleFunc("PUT /api/settings/tax", s.handlePutTaxSettings)
	mux.HandleFunc("GET /api/settings/general", s.handleGetGeneralSettings)
	mux.HandleFunc("PUT /api/settings/general", s.handlePutGeneralSettings)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
}

// chain applies, outermost first: tracing, probe detection, security
// headers, then rate limiting of writes.
func (s *Server) chain(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded", applog.FieldClientIP, s.detector.ExtractClientIP(r), applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	}
	h = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit, http.MethodPost, http.MethodPut, http.MethodDelete)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	return s.tracer.Middleware(h)
}

// Shutdown stops the limiter, drains HTTP connections and waits for open
// chat sockets to finish. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		close(s.closing)
		err = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.wsConns.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.NewFields().WithError(err).ToSlice()...)
			ErrorResponse(http.StatusServiceUnavailable, "backend not ready").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}
