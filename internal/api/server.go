// Package api exposes the session table over the bridge's REST protocol and
// streams table events to WebSocket clients.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/indicator"
	"github.com/pingleware/metratrader-bridge/internal/model"
)

// Options configures a Server.
type Options struct {
	Address           string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	AllowedOrigins    []string
	Version           string
}

// Server is the REST API + WebSocket server.
type Server struct {
	table   *bridge.Table
	calc    indicator.Calculator
	hub     *Hub
	tracer  opentracing.Tracer
	logger  *zap.Logger
	mux     *http.ServeMux
	handler http.Handler
	srv     *http.Server
	opts    Options
	routes  []string
}

// NewServer creates an API server over table. The hub must be wired as the
// table observer by the caller for events to reach WebSocket clients.
func NewServer(opts Options, table *bridge.Table, calc indicator.Calculator, hub *Hub, tracer opentracing.Tracer, logger *zap.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	s := &Server{
		table:  table,
		calc:   calc,
		hub:    hub,
		tracer: tracer,
		logger: logger,
		mux:    http.NewServeMux(),
		opts:   opts,
	}
	s.registerRoutes()
	s.handler = chain(s.mux,
		s.recoverMiddleware,
		s.tracingMiddleware,
		s.loggingMiddleware,
		requestIDMiddleware,
		corsMiddleware(opts.AllowedOrigins),
	)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// handle registers a route and remembers it for the index page.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
	s.routes = append(s.routes, pattern)
}

func (s *Server) registerRoutes() {
	s.registerSessionRoutes()
	s.registerQuoteRoutes()
	s.registerAccountRoutes()
	s.registerCurrencyRoutes()
	s.registerMarketRoutes()
	s.registerTradeRoutes()
	s.registerHistoryRoutes()
	s.registerResponseRoutes()
	s.registerIndicatorRoutes()

	s.handle("GET /api/health", s.handleHealth)
	s.handle("GET /api/status", s.handleStatus)
	s.handle("GET /ws", s.handleWebSocket)
}

// Start listens in the background. Errors other than a clean close are
// reported on the returned channel.
func (s *Server) Start() <-chan error {
	s.srv = &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_server_started", zap.String("address", s.opts.Address))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	shutCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(shutCtx)
	s.logger.Info("api_server_stopped", zap.Error(err))
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      map[string]string{"status": "ok"},
		Timestamp: time.Now(),
	})
}

type statusDoc struct {
	bridge.Status
	Version   string `json:"version"`
	WSClients int    `json:"ws_clients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data: statusDoc{
			Status:    s.table.Status(),
			Version:   s.opts.Version,
			WSClients: s.hub.ClientCount(),
		},
		Timestamp: time.Now(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleUpgrade(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	buf, err := sonic.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encoding response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// writeValue answers 200 with a bare JSON value, the terminal's expected shape.
func writeValue(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// badRequest rejects a request whose arguments could not be coerced.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug("api_bad_request",
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusBadRequest, model.APIResponse{
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}
