// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/birthprofile/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Diagnoser
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	diagnoseHandler *DiagnoseHandler
	batchHandler    *BatchHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBody  int64
	logger   logger.Logger
	batch    BatchDiagnoser
	maxItems int
}

// WithMaxBodyBytes caps diagnose request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// WithLogger sets the logger used for unexpected handler failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBatch enables POST /api/diagnose/batch backed by b. maxItems <= 0
// keeps DefaultMaxBatchItems.
func WithBatch(b BatchDiagnoser, maxItems int) ServerOption {
	return func(o *serverOptions) {
		o.batch = b
		o.maxItems = maxItems
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	o := serverOptions{maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		diagnoseHandler: NewDiagnoseHandler(deps, o.maxBody, o.logger),
	}
	if o.batch != nil {
		s.batchHandler = NewBatchHandler(o.batch, o.maxBody, o.maxItems, o.logger)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/diagnose", MetricsMiddleware(s.diagnoseHandler.HandleDiagnose, "diagnose"))
	if s.batchHandler != nil {
		mux.HandleFunc("/api/diagnose/batch", MetricsMiddleware(s.batchHandler.HandleBatch, "diagnose_batch"))
	}
}
