// Package api - Thin HTTP layer over the pricing engine
// The API is ONLY responsible for: input decoding, engine invocation, output
// serialization. It never prices anything itself.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/logging"
)

// Resolver prices a transaction
type Resolver interface {
	Resolve(ctx context.Context, req types.ResolveRequest) (*types.ResolveResult, error)
}

// RefData is the reference data surface used by readiness and validation
type RefData interface {
	ports.SnapshotReader
	Ping(ctx context.Context) error
}

// Options configures the server
type Options struct {
	Version string

	// CORSOrigins lists allowed origins; empty disables CORS
	CORSOrigins []string
}

// Server is the API server
type Server struct {
	resolver Resolver
	refdata  RefData
	router   chi.Router
	version  string
	logger   *zap.Logger
}

// NewServer creates a new API server
func NewServer(resolver Resolver, refdata RefData, opts Options) *Server {
	s := &Server{
		resolver: resolver,
		refdata:  refdata,
		router:   chi.NewRouter(),
		version:  opts.Version,
		logger:   logging.Named("api"),
	}
	s.registerRoutes(opts)
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes(opts Options) {
	r := s.router

	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(s.instrument)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders:   []string{RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Probes
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/version", s.handleVersion)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/quotes", s.handleQuote)
		r.Get("/refdata/validate", s.handleValidate)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err, r.Context().Err() != nil)
	detail := errorDetail(err)

	fields := []zap.Field{
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("code", detail.Code),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	s.writeJSON(w, ErrorResponse{
		RequestID: RequestIDFrom(r.Context()),
		Error:     detail,
	}, status)
}
