// Package api - HTTP handlers
// Handlers decode, call the engine and encode. All pricing logic lives in
// core packages.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"remit-pricing/core/output"
	"remit-pricing/core/validation"
	"remit-pricing/internal/errors"
)

// maxBodyBytes bounds a quote request body
const maxBodyBytes = 1 << 16

// handleQuote handles POST /v1/quotes
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var body QuoteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, r, errors.Wrap(errors.TypeInput, "invalid JSON body", err))
		return
	}

	req, err := body.toResolveRequest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.resolver.Resolve(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, QuoteResponse{
		RequestID: RequestIDFrom(r.Context()),
		Quote:     output.NewQuote(result),
	}, http.StatusOK)
}

// handleValidate handles GET /v1/refdata/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.refdata.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, errors.FromRead("snapshot", err))
		return
	}

	report := validation.Validate(snap)
	issues := report.Issues
	if issues == nil {
		issues = []validation.Issue{}
	}

	s.writeJSON(w, ValidateResponse{
		RequestID: RequestIDFrom(r.Context()),
		Valid:     report.OK(),
		Errors:    report.Count(validation.SeverityError),
		Warnings:  report.Count(validation.SeverityWarning),
		Issues:    issues,
	}, http.StatusOK)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleReady handles GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.refdata.Ping(r.Context()); err != nil {
		s.writeJSON(w, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		}, http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, map[string]string{"status": "ready"}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "remit-pricing",
		"api_version": "v1",
	}, http.StatusOK)
}
