package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

// detectSchemaTemplate is the JSON Schema for POST /v1/detect bodies. The
// numeric bounds are filled in from the domain constants so the two layers
// cannot drift apart. Timestamp strings are shape-checked here and fully
// parsed by the domain afterwards.
const detectSchemaTemplate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "DetectRequest",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["timestamp", "temperature", "smoke", "wind"],
    "properties": {
      "timestamp": {"type": "string", "minLength": 1},
      "temperature": {"type": "number", "minimum": %g, "maximum": %g},
      "smoke": {"type": "number", "minimum": %g, "maximum": %g},
      "wind": {"type": "number", "minimum": 0}
    }
  }
}`

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the synchronous detection endpoint plus health, readiness,
// and metrics HTTP routes.
type Server struct {
	httpServer *http.Server
	detector   *domain.Detector
	schema     *gojsonschema.Schema
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /v1/detect, /healthz, /readyz, and
// /metrics routes. The detect request schema is compiled once here.
func NewServer(addr string, detector *domain.Detector, ready ReadinessChecker, logger *slog.Logger) (*Server, error) {
	schemaJSON := fmt.Sprintf(detectSchemaTemplate,
		domain.MinTemperature, domain.MaxTemperature, domain.MinSmoke, domain.MaxSmoke)
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile detect schema: %w", err)
	}

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		detector: detector,
		schema:   schema,
		logger:   logger,
	}

	mux.HandleFunc("POST /v1/detect", s.handleDetect)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s, nil
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleDetect scores one batch of readings synchronously. Schema violations
// and empty batches return 422 with per-field details.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read request body"})
		return
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		writeValidationFailure(w, details)
		return
	}

	var readings []domain.Reading
	if err := json.Unmarshal(body, &readings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("decode readings: %v", err),
		})
		return
	}

	// The schema checks shape and ranges; timestamps still need the domain's
	// parser.
	if err := domain.ValidateBatch(readings); err != nil {
		writeValidationFailure(w, []string{err.Error()})
		return
	}

	summary, err := s.detector.Detect(readings)
	if err != nil {
		s.logger.Error("detect request failed", "error", err, "readings", len(readings))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "detection failed"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeValidationFailure(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":   "request failed validation",
		"details": details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
