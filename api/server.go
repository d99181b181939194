// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs budget or risk arithmetic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mua-risk/adapters/analysisfile"
	"mua-risk/core/engine"
	"mua-risk/core/output"
	"mua-risk/core/units"
	"mua-risk/internal/errors"
	"mua-risk/internal/logging"
)

// MaxBodyBytes bounds request bodies
const MaxBodyBytes = 1 << 20

// Options configure a Server
type Options struct {
	// Defaults fill settings a request leaves out
	Defaults analysisfile.Defaults

	// Precision is the number of decimals of ppm figures in responses
	Precision int32

	// Logger defaults to the global logger
	Logger *zap.Logger
}

// Server is the API server
type Server struct {
	mux       *http.ServeMux
	version   string
	defaults  analysisfile.Defaults
	precision int32
	log       *zap.Logger
	analyses  *store
}

// NewServer creates a new API server
func NewServer(version string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Named("api")
	}
	s := &Server{
		mux:       http.NewServeMux(),
		version:   version,
		defaults:  opts.Defaults,
		precision: opts.Precision,
		log:       opts.Logger,
		analyses:  newStore(),
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /compute", s.handleCompute)
	s.mux.HandleFunc("GET /units", s.handleUnits)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)

	// Stored analyses
	s.mux.HandleFunc("POST /analyses", s.handleCreateAnalysis)
	s.mux.HandleFunc("GET /analyses", s.handleListAnalyses)
	s.mux.HandleFunc("GET /analyses/{id}", s.handleGetAnalysis)
	s.mux.HandleFunc("PATCH /analyses/{id}", s.handleUpdateSettings)
	s.mux.HandleFunc("DELETE /analyses/{id}", s.handleDeleteAnalysis)
	s.mux.HandleFunc("POST /analyses/{id}/components", s.handleAddComponent)
	s.mux.HandleFunc("DELETE /analyses/{id}/components/{componentID}", s.handleRemoveComponent)
}

// handleCompute handles POST /compute
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	in, err := req.Input(s.defaults)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report := engine.Compute(in)
	s.writeJSON(w, ComputeResponse{
		RequestID:  uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		WireReport: output.NewWireReport(in, report, s.precision),
	}, http.StatusOK)
}

// handleUnits handles GET /units
func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	var nominal []string
	for _, u := range units.NominalUnits() {
		nominal = append(nominal, u.String())
	}
	s.writeJSON(w, UnitsResponse{Units: units.All(), NominalUnits: nominal}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "mua-risk",
		"api_version": "v1",
	}, http.StatusOK)
}

// decode reads a strict JSON body into v
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return errors.Wrap(errors.TypeInput, "cannot read request body", err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Parsing("invalid JSON body", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("response encoding failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.Internal("unexpected error", err)
	}

	status := http.StatusInternalServerError
	switch e.Type {
	case errors.TypeInput, errors.TypeParsing, errors.TypeUnit:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	case errors.TypeNotSupported:
		status = http.StatusUnprocessableEntity
	case errors.TypeConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}

	s.writeErrorBody(w, ErrorBody{Code: string(e.Type), Message: e.Error(), Context: e.Context}, status)
}

func (s *Server) writeErrorBody(w http.ResponseWriter, body ErrorBody, status int) {
	s.writeJSON(w, ErrorResponse{Error: body}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.log.Info("listening", zap.String("addr", addr), zap.String("version", s.version))
	return Serve(ctx, addr, s)
}

// Serve runs h on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
