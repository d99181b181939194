// Package api - HTTP handlers for stored analyses
// Handlers wrap engine.Analysis; they contain NO budget logic.
package api

import (
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"mua-risk/core/engine"
	"mua-risk/core/output"
	"mua-risk/core/types"
	"mua-risk/internal/errors"
)

// store holds the analyses created through the API. Each analysis serialises
// its own updates; the store lock only guards the map.
type store struct {
	mu       sync.RWMutex
	analyses map[string]*engine.Analysis
}

func newStore() *store {
	return &store{analyses: make(map[string]*engine.Analysis)}
}

func (s *store) add(a *engine.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.ID()] = a
}

func (s *store) get(id string) (*engine.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[id]
	if !ok {
		return nil, errors.NotFound("analysis", id)
	}
	return a, nil
}

func (s *store) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.analyses[id]; !ok {
		return false
	}
	delete(s.analyses, id)
	return true
}

func (s *store) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.analyses))
	for id := range s.analyses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) analysisResponse(a *engine.Analysis) AnalysisResponse {
	in := a.Input()
	return AnalysisResponse{
		ID:         a.ID(),
		Input:      in,
		WireReport: output.NewWireReport(in, a.Report(), s.precision),
	}
}

// handleCreateAnalysis handles POST /analyses
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
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

	a := engine.NewAnalysis(in)
	s.analyses.add(a)
	s.log.Info("analysis created", zap.String("analysis", a.ID()))

	s.writeJSON(w, s.analysisResponse(a), http.StatusCreated)
}

// handleListAnalyses handles GET /analyses
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{"analyses": s.analyses.ids()}, http.StatusOK)
}

// handleGetAnalysis handles GET /analyses/{id}
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyses.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, s.analysisResponse(a), http.StatusOK)
}

// handleDeleteAnalysis handles DELETE /analyses/{id}
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.analyses.remove(id) {
		s.writeError(w, errors.NotFound("analysis", id))
		return
	}
	s.log.Info("analysis deleted", zap.String("analysis", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateSettings handles PATCH /analyses/{id}
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyses.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req SettingsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	// Convert every field before touching the analysis so a bad field leaves
	// it unchanged; the changes are then published as a single swap.
	var (
		nominal   types.Nominal
		uut, tmde *types.Spec
	)
	if req.Nominal != nil {
		if nominal, err = req.Nominal.Nominal("nominal"); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.UUT != nil {
		if uut, err = req.UUT.Spec("uut"); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.TMDE != nil {
		if tmde, err = req.TMDE.Spec("tmde"); err != nil {
			s.writeError(w, err)
			return
		}
	}

	a.Modify(func(in *engine.Input) {
		if req.Nominal != nil {
			in.Nominal = nominal
		}
		if req.UUT != nil {
			in.UUT = uut
		}
		if req.TMDE != nil {
			in.TMDE = tmde
		}
		if req.UseStudentT != nil {
			in.UseStudentT = *req.UseStudentT
		}
		if req.TargetConsumerRisk != nil {
			in.Risk.TargetConsumerRisk = *req.TargetConsumerRisk
		}
	})
	s.writeJSON(w, s.analysisResponse(a), http.StatusOK)
}

// handleAddComponent handles POST /analyses/{id}/components
func (s *Server) handleAddComponent(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyses.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req AddComponentRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := req.Entry("component")
	if err != nil {
		s.writeError(w, err)
		return
	}

	id, _, err := a.AddManual(entry)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, AddComponentResponse{ComponentID: id, Analysis: s.analysisResponse(a)}, http.StatusCreated)
}

// handleRemoveComponent handles DELETE /analyses/{id}/components/{componentID}
func (s *Server) handleRemoveComponent(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyses.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	componentID := r.PathValue("componentID")
	report, ok := a.RemoveManual(componentID)
	if !ok {
		if c, found := report.Budget.Find(componentID); found && c.Locked {
			s.writeErrorBody(w, ErrorBody{
				Code:    "LOCKED_COMPONENT",
				Message: "component " + componentID + " is derived from the UUT/TMDE specs and cannot be removed",
			}, http.StatusConflict)
			return
		}
		s.writeError(w, errors.NotFound("component", componentID))
		return
	}
	s.writeJSON(w, s.analysisResponse(a), http.StatusOK)
}
