// Package api - API types for uncertainty analyses
// These types define the contract of the HTTP endpoints.
// POST /compute is stateless and deterministic.
package api

import (
	"time"

	"mua-risk/adapters/analysisfile"
	"mua-risk/core/engine"
	"mua-risk/core/output"
	"mua-risk/core/units"
)

// ComputeRequest is the input to POST /compute and POST /analyses. It has the
// same shape as a JSON analysis file.
type ComputeRequest = analysisfile.Document

// ComputeResponse is the output of POST /compute
type ComputeResponse struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	output.WireReport
}

// AnalysisResponse describes a stored analysis
type AnalysisResponse struct {
	ID    string       `json:"id"`
	Input engine.Input `json:"input"`

	output.WireReport
}

// AddComponentRequest is the input to POST /analyses/{id}/components
type AddComponentRequest = analysisfile.ManualDoc

// AddComponentResponse returns the new component ID with the updated analysis
type AddComponentResponse struct {
	ComponentID string           `json:"component_id"`
	Analysis    AnalysisResponse `json:"analysis"`
}

// SettingsRequest is the input to PATCH /analyses/{id}. Absent fields are
// left unchanged.
type SettingsRequest struct {
	Nominal            *analysisfile.NominalDoc `json:"nominal,omitempty"`
	UUT                *analysisfile.SpecDoc    `json:"uut,omitempty"`
	TMDE               *analysisfile.SpecDoc    `json:"tmde,omitempty"`
	UseStudentT        *bool                    `json:"use_student_t,omitempty"`
	TargetConsumerRisk *float64                 `json:"target_consumer_risk,omitempty"`
}

// UnitsResponse is the output of GET /units
type UnitsResponse struct {
	Units        []units.Info `json:"units"`
	NominalUnits []string     `json:"nominal_units"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the error payload
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}
