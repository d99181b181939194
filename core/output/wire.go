package output

import (
	"math"

	"github.com/shopspring/decimal"

	"mua-risk/core/budget"
	"mua-risk/core/engine"
	"mua-risk/core/types"
)

// FormatFloat renders v rounded to places decimals. Infinities render as
// "inf" and "-inf"; callers must handle NaN themselves.
func FormatFloat(v float64, places int32) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}

// Display renders v for people: undefined is "—", infinity is "∞"
func Display(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "—"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return FormatFloat(v, places)
}

// Percent renders a probability as a percentage
func Percent(p float64, places int32) string {
	if math.IsNaN(p) {
		return "—"
	}
	return decimal.NewFromFloat(p).Shift(2).Round(places).StringFixed(places) + "%"
}

// number is a wire figure; nil encodes as JSON null (undefined)
func number(v float64, places int32) *string {
	if math.IsNaN(v) {
		return nil
	}
	s := FormatFloat(v, places)
	return &s
}

// WireResult is the JSON form of types.Result
type WireResult struct {
	UC              *string `json:"uc"`
	Veff            *string `json:"veff"`
	K               *string `json:"k"`
	U               *string `json:"U"`
	TUR             *string `json:"tur"`
	TAR             *string `json:"tar"`
	Z               *string `json:"z"`
	TolerancePPM    *string `json:"tolerance_ppm"`
	GuardBand       *string `json:"guard_band"`
	AcceptanceLimit *string `json:"acceptance_limit"`
	PFA             *string `json:"pfa"`
	PFR             *string `json:"pfr"`
	Empty           bool    `json:"empty"`
}

// WireComponent is the JSON form of types.Component
type WireComponent struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Kind                   types.Kind `json:"kind"`
	StandardUncertaintyPPM *string    `json:"standard_uncertainty_ppm"`
	DegreesOfFreedom       *string    `json:"degrees_of_freedom"`
	Locked                 bool       `json:"locked"`
}

// WireReport is the JSON form of an analysis report
type WireReport struct {
	Metadata    *Metadata          `json:"metadata,omitempty"`
	UseStudentT bool               `json:"use_student_t"`
	Risk        *string            `json:"target_consumer_risk"`
	Components  []WireComponent    `json:"components"`
	Exclusions  []budget.Exclusion `json:"exclusions"`
	Result      WireResult         `json:"result"`
}

// NewWireResult converts a result; ppm figures and ratios use places
// decimals, probabilities and z use places+4.
func NewWireResult(r types.Result, places int32) WireResult {
	fine := places + 4
	return WireResult{
		UC:              number(r.UC, places),
		Veff:            number(r.Veff, 2),
		K:               number(r.K, 3),
		U:               number(r.U, places),
		TUR:             number(r.TUR, places),
		TAR:             number(r.TAR, places),
		Z:               number(r.Z, fine),
		TolerancePPM:    number(r.TolerancePPM, places),
		GuardBand:       number(r.GuardBand, places),
		AcceptanceLimit: number(r.AcceptanceLimit, places),
		PFA:             number(r.PFA, fine),
		PFR:             number(r.PFR, fine),
		Empty:           r.Empty,
	}
}

// NewWireComponents converts budget components
func NewWireComponents(components []types.Component, places int32) []WireComponent {
	out := make([]WireComponent, 0, len(components))
	for _, c := range components {
		out = append(out, WireComponent{
			ID:                     c.ID,
			Name:                   c.Name,
			Kind:                   c.Kind,
			StandardUncertaintyPPM: number(c.StandardUncertaintyPPM, places),
			DegreesOfFreedom:       number(c.DegreesOfFreedom, 2),
			Locked:                 c.Locked,
		})
	}
	return out
}

// NewWireReport converts a whole report
func NewWireReport(in engine.Input, report engine.Report, places int32) WireReport {
	exclusions := report.Exclusions
	if exclusions == nil {
		exclusions = []budget.Exclusion{}
	}
	return WireReport{
		UseStudentT: in.UseStudentT,
		Risk:        number(report.Risk, 6),
		Components:  NewWireComponents(report.Budget.Components(), places),
		Exclusions:  exclusions,
		Result:      NewWireResult(report.Result, places),
	}
}
