// Package types defines core domain types shared across all layers.
// This package contains NO calculation logic - only type definitions.
package types

import "math"

// Distribution is the probability distribution declared for a stated bound
type Distribution string

const (
	DistributionUniform    Distribution = "uniform"
	DistributionTriangular Distribution = "triangular"
	DistributionNormal     Distribution = "normal"
)

// String returns the string representation
func (d Distribution) String() string {
	return string(d)
}

// IsValid checks if the distribution is a known distribution
func (d Distribution) IsValid() bool {
	switch d {
	case DistributionUniform, DistributionTriangular, DistributionNormal:
		return true
	default:
		return false
	}
}

// Kind is the evaluation method of an uncertainty component
type Kind string

const (
	// KindA is evaluated by statistical analysis of observations
	KindA Kind = "A"

	// KindB is evaluated by other means (specifications, judgment)
	KindB Kind = "B"
)

// String returns the string representation
func (k Kind) String() string {
	return string(k)
}

// UnitFamily groups physical units that can be converted into one another
type UnitFamily string

const (
	FamilyVoltage     UnitFamily = "Voltage"
	FamilyCurrent     UnitFamily = "Current"
	FamilyFrequency   UnitFamily = "Frequency"
	FamilyResistance  UnitFamily = "Resistance"
	FamilyRelative    UnitFamily = "Relative"
	FamilyTemperature UnitFamily = "Temperature"
)

// Unit is a physical unit tag such as "mV" or "ppm"
type Unit string

const (
	UnitVolt      Unit = "V"
	UnitMilliVolt Unit = "mV"
	UnitMicroVolt Unit = "uV"

	UnitAmp      Unit = "A"
	UnitMilliAmp Unit = "mA"
	UnitMicroAmp Unit = "uA"

	UnitHertz     Unit = "Hz"
	UnitKiloHertz Unit = "kHz"
	UnitMegaHertz Unit = "MHz"

	UnitOhm     Unit = "Ohm"
	UnitKiloOhm Unit = "kOhm"
	UnitMegaOhm Unit = "MOhm"

	UnitPercent Unit = "%"
	UnitPPM     Unit = "ppm"

	UnitFahrenheit Unit = "deg F"
	UnitCelsius    Unit = "deg C"
)

// String returns the string representation
func (u Unit) String() string {
	return string(u)
}

// IsRelative reports whether the unit is already relative to the nominal
func (u Unit) IsRelative() bool {
	return u == UnitPPM || u == UnitPercent
}

// Nominal is the nominal value used to relate absolute tolerances to ppm.
// It is irrelevant for tolerances already expressed in ppm or %.
type Nominal struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// DefaultCoverageFactor is the coverage factor assumed for a normal bound
// when none is stated
const DefaultCoverageFactor = 2.0

// Spec declares a UUT or TMDE specification.
// Bound is the stated ± tolerance (uniform, triangular) or the ± expanded
// uncertainty (normal).
type Spec struct {
	Distribution Distribution `json:"distribution"`
	Bound        float64      `json:"bound"`
	Unit         Unit         `json:"unit"`

	// CoverageFactor applies to normal bounds only; nil means DefaultCoverageFactor
	CoverageFactor *float64 `json:"coverage_factor,omitempty"`
}

// K returns the effective coverage factor of the spec
func (s Spec) K() float64 {
	if s.CoverageFactor == nil {
		return DefaultCoverageFactor
	}
	return *s.CoverageFactor
}

// ManualEntry is a manually entered uncertainty contributor.
// Type A entries carry StandardUncertainty and DegreesOfFreedom.
// Type B entries carry Distribution, Bound and CoverageFactor.
type ManualEntry struct {
	// ID identifies the entry; empty IDs are assigned when the budget is built
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Unit Unit   `json:"unit"`

	Distribution   Distribution `json:"distribution,omitempty"`
	Bound          float64      `json:"bound,omitempty"`
	CoverageFactor *float64     `json:"coverage_factor,omitempty"`

	StandardUncertainty float64 `json:"standard_uncertainty,omitempty"`

	// DegreesOfFreedom is nil for infinite degrees of freedom
	DegreesOfFreedom *float64 `json:"degrees_of_freedom,omitempty"`
}

// AsSpec returns the Type B view of the entry
func (m ManualEntry) AsSpec() Spec {
	return Spec{
		Distribution:   m.Distribution,
		Bound:          m.Bound,
		Unit:           m.Unit,
		CoverageFactor: m.CoverageFactor,
	}
}

// DoF returns the degrees of freedom, +Inf when absent
func (m ManualEntry) DoF() float64 {
	if m.DegreesOfFreedom == nil {
		return math.Inf(1)
	}
	return *m.DegreesOfFreedom
}

// Component is a single standard-uncertainty contributor in ppm.
// Components are immutable once produced. DegreesOfFreedom may be +Inf, so
// encode components through output.Wire as well.
type Component struct {
	ID   string
	Name string
	Kind Kind

	StandardUncertaintyPPM float64

	// DegreesOfFreedom is +Inf for Type B components
	DegreesOfFreedom float64

	// Locked components are derived from the UUT/TMDE specs and cannot be removed
	Locked bool
}

// RiskAssumptions drive guard-band sizing
type RiskAssumptions struct {
	// TargetConsumerRisk is the two-sided false-accept probability target in (0, 0.5]
	TargetConsumerRisk float64 `json:"target_consumer_risk"`
}

// Result is the derived budget result. Undefined figures are NaN, so
// encode it through output.Wire rather than encoding/json directly.
type Result struct {
	UC   float64
	Veff float64
	K    float64
	U    float64

	TUR float64
	TAR float64

	Z               float64
	TolerancePPM    float64
	GuardBand       float64
	AcceptanceLimit float64
	PFA             float64
	PFR             float64

	// Empty is set when no component survived into the budget
	Empty bool
}

// Defined reports whether v is a usable (non-NaN) figure
func Defined(v float64) bool {
	return !math.IsNaN(v)
}
