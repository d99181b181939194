// Package analysisfile loads analysis input files in HCL, YAML or JSON form.
package analysisfile

import (
	"fmt"
	"strings"

	"mua-risk/core/budget"
	"mua-risk/core/engine"
	"mua-risk/core/guardband"
	"mua-risk/core/types"
	"mua-risk/core/units"
	"mua-risk/internal/errors"
)

// Document is the on-disk form of an analysis. The same shape is accepted by
// all three encodings and by the HTTP API.
type Document struct {
	Nominal *NominalDoc `hcl:"nominal,block" yaml:"nominal" json:"nominal,omitempty"`
	UUT     *SpecDoc    `hcl:"uut,block" yaml:"uut" json:"uut,omitempty"`
	TMDE    *SpecDoc    `hcl:"tmde,block" yaml:"tmde" json:"tmde,omitempty"`
	Manual  []ManualDoc `hcl:"manual,block" yaml:"manual" json:"manual,omitempty"`

	UseStudentT        *bool    `hcl:"use_student_t,optional" yaml:"use_student_t" json:"use_student_t,omitempty"`
	TargetConsumerRisk *float64 `hcl:"target_consumer_risk,optional" yaml:"target_consumer_risk" json:"target_consumer_risk,omitempty"`
}

// NominalDoc is the nominal value block
type NominalDoc struct {
	Value float64 `hcl:"value" yaml:"value" json:"value"`
	Unit  string  `hcl:"unit" yaml:"unit" json:"unit"`
}

// SpecDoc is a UUT or TMDE block
type SpecDoc struct {
	Distribution   string   `hcl:"distribution" yaml:"distribution" json:"distribution"`
	Bound          float64  `hcl:"bound" yaml:"bound" json:"bound"`
	Unit           string   `hcl:"unit,optional" yaml:"unit" json:"unit,omitempty"`
	CoverageFactor *float64 `hcl:"coverage_factor,optional" yaml:"coverage_factor" json:"coverage_factor,omitempty"`
}

// ManualDoc is a manually entered component
type ManualDoc struct {
	ID   string `hcl:"id,optional" yaml:"id" json:"id,omitempty"`
	Name string `hcl:"name,optional" yaml:"name" json:"name,omitempty"`
	Kind string `hcl:"kind,optional" yaml:"kind" json:"kind,omitempty"`
	Unit string `hcl:"unit,optional" yaml:"unit" json:"unit,omitempty"`

	Distribution   string   `hcl:"distribution,optional" yaml:"distribution" json:"distribution,omitempty"`
	Bound          float64  `hcl:"bound,optional" yaml:"bound" json:"bound,omitempty"`
	CoverageFactor *float64 `hcl:"coverage_factor,optional" yaml:"coverage_factor" json:"coverage_factor,omitempty"`

	StandardUncertainty float64  `hcl:"standard_uncertainty,optional" yaml:"standard_uncertainty" json:"standard_uncertainty,omitempty"`
	DegreesOfFreedom    *float64 `hcl:"degrees_of_freedom,optional" yaml:"degrees_of_freedom" json:"degrees_of_freedom,omitempty"`
}

// Defaults fill settings a document leaves out
type Defaults struct {
	UseStudentT bool

	// TargetConsumerRisk of zero means guardband.DefaultConsumerRisk
	TargetConsumerRisk float64
}

// Input converts the document into an engine input. Unit names, distribution
// names and kinds are checked strictly; numeric problems are left to the
// budget builder, which excludes the offending component.
func (d *Document) Input(defaults Defaults) (engine.Input, error) {
	in := engine.Input{
		UseStudentT: defaults.UseStudentT,
		Risk:        types.RiskAssumptions{TargetConsumerRisk: defaults.TargetConsumerRisk},
	}
	if in.Risk.TargetConsumerRisk == 0 {
		in.Risk.TargetConsumerRisk = guardband.DefaultConsumerRisk
	}
	if d.UseStudentT != nil {
		in.UseStudentT = *d.UseStudentT
	}
	if d.TargetConsumerRisk != nil {
		in.Risk.TargetConsumerRisk = *d.TargetConsumerRisk
	}

	var err error
	if in.Nominal, err = d.Nominal.Nominal("nominal"); err != nil {
		return engine.Input{}, err
	}
	if in.UUT, err = d.UUT.Spec("uut"); err != nil {
		return engine.Input{}, err
	}
	if in.TMDE, err = d.TMDE.Spec("tmde"); err != nil {
		return engine.Input{}, err
	}

	seen := map[string]bool{budget.UUTID: true, budget.TMDEID: true}
	for i, m := range d.Manual {
		field := fmt.Sprintf("manual[%d]", i)
		entry, err := m.Entry(field)
		if err != nil {
			return engine.Input{}, err
		}
		if entry.ID != "" {
			if seen[entry.ID] {
				return engine.Input{}, fieldError(errors.Conflict("component", entry.ID), field)
			}
			seen[entry.ID] = true
		}
		in.Manual = append(in.Manual, entry)
	}

	return in, nil
}

// Nominal converts the block; a nil block is the zero nominal. field names
// the block in error context.
func (n *NominalDoc) Nominal(field string) (types.Nominal, error) {
	if n == nil {
		return types.Nominal{}, nil
	}
	u, err := units.ParseUnit(n.Unit)
	if err != nil {
		return types.Nominal{}, fieldError(err, field+".unit")
	}
	return types.Nominal{Value: n.Value, Unit: u}, nil
}

// Spec converts the block; a nil block is a nil spec
func (s *SpecDoc) Spec(field string) (*types.Spec, error) {
	if s == nil {
		return nil, nil
	}
	dist, err := parseDistribution(s.Distribution)
	if err != nil {
		return nil, fieldError(err, field+".distribution")
	}
	u, err := parseUnitOrPPM(s.Unit)
	if err != nil {
		return nil, fieldError(err, field+".unit")
	}
	return &types.Spec{
		Distribution:   dist,
		Bound:          s.Bound,
		Unit:           u,
		CoverageFactor: s.CoverageFactor,
	}, nil
}

// Entry converts a manual component. The kind defaults to B and the unit to ppm.
func (m ManualDoc) Entry(field string) (types.ManualEntry, error) {
	kind := types.KindB
	switch strings.ToUpper(strings.TrimSpace(m.Kind)) {
	case "", "B":
	case "A":
		kind = types.KindA
	default:
		return types.ManualEntry{}, errors.Newf(errors.TypeInput, "unknown component kind %q", m.Kind).WithContext("field", field+".kind")
	}

	u, err := parseUnitOrPPM(m.Unit)
	if err != nil {
		return types.ManualEntry{}, fieldError(err, field+".unit")
	}

	entry := types.ManualEntry{
		ID:                  m.ID,
		Name:                m.Name,
		Kind:                kind,
		Unit:                u,
		Bound:               m.Bound,
		CoverageFactor:      m.CoverageFactor,
		StandardUncertainty: m.StandardUncertainty,
		DegreesOfFreedom:    m.DegreesOfFreedom,
	}
	if kind == types.KindB {
		if entry.Distribution, err = parseDistribution(m.Distribution); err != nil {
			return types.ManualEntry{}, fieldError(err, field+".distribution")
		}
	}
	return entry, nil
}

func parseDistribution(name string) (types.Distribution, error) {
	d := types.Distribution(strings.ToLower(strings.TrimSpace(name)))
	if !d.IsValid() {
		return "", errors.Newf(errors.TypeInput, "unknown distribution %q", name)
	}
	return d, nil
}

// parseUnitOrPPM treats an absent unit as ppm
func parseUnitOrPPM(name string) (types.Unit, error) {
	if strings.TrimSpace(name) == "" {
		return types.UnitPPM, nil
	}
	return units.ParseUnit(name)
}

func fieldError(err error, field string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithContext("field", field)
	}
	return errors.Wrap(errors.TypeInput, field, err)
}
