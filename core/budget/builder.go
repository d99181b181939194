package budget

import (
	"fmt"
	"math"

	"mua-risk/core/distribution"
	"mua-risk/core/types"
	"mua-risk/core/units"
)

// Identity of the components derived from the UUT and TMDE specs
const (
	UUTID   = "uut"
	UUTName = "UUT"

	TMDEID   = "tmde"
	TMDEName = "Standard Instrument (TMDE)"

	// DefaultManualName names manual components entered without a name
	DefaultManualName = "Custom"
)

// Exclusion records why an input produced no component
type Exclusion struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// FromSpec derives a Type B component with infinite degrees of freedom from
// a UUT/TMDE style spec. A non-nil Exclusion means no component was produced.
func FromSpec(id, name string, spec types.Spec, nominal types.Nominal) (types.Component, *Exclusion) {
	exclude := func(format string, args ...interface{}) (types.Component, *Exclusion) {
		return types.Component{}, &Exclusion{Source: name, Reason: fmt.Sprintf(format, args...)}
	}

	if !spec.Distribution.IsValid() {
		return exclude("unknown distribution %q", spec.Distribution)
	}

	bound := distribution.BoundPPM(spec, nominal)
	if math.IsNaN(bound) {
		return exclude("bound in %q cannot be expressed in ppm of nominal %v %s", spec.Unit, nominal.Value, nominal.Unit)
	}

	u, ok := distribution.Reduce(spec.Distribution, bound, spec.K())
	if !ok {
		if bound <= 0 || math.IsInf(bound, 0) {
			return exclude("bound must be positive and finite, got %v ppm", bound)
		}
		return exclude("coverage factor must be positive and finite, got %v", spec.K())
	}

	return types.Component{
		ID:                     id,
		Name:                   name,
		Kind:                   types.KindB,
		StandardUncertaintyPPM: u,
		DegreesOfFreedom:       math.Inf(1),
	}, nil
}

// Core derives the locked UUT and TMDE components. Either spec may be nil.
func Core(uut, tmde *types.Spec, nominal types.Nominal) ([]types.Component, []Exclusion) {
	var (
		out        []types.Component
		exclusions []Exclusion
	)

	add := func(id, name string, spec *types.Spec) {
		if spec == nil {
			return
		}
		c, ex := FromSpec(id, name, *spec, nominal)
		if ex != nil {
			exclusions = append(exclusions, *ex)
			return
		}
		c.Locked = true
		out = append(out, c)
	}

	add(UUTID, UUTName, uut)
	add(TMDEID, TMDEName, tmde)
	return out, exclusions
}

// Manual derives a component from a manually entered contributor.
//
// Type A entries convert StandardUncertainty to ppm and keep their degrees of
// freedom (absent means infinite). Type B entries reduce their bound like a
// spec and always carry infinite degrees of freedom.
func Manual(id string, entry types.ManualEntry, nominal types.Nominal) (types.Component, *Exclusion) {
	name := entry.Name
	if name == "" {
		name = DefaultManualName
	}

	switch entry.Kind {
	case types.KindB:
		return FromSpec(id, name, entry.AsSpec(), nominal)

	case types.KindA:
		exclude := func(format string, args ...interface{}) (types.Component, *Exclusion) {
			return types.Component{}, &Exclusion{Source: name, Reason: fmt.Sprintf(format, args...)}
		}

		dof := entry.DoF()
		if math.IsNaN(dof) || dof <= 0 {
			return exclude("degrees of freedom must be positive, got %v", dof)
		}

		u := units.ConvertToPPM(entry.StandardUncertainty, entry.Unit, nominal)
		if math.IsNaN(u) {
			return exclude("standard uncertainty in %q cannot be expressed in ppm of nominal %v %s", entry.Unit, nominal.Value, nominal.Unit)
		}
		if u <= 0 || math.IsInf(u, 0) {
			return exclude("standard uncertainty must be positive and finite, got %v ppm", u)
		}

		return types.Component{
			ID:                     id,
			Name:                   name,
			Kind:                   types.KindA,
			StandardUncertaintyPPM: u,
			DegreesOfFreedom:       dof,
		}, nil

	default:
		return types.Component{}, &Exclusion{Source: name, Reason: fmt.Sprintf("unknown component kind %q", entry.Kind)}
	}
}
