// Package units normalizes tolerances expressed in physical units into
// parts-per-million relative to a nominal value.
package units

import (
	"math"

	"mua-risk/core/types"
	"mua-risk/internal/errors"
)

// PPMPerPercent converts percent to ppm
const PPMPerPercent = 1e4

// definition describes one catalogue entry
type definition struct {
	unit   types.Unit
	family types.UnitFamily

	// multiplier to the family base unit; NaN when the unit has no linear
	// relation to a base unit (temperatures, relative units)
	multiplier float64
}

// catalogue is kept in display order
var catalogue = []definition{
	{types.UnitVolt, types.FamilyVoltage, 1},
	{types.UnitMilliVolt, types.FamilyVoltage, 1e-3},
	{types.UnitMicroVolt, types.FamilyVoltage, 1e-6},
	{types.UnitAmp, types.FamilyCurrent, 1},
	{types.UnitMilliAmp, types.FamilyCurrent, 1e-3},
	{types.UnitMicroAmp, types.FamilyCurrent, 1e-6},
	{types.UnitHertz, types.FamilyFrequency, 1},
	{types.UnitKiloHertz, types.FamilyFrequency, 1e3},
	{types.UnitMegaHertz, types.FamilyFrequency, 1e6},
	{types.UnitOhm, types.FamilyResistance, 1},
	{types.UnitKiloOhm, types.FamilyResistance, 1e3},
	{types.UnitMegaOhm, types.FamilyResistance, 1e6},
	{types.UnitPercent, types.FamilyRelative, math.NaN()},
	{types.UnitPPM, types.FamilyRelative, math.NaN()},
	{types.UnitFahrenheit, types.FamilyTemperature, math.NaN()},
	{types.UnitCelsius, types.FamilyTemperature, math.NaN()},
}

var byUnit = func() map[types.Unit]definition {
	m := make(map[types.Unit]definition, len(catalogue))
	for _, d := range catalogue {
		m[d.unit] = d
	}
	return m
}()

// Info describes a unit for listings
type Info struct {
	Unit       types.Unit       `json:"unit"`
	Family     types.UnitFamily `json:"family"`
	Multiplier *float64         `json:"multiplier,omitempty"`
}

// All returns the unit catalogue in display order
func All() []Info {
	out := make([]Info, 0, len(catalogue))
	for _, d := range catalogue {
		info := Info{Unit: d.unit, Family: d.family}
		if !math.IsNaN(d.multiplier) {
			m := d.multiplier
			info.Multiplier = &m
		}
		out = append(out, info)
	}
	return out
}

// NominalUnits returns the units a nominal value may be expressed in
func NominalUnits() []types.Unit {
	var out []types.Unit
	for _, d := range catalogue {
		if !d.unit.IsRelative() {
			out = append(out, d.unit)
		}
	}
	return out
}

// ParseUnit resolves a canonical unit name
func ParseUnit(name string) (types.Unit, error) {
	u := types.Unit(name)
	if _, ok := byUnit[u]; !ok {
		return "", errors.Unit(name)
	}
	return u, nil
}

// Family returns the family of u
func Family(u types.Unit) (types.UnitFamily, bool) {
	d, ok := byUnit[u]
	return d.family, ok
}

// Multiplier returns the linear multiplier of u to its family base unit.
// The result is NaN when u is unknown or has no linear multiplier.
func Multiplier(u types.Unit) float64 {
	d, ok := byUnit[u]
	if !ok {
		return math.NaN()
	}
	return d.multiplier
}

// Compatible reports whether a and b belong to the same family
func Compatible(a, b types.Unit) bool {
	fa, okA := Family(a)
	fb, okB := Family(b)
	return okA && okB && fa == fb
}

// ConvertToPPM expresses value (in unit) as ppm of the nominal.
//
// ppm passes through and % is scaled by 1e4. Any other unit needs a finite,
// non-zero nominal in the same family and a defined multiplier, otherwise the
// result is NaN. A zero value converts to 0 without consulting the nominal.
func ConvertToPPM(value float64, unit types.Unit, nominal types.Nominal) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return math.NaN()
	}
	if value == 0 {
		return 0
	}

	switch unit {
	case types.UnitPPM:
		return value
	case types.UnitPercent:
		return value * PPMPerPercent
	}

	if nominal.Value == 0 || math.IsNaN(nominal.Value) || math.IsInf(nominal.Value, 0) {
		return math.NaN()
	}
	if !Compatible(unit, nominal.Unit) {
		return math.NaN()
	}

	mul := Multiplier(unit)
	if math.IsNaN(mul) {
		return math.NaN()
	}

	return value * mul / nominal.Value * 1e6
}
