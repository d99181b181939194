package output

import (
	"mua-risk/core/engine"
	"mua-risk/core/types"
)

// row is one labelled figure of a human-readable report
type row struct {
	Label string
	Value string
}

func budgetRows(r types.Result, places int32) []row {
	return []row{
		{"Combined standard uncertainty (uc)", Display(r.UC, places) + " ppm"},
		{"Effective degrees of freedom", Display(r.Veff, 2)},
		{"Coverage factor (k)", Display(r.K, 3)},
		{"Expanded uncertainty (U)", "± " + Display(r.U, places) + " ppm"},
	}
}

func ratioRows(r types.Result) []row {
	return []row{
		{"Test uncertainty ratio (TUR)", Display(r.TUR, 2) + " : 1"},
		{"Test acceptance ratio (TAR)", Display(r.TAR, 2) + " : 1"},
	}
}

func riskRows(r types.Result, risk float64, places int32) []row {
	return []row{
		{"Target consumer risk", Percent(risk, 2)},
		{"UUT tolerance", "± " + Display(r.TolerancePPM, places) + " ppm"},
		{"Guard band (g)", Display(r.GuardBand, places) + " ppm"},
		{"Acceptance limits", "± " + Display(r.AcceptanceLimit, places) + " ppm"},
		{"PFA (false accept)", Percent(r.PFA, 2)},
		{"PFR (false reject)", Percent(r.PFR, 2)},
	}
}

func componentCells(c types.Component, places int32) []string {
	kind := "Type " + c.Kind.String()
	if c.Locked {
		kind += " (core)"
	}
	return []string{c.Name, kind, Display(c.StandardUncertaintyPPM, places), Display(c.DegreesOfFreedom, 2)}
}

var componentHeaders = []string{"Component", "Kind", "u (ppm)", "dof"}

func coverageMode(in engine.Input) string {
	if in.UseStudentT {
		return "Student-t (95%)"
	}
	return "fixed k = 2"
}
