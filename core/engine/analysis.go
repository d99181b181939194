package engine

import (
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mua-risk/core/budget"
	"mua-risk/core/types"
	"mua-risk/internal/errors"
	"mua-risk/internal/logging"
)

// snapshot pairs an input with the report computed from it. Snapshots are
// never modified after they are published.
type snapshot struct {
	input  Input
	report Report
}

// Analysis is the single "current analysis" context.
//
// Every mutation clones the current input, applies the change, recomputes
// the report and publishes the new snapshot with compare-and-swap, so readers
// never observe a budget while it is being changed. All methods are safe for
// concurrent use.
type Analysis struct {
	id      string
	current atomic.Pointer[snapshot]
	log     *zap.Logger
}

// NewAnalysis creates an analysis seeded with in
func NewAnalysis(in Input) *Analysis {
	a := &Analysis{id: uuid.NewString()}
	a.log = logging.Named("analysis").With(zap.String("analysis", a.id))
	a.current.Store(a.build(pinIDs(in.Clone())))
	return a
}

// ID returns the analysis identifier
func (a *Analysis) ID() string {
	return a.id
}

// Input returns a copy of the current input
func (a *Analysis) Input() Input {
	return a.current.Load().input.Clone()
}

// Report returns the report for the current input. It is computed once per
// input change, not per call.
func (a *Analysis) Report() Report {
	return a.current.Load().report
}

// Result returns the current budget result
func (a *Analysis) Result() types.Result {
	return a.Report().Result
}

// Replace swaps in a whole new input
func (a *Analysis) Replace(in Input) Report {
	return a.update(func(cur *Input) bool {
		*cur = pinIDs(in.Clone())
		return true
	})
}

// Modify applies fn to a copy of the current input and publishes the result
// as one swap. fn may run more than once when writers race, so it must only
// touch the input it is given.
func (a *Analysis) Modify(fn func(in *Input)) Report {
	return a.update(func(cur *Input) bool {
		fn(cur)
		*cur = pinIDs(*cur)
		return true
	})
}

// SetNominal changes the nominal value
func (a *Analysis) SetNominal(n types.Nominal) Report {
	return a.update(func(cur *Input) bool {
		if cur.Nominal == n {
			return false
		}
		cur.Nominal = n
		return true
	})
}

// SetUUT replaces the UUT spec; nil removes it
func (a *Analysis) SetUUT(spec *types.Spec) Report {
	return a.update(func(cur *Input) bool {
		cur.UUT = cloneSpec(spec)
		return true
	})
}

// SetTMDE replaces the TMDE spec; nil removes it
func (a *Analysis) SetTMDE(spec *types.Spec) Report {
	return a.update(func(cur *Input) bool {
		cur.TMDE = cloneSpec(spec)
		return true
	})
}

// SetUseStudentT switches the coverage-factor mode
func (a *Analysis) SetUseStudentT(use bool) Report {
	return a.update(func(cur *Input) bool {
		if cur.UseStudentT == use {
			return false
		}
		cur.UseStudentT = use
		return true
	})
}

// SetTargetConsumerRisk changes the two-sided consumer-risk target
func (a *Analysis) SetTargetConsumerRisk(risk float64) Report {
	return a.update(func(cur *Input) bool {
		if cur.Risk.TargetConsumerRisk == risk {
			return false
		}
		cur.Risk.TargetConsumerRisk = risk
		return true
	})
}

// AddManual appends a manual entry and returns its ID. Entries without an ID
// receive a random one. An ID that names a core component or an existing
// entry is refused with a conflict error and the analysis is left unchanged.
func (a *Analysis) AddManual(entry types.ManualEntry) (string, Report, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	id := entry.ID

	var err error
	report := a.update(func(cur *Input) bool {
		err = nil
		if id == budget.UUTID || id == budget.TMDEID {
			err = errors.Conflict("core component", id)
			return false
		}
		for _, existing := range ManualIDs(cur.Manual) {
			if existing == id {
				err = errors.Conflict("component", id)
				return false
			}
		}
		cur.Manual = append(cur.Manual, cloneEntry(entry))
		return true
	})
	if err != nil {
		return "", report, err
	}
	return id, report, nil
}

// RemoveManual removes a manual entry by ID. The locked UUT and TMDE
// components cannot be removed; ok is false when nothing was removed.
func (a *Analysis) RemoveManual(id string) (report Report, ok bool) {
	report = a.update(func(cur *Input) bool {
		ok = false
		for i, existing := range ManualIDs(cur.Manual) {
			if existing != id {
				continue
			}
			manual := make([]types.ManualEntry, 0, len(cur.Manual)-1)
			manual = append(manual, cur.Manual[:i]...)
			cur.Manual = append(manual, cur.Manual[i+1:]...)
			ok = true
			return true
		}
		return false
	})
	if !ok {
		if c, found := report.Budget.Find(id); found && c.Locked {
			a.log.Debug("refused to remove locked component", zap.String("component", id))
		}
	}
	return report, ok
}

// update applies fn to a private copy of the current input and publishes the
// result. fn returns false when it made no change, which keeps the memoized
// report.
func (a *Analysis) update(fn func(*Input) bool) Report {
	for {
		old := a.current.Load()
		next := old.input.Clone()
		if !fn(&next) {
			return old.report
		}
		snap := a.build(next)
		if a.current.CompareAndSwap(old, snap) {
			return snap.report
		}
	}
}

func (a *Analysis) build(in Input) *snapshot {
	report := Compute(in)
	for _, ex := range report.Exclusions {
		a.log.Debug("component excluded", zap.String("source", ex.Source), zap.String("reason", ex.Reason))
	}
	a.log.Debug("budget recomputed",
		zap.Int("components", report.Budget.Len()),
		zap.Float64("uc", report.Result.UC),
		zap.Float64("k", report.Result.K))
	return &snapshot{input: in, report: report}
}

// pinIDs fixes positional manual IDs so they survive removals
func pinIDs(in Input) Input {
	for i, id := range ManualIDs(in.Manual) {
		in.Manual[i].ID = id
	}
	return in
}

// Components returns the components of the current budget
func (a *Analysis) Components() []types.Component {
	return a.Report().Budget.Components()
}

// Exclusions returns the inputs that currently yield no component
func (a *Analysis) Exclusions() []budget.Exclusion {
	ex := a.Report().Exclusions
	return append([]budget.Exclusion(nil), ex...)
}
