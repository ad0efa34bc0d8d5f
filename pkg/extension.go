package tread

import (
	"fmt"
	"sort"
	"time"
)

// Extension hooks into the run around the step loop. Extensions are ordered
// by priority; the lowest priority sees the steps and each pre-step first.
type Extension interface {
	Priority() int

	// ReadSteps is invoked after each batch of steps is parsed, before any
	// of them run.
	ReadSteps(ctxt *Context, steps []*Step) error

	// PreStep runs before a step. Returning true skips the step; once one
	// extension claims the skip, later extensions are not consulted.
	PreStep(ctxt *Context, step *Step, idx int) (bool, error)

	// PostStep runs after a step with its result.
	PostStep(ctxt *Context, step *Step, idx int, result *StepResult) error

	// Finalize runs once after the loop, in reverse priority order. The
	// returned error becomes the run's outcome; implementations that do
	// not alter it return it unchanged.
	Finalize(ctxt *Context, outcome error) error
}

// BaseExtension supplies no-op hooks. Concrete extensions embed it and
// override what they need.
type BaseExtension struct{}

func (BaseExtension) ReadSteps(_ *Context, _ []*Step) error { return nil }

func (BaseExtension) PreStep(_ *Context, _ *Step, _ int) (bool, error) { return false, nil }

func (BaseExtension) PostStep(_ *Context, _ *Step, _ int, _ *StepResult) error { return nil }

func (BaseExtension) Finalize(_ *Context, outcome error) error { return outcome }

// ExtensionSet holds the active extensions in priority order.
type ExtensionSet struct {
	exts []Extension
}

func NewExtensionSet(exts ...Extension) *ExtensionSet {
	s := &ExtensionSet{}
	for _, ext := range exts {
		s.Add(ext)
	}
	return s
}

func (s *ExtensionSet) Add(ext Extension) {
	s.exts = append(s.exts, ext)
	sort.SliceStable(s.exts, func(i, j int) bool {
		return s.exts[i].Priority() < s.exts[j].Priority()
	})
}

func (s *ExtensionSet) ReadSteps(ctxt *Context, steps []*Step) error {
	for _, ext := range s.exts {
		if err := ext.ReadSteps(ctxt, steps); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExtensionSet) PreStep(ctxt *Context, step *Step, idx int) (bool, error) {
	for _, ext := range s.exts {
		skip, err := ext.PreStep(ctxt, step, idx)
		if err != nil {
			return false, err
		}
		if skip {
			return true, nil
		}
	}
	return false, nil
}

func (s *ExtensionSet) PostStep(ctxt *Context, step *Step, idx int, result *StepResult) error {
	for _, ext := range s.exts {
		if err := ext.PostStep(ctxt, step, idx, result); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExtensionSet) Finalize(ctxt *Context, outcome error) error {
	for i := len(s.exts) - 1; i >= 0; i-- {
		outcome = s.exts[i].Finalize(ctxt, outcome)
	}
	return outcome
}

// TimingExtension measures per-step wall time and reports a breakdown when
// the run finishes.
type TimingExtension struct {
	BaseExtension

	clock  func() time.Time
	starts map[int]time.Time
	spans  []stepSpan
}

type stepSpan struct {
	idx     int
	name    string
	elapsed time.Duration
}

func NewTimingExtension() *TimingExtension {
	return &TimingExtension{
		clock:  time.Now,
		starts: map[int]time.Time{},
	}
}

func (*TimingExtension) Priority() int { return 50 }

func (e *TimingExtension) PreStep(ctxt *Context, step *Step, idx int) (bool, error) {
	e.starts[idx] = e.clock()
	return false, nil
}

func (e *TimingExtension) PostStep(ctxt *Context, step *Step, idx int, result *StepResult) error {
	start, ok := e.starts[idx]
	if !ok {
		return nil
	}
	delete(e.starts, idx)
	e.spans = append(e.spans, stepSpan{idx: idx, name: step.Name, elapsed: e.clock().Sub(start)})
	return nil
}

func (e *TimingExtension) Finalize(ctxt *Context, outcome error) error {
	if len(e.spans) == 0 {
		return outcome
	}

	var total time.Duration
	ctxt.Emit("Step timings:", LevelInfo, false)
	for _, span := range e.spans {
		total += span.elapsed
		ctxt.Emit(fmt.Sprintf("  [Step %d]: %s %s", span.idx+1, span.name, span.elapsed.Round(time.Millisecond)), LevelInfo, false)
	}
	ctxt.Emit(fmt.Sprintf("Total: %s", total.Round(time.Millisecond)), LevelInfo, false)
	return outcome
}
