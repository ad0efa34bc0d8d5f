package tread

import (
	log "github.com/sirupsen/logrus"
	"github.com/pkg/errors"
)

// Action is the unit of work a step performs. Call is the only operation; a
// returned error is captured by the step protocol and becomes an
// ERROR-status result rather than propagating.
type Action interface {
	Name() string
	Call(ctxt *Context) (*StepResult, error)
}

// StepsAction is the contract of a step action: instead of producing a
// result it produces more steps, expanded once at parse time.
type StepsAction interface {
	Action
	Steps(ctxt *Context) ([]*Step, error)
}

// Modifier wraps an action with cross-cutting behavior. ActionConf runs at
// parse time in priority order and may rewrite the action's configuration.
// PreCall runs in priority order right before the action and may preempt it
// by returning a non-nil result. PostCall runs in reverse priority order
// after a result exists and may rewrite it.
//
// Unlike action errors, errors returned from modifier hooks propagate out of
// the step protocol: modifiers sit inside the orchestration trust boundary,
// actions are the fallible payload.
type Modifier interface {
	Name() string
	ActionConf(ctxt *Context, def *ActionDef, actionName string, config interface{}, addr *StepAddress) (interface{}, error)
	PreCall(ctxt *Context, earlier, later []Modifier, action Action) (*StepResult, error)
	PostCall(ctxt *Context, result *StepResult, action Action, later, earlier []Modifier) (*StepResult, error)
}

// part carries the fields every action and modifier stores: its registry
// name, raw configuration, and the address of the step it belongs to.
type part struct {
	name   string
	config interface{}
	addr   *StepAddress
}

func (p part) Name() string {
	return p.name
}

func (p part) Addr() *StepAddress {
	return p.addr
}

// BaseModifier supplies the default hook implementations: identity
// ActionConf, no-op PreCall, identity PostCall. Concrete modifiers embed it
// and override what they need.
type BaseModifier struct {
	part
}

func (m BaseModifier) ActionConf(_ *Context, _ *ActionDef, _ string, config interface{}, _ *StepAddress) (interface{}, error) {
	return config, nil
}

func (m BaseModifier) PreCall(_ *Context, _, _ []Modifier, _ Action) (*StepResult, error) {
	return nil, nil
}

func (m BaseModifier) PostCall(_ *Context, result *StepResult, _ Action, _, _ []Modifier) (*StepResult, error) {
	return result, nil
}

// Step is one composed, executable unit: an action plus its modifiers in
// ascending priority order.
type Step struct {
	Addr        *StepAddress
	Action      Action
	Modifiers   []Modifier
	Name        string
	Description string

	stepAction bool
}

// NewStep assembles a step. The display name defaults to the action's type
// name.
func NewStep(addr *StepAddress, action Action, modifiers []Modifier, name, description string) *Step {
	if name == "" {
		name = action.Name()
	}

	return &Step{
		Addr:        addr,
		Action:      action,
		Modifiers:   modifiers,
		Name:        name,
		Description: description,
	}
}

// Call invokes the step: a forward pre-call pass over the modifiers, the
// action itself unless a modifier preempted it, then a reverse post-call
// pass starting from wherever the forward pass stopped. Modifiers whose
// pre-call never ran never see post-call either.
func (s *Step) Call(ctxt *Context) (*StepResult, error) {
	var result *StepResult

	// Forward pass; shortCircuit is the index of the preempting modifier.
	shortCircuit := -1
	preempted := false
	for i, mod := range s.Modifiers {
		r, err := mod.PreCall(ctxt, s.Modifiers[:i], s.Modifiers[i+1:], s.Action)
		if err != nil {
			return nil, err
		}
		if r != nil {
			log.WithFields(log.Fields{"step": s.Name, "modifier": mod.Name()}).Debug("modifier preempted the action")
			result = r
			shortCircuit = i
			preempted = true
			break
		}
	}

	if !preempted {
		r, err := s.Action.Call(ctxt)
		switch {
		case err != nil:
			result = ResultFromError(err)
		case r == nil:
			// The action neither produced a result nor failed.
			result = NewResult(StatusError)
		default:
			result = r
		}
		shortCircuit = len(s.Modifiers) - 1
	}

	// Reverse pass, from the stopping point back to the outermost modifier.
	for j := shortCircuit; j >= 0; j-- {
		r, err := s.Modifiers[j].PostCall(ctxt, result, s.Action, s.Modifiers[j+1:], s.Modifiers[:j])
		if err != nil {
			return nil, err
		}
		result = r
	}

	return result, nil
}

// Expand resolves a step action into the steps it produces, running the
// modifier pre-call pass first. A preempting modifier (a conditional skip,
// say) yields an empty expansion; there is no result for the reverse pass
// to rewrite, so it is not run.
func (s *Step) Expand(ctxt *Context) ([]*Step, error) {
	stepsAction, ok := s.Action.(StepsAction)
	if !ok {
		return nil, errors.Errorf("action %q is not a step action", s.Action.Name())
	}

	for i, mod := range s.Modifiers {
		r, err := mod.PreCall(ctxt, s.Modifiers[:i], s.Modifiers[i+1:], s.Action)
		if err != nil {
			return nil, err
		}
		if r != nil {
			log.WithFields(log.Fields{"step": s.Name, "modifier": mod.Name()}).Debug("expansion preempted, no steps produced")
			return nil, nil
		}
	}

	return stepsAction.Steps(ctxt)
}
