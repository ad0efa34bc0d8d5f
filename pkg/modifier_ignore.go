package tread

var ignoreErrorsSchema = map[string]interface{}{
	"type": "boolean",
}

// IgnoreErrorsModifier marks the step's result as ignored (or explicitly
// not ignored) so a failure does not stop the run. Only the innermost
// modifier to set the flag wins, and it is restricted to normal actions:
// a step action never produces a result to mark.
type IgnoreErrorsModifier struct {
	BaseModifier

	ignore bool
}

const ignoreErrorsPriority = 300

func newIgnoreErrorsModifier(ctxt *Context, name string, config interface{}, addr *StepAddress) (Modifier, error) {
	ignore, _ := config.(bool)

	return &IgnoreErrorsModifier{
		BaseModifier: BaseModifier{part{name: name, config: config, addr: addr}},
		ignore:       ignore,
	}, nil
}

func (m *IgnoreErrorsModifier) PostCall(ctxt *Context, result *StepResult, action Action, later, earlier []Modifier) (*StepResult, error) {
	result.SetIgnore(m.ignore)

	return result, nil
}
