package tread

import (
	"fmt"
	"strings"
)

var whenSchema = map[string]interface{}{
	"type": "string",
}

// ConditionalModifier skips the step unless its rendered condition is
// truthy. It runs before other modifiers and is accepted on step actions as
// well as normal ones, so a conditional include expands to nothing when the
// condition does not hold.
type ConditionalModifier struct {
	BaseModifier

	condition TemplateFunc
}

const conditionalPriority = 200

func newConditionalModifier(ctxt *Context, name string, config interface{}, addr *StepAddress) (Modifier, error) {
	raw, _ := config.(string)
	condition, err := ctxt.Template(raw)
	if err != nil {
		return nil, configError(addr, "bad condition for %q: %v", name, err)
	}

	return &ConditionalModifier{
		BaseModifier: BaseModifier{part{name: name, config: config, addr: addr}},
		condition:    condition,
	}, nil
}

func (m *ConditionalModifier) PreCall(ctxt *Context, earlier, later []Modifier, action Action) (*StepResult, error) {
	value, err := m.condition(ctxt)
	if err != nil {
		return nil, err
	}
	if Truthy(value) {
		return nil, nil
	}

	return NewResult(StatusSkipped), nil
}

// Truthy reports whether a rendered condition value counts as true. Empty
// strings and the spellings "0", "false", and "no" (any case) are false;
// nil, false booleans, and zero numbers are false; everything else is true.
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "no":
			return false
		}
		return true
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return fmt.Sprint(v) != ""
	}
}
