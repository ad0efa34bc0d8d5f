package tread

import (
	"io/ioutil"
	"sort"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/treadproject/tread/pkg/util/maputil"
)

// Reserved step configuration fields and their validation schemas. A key
// matching a reserved field is always treated as reserved, even if an
// action or modifier of the same name exists.
var stepFieldSchemas = map[string]map[string]interface{}{
	"name":        {"type": "string"},
	"description": {"type": "string"},
}

// stepConf is one raw step entry from YAML: either a bare scalar name or a
// mapping. The mapping form keeps its key order, which decides tie-breaking
// between modifiers of equal priority.
type stepConf struct {
	scalar    string
	isScalar  bool
	mapping   yaml.MapSlice
	isMapping bool
	invalid   interface{}
}

func (c *stepConf) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}

	switch typed := v.(type) {
	case string:
		c.scalar = typed
		c.isScalar = true
	case map[interface{}]interface{}:
		// Decode again into a MapSlice to keep the document's key order.
		if err := unmarshal(&c.mapping); err != nil {
			return err
		}
		c.isMapping = true
	default:
		// Remember whatever it actually was; parseStep reports it with
		// the step's address.
		c.invalid = v
	}

	return nil
}

// ParseFile reads a YAML step file and resolves every entry into steps.
// When key is non-empty the file must be a mapping and the list under that
// key is used; otherwise the file itself must be a list. addr, when
// non-nil, is the address of the including step, used for attribution.
func ParseFile(ctxt *Context, fname, key string, addr *StepAddress) ([]*Step, error) {
	data, err := ioutil.ReadFile(fname)
	if err != nil {
		return nil, configError(addr, "failed to read file %q: %v", fname, err)
	}

	var confs []stepConf

	if key != "" {
		var doc map[string][]stepConf
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, configError(addr, "bad step configuration file %q: expecting mapping with key %q: %v", fname, key, err)
		}
		selected, ok := doc[key]
		if !ok {
			return nil, configError(addr, "bad step configuration file %q: expecting mapping with key %q", fname, key)
		}
		confs = selected
	} else {
		if err := yaml.Unmarshal(data, &confs); err != nil {
			return nil, configError(addr, "bad step configuration sequence at %s: expecting list: %v", fname, err)
		}
	}

	log.WithFields(log.Fields{"file": fname, "key": key, "entries": len(confs)}).Debug("parsing step file")

	var steps []*Step
	for idx, conf := range confs {
		resolved, err := parseStep(ctxt, NewStepAddress(fname, idx, key), conf)
		if err != nil {
			return nil, errors.Annotatef(err, "error reading step[%d] of %s", idx, fname)
		}
		steps = append(steps, resolved...)
	}

	return steps, nil
}

// pendingItem is the parse-time carrier for one action or modifier before
// construction: its name and raw configuration. It is not retained past
// step construction.
type pendingItem struct {
	name string
	conf interface{}
}

// parseStep resolves one raw step configuration into steps: usually one,
// but a step action expands into zero or more.
func parseStep(ctxt *Context, addr *StepAddress, conf stepConf) ([]*Step, error) {
	mapping := conf.mapping
	switch {
	case conf.isScalar:
		// A bare scalar is sugar for {name: null}.
		mapping = yaml.MapSlice{{Key: conf.scalar, Value: nil}}
	case conf.isMapping:
	default:
		return nil, configError(addr, "unable to parse step configuration: expecting string or mapping, not %T", conf.invalid)
	}

	var actionItem *pendingItem
	var actionDef *ActionDef
	modItems := map[int][]pendingItem{}
	modDefs := map[string]*ModifierDef{}
	kwargs := map[string]string{}

	for _, item := range mapping {
		key, ok := item.Key.(string)
		if !ok {
			return nil, configError(addr, "bad step configuration: expecting string key, not %v(%T)", item.Key, item.Key)
		}

		value, err := maputil.Normalize(item.Value)
		if err != nil {
			return nil, configError(addr, "bad step configuration for key %q: %v", key, err)
		}

		// Reserved metadata fields win over any registered name.
		if schema, reserved := stepFieldSchemas[key]; reserved {
			if err := validateSchema(key, value, schema, addr); err != nil {
				return nil, err
			}
			kwargs[key], _ = value.(string)
			continue
		}

		if def, ok := ctxt.Registry.Action(key); ok {
			if actionItem != nil {
				return nil, configError(addr, "bad step configuration: action %q specified, but action %q already processed", key, actionItem.name)
			}
			actionItem = &pendingItem{name: key, conf: value}
			actionDef = def
			continue
		}

		if def, ok := ctxt.Registry.Modifier(key); ok {
			modItems[def.Priority] = append(modItems[def.Priority], pendingItem{name: key, conf: value})
			modDefs[key] = def
			continue
		}

		return nil, configError(addr, "bad step configuration: unable to resolve action %q", key)
	}

	if actionItem == nil {
		return nil, configError(addr, "bad step configuration: no action specified")
	}

	actionType := RestrictNormal
	if actionDef.StepAction {
		actionType = RestrictStep
	}

	// Instantiate modifiers in ascending priority order, letting each
	// rewrite the action's configuration in turn.
	priorities := make([]int, 0, len(modItems))
	for prio := range modItems {
		priorities = append(priorities, prio)
	}
	sort.Ints(priorities)

	var modifiers []Modifier
	for _, prio := range priorities {
		for _, item := range modItems[prio] {
			def := modDefs[item.name]

			if def.Restriction&actionType == 0 {
				return nil, configError(addr, "bad step configuration: modifier %q is incompatible with the action %q", item.name, actionItem.name)
			}

			if err := validateSchema(item.name, item.conf, def.Schema, addr); err != nil {
				return nil, err
			}
			mod, err := def.New(ctxt, item.name, item.conf, addr)
			if err != nil {
				return nil, err
			}
			modifiers = append(modifiers, mod)

			conf, err := mod.ActionConf(ctxt, actionDef, actionItem.name, actionItem.conf, addr)
			if err != nil {
				return nil, err
			}
			actionItem.conf = conf
		}
	}

	if err := validateSchema(actionItem.name, actionItem.conf, actionDef.Schema, addr); err != nil {
		return nil, err
	}
	action, err := actionDef.New(ctxt, actionItem.name, actionItem.conf, addr)
	if err != nil {
		return nil, err
	}

	step := NewStep(addr, action, modifiers, kwargs["name"], kwargs["description"])

	// A step action is invoked right now, through the step so that its
	// modifiers apply, and contributes its expansion instead of itself.
	if actionDef.StepAction {
		step.stepAction = true
		expanded, err := step.Expand(ctxt)
		if err != nil {
			return nil, err
		}
		return expanded, nil
	}

	return []*Step{step}, nil
}

// ParseString resolves steps from an in-memory YAML document. The name is
// used in step addresses in place of a file name.
func ParseString(ctxt *Context, name, document string) ([]*Step, error) {
	var confs []stepConf
	if err := yaml.Unmarshal([]byte(document), &confs); err != nil {
		return nil, configError(nil, "bad step configuration sequence at %s: expecting list: %v", name, err)
	}

	var steps []*Step
	for idx, conf := range confs {
		resolved, err := parseStep(ctxt, NewStepAddress(name, idx, ""), conf)
		if err != nil {
			return nil, errors.Annotatef(err, "error reading step[%d] of %s", idx, name)
		}
		steps = append(steps, resolved...)
	}

	return steps, nil
}
