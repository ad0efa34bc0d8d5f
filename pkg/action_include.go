package tread

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/treadproject/tread/pkg/get"
)

var includeSchema = map[string]interface{}{
	"oneOf": []interface{}{
		map[string]interface{}{"type": "string"},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path":  map[string]interface{}{"type": "string"},
				"key":   map[string]interface{}{"type": "string"},
				"start": map[string]interface{}{"type": "integer"},
				"stop":  map[string]interface{}{"type": "integer"},
			},
			"additionalProperties": false,
			"required":             []interface{}{"path"},
		},
	},
}

type includeConfig struct {
	Path  string `mapstructure:"path"`
	Key   string `mapstructure:"key"`
	Start *int   `mapstructure:"start"`
	Stop  *int   `mapstructure:"stop"`
}

// IncludeAction splices steps from another file in at the point of the
// include. It is a step action: it is resolved once, at parse time. Local
// paths resolve relative to the including file's directory; remote sources
// in go-getter syntax are fetched first.
type IncludeAction struct {
	part

	path    TemplateFunc
	key     TemplateFunc
	start   *int
	stop    *int
	dirname string
}

func newIncludeAction(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error) {
	var decoded includeConfig
	if path, ok := config.(string); ok {
		decoded.Path = path
	} else if err := mapstructure.Decode(config, &decoded); err != nil {
		return nil, configError(addr, "bad configuration for %q: %v", name, err)
	}

	pathTmpl, err := ctxt.Template(decoded.Path)
	if err != nil {
		return nil, configError(addr, "bad path for %q: %v", name, err)
	}
	keyTmpl, err := ctxt.Template(decoded.Key)
	if err != nil {
		return nil, configError(addr, "bad key for %q: %v", name, err)
	}

	return &IncludeAction{
		part:    part{name: name, config: config, addr: addr},
		path:    pathTmpl,
		key:     keyTmpl,
		start:   decoded.Start,
		stop:    decoded.Stop,
		dirname: addr.Dirname(),
	}, nil
}

// Call is never reached through the step-action parse path; it exists to
// satisfy the Action contract.
func (a *IncludeAction) Call(ctxt *Context) (*StepResult, error) {
	return nil, errors.Errorf("step action %q produces steps, not a result", a.name)
}

func (a *IncludeAction) Steps(ctxt *Context) ([]*Step, error) {
	path, err := templateString(a.path, ctxt)
	if err != nil {
		return nil, err
	}
	key, err := templateString(a.key, ctxt)
	if err != nil {
		return nil, err
	}

	if get.Remote(path) {
		path, err = get.File(path)
		if err != nil {
			return nil, err
		}
	} else {
		path = canonicalizePath(a.dirname, path)
	}

	steps, err := ParseFile(ctxt, path, key, a.addr)
	if err != nil {
		return nil, err
	}

	if a.start == nil && a.stop == nil {
		return steps, nil
	}

	start, stop := 0, len(steps)
	if a.start != nil {
		start = clamp(*a.start, 0, len(steps))
	}
	if a.stop != nil {
		stop = clamp(*a.stop, start, len(steps))
	}

	return steps[start:stop], nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
