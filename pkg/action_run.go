package tread

import (
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// runSchema accepts either a single command string (split with shell
// quoting after templating) or a list of arguments (templated element by
// element, no splitting).
var runSchema = map[string]interface{}{
	"oneOf": []interface{}{
		map[string]interface{}{"type": "string"},
		map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
}

// RunAction invokes an external command through the environment. The exit
// code becomes the result: zero is SUCCESS, anything else FAILURE.
type RunAction struct {
	part

	command TemplateFunc   // string form
	args    []TemplateFunc // list form
}

func newRunAction(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error) {
	action := &RunAction{part: part{name: name, config: config, addr: addr}}

	switch config := config.(type) {
	case string:
		tmpl, err := ctxt.Template(config)
		if err != nil {
			return nil, configError(addr, "bad command for %q: %v", name, err)
		}
		action.command = tmpl
	case []interface{}:
		for _, arg := range config {
			tmpl, err := ctxt.Template(arg)
			if err != nil {
				return nil, configError(addr, "bad command argument for %q: %v", name, err)
			}
			action.args = append(action.args, tmpl)
		}
	default:
		return nil, configError(addr, "bad command for %q: expecting string or list, not %T", name, config)
	}

	return action, nil
}

func (a *RunAction) Call(ctxt *Context) (*StepResult, error) {
	var cmd *exec.Cmd

	if a.command != nil {
		command, err := templateString(a.command, ctxt)
		if err != nil {
			return nil, err
		}
		cmd, err = ctxt.Environment.Command(command)
		if err != nil {
			return nil, err
		}
	} else {
		argv := make([]string, 0, len(a.args))
		for _, arg := range a.args {
			rendered, err := templateString(arg, ctxt)
			if err != nil {
				return nil, err
			}
			argv = append(argv, rendered)
		}
		var err error
		cmd, err = ctxt.Environment.Command(argv)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{"args": cmd.Args, "cwd": cmd.Dir}).Debug("running command")

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return ResultFromReturnCode(exitErr.ExitCode()), nil
		}
		// The command could not be started at all.
		return nil, err
	}

	return ResultFromReturnCode(0), nil
}
