package tread

var chdirSchema = map[string]interface{}{"type": "string"}

// DirectoryAction changes the working directory that subsequent commands
// run in. Relative paths are interpreted against the current working
// directory.
type DirectoryAction struct {
	part

	target TemplateFunc
}

func newDirectoryAction(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error) {
	tmpl, err := ctxt.Template(config)
	if err != nil {
		return nil, configError(addr, "bad directory for %q: %v", name, err)
	}

	return &DirectoryAction{
		part:   part{name: name, config: config, addr: addr},
		target: tmpl,
	}, nil
}

func (a *DirectoryAction) Call(ctxt *Context) (*StepResult, error) {
	target, err := templateString(a.target, ctxt)
	if err != nil {
		return nil, err
	}

	ctxt.Environment.Chdir(target)

	return NewResult(StatusSuccess), nil
}
