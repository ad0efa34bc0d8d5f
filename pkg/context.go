package tread

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
)

// TemplateFunc is a compiled template: invoked with the context, it renders
// the value the template produces. Non-string raw values compile into a
// constant function, so templating only ever touches strings.
type TemplateFunc func(ctxt *Context) (interface{}, error)

// Verbosity levels for Emit. The default verbosity is LevelInfo; --quiet
// lowers it to LevelQuiet and each -v raises it.
const (
	LevelQuiet = iota
	LevelInfo
	LevelVerbose
)

// Context carries everything a run needs: verbosity settings, the template
// variables, the process environment, the accumulated step list, and the
// registry consulted during step resolution.
type Context struct {
	Verbose int
	Debug   bool

	Variables   *SensitiveDict
	Environment *Environment
	Steps       []*Step

	Registry *Registry

	Stdout io.Writer
	Stderr io.Writer
}

// NewContext builds a run context. cwd is the initial working directory for
// the environment; empty means the current one.
func NewContext(verbose int, debug bool, cwd string) (*Context, error) {
	env, err := NewEnvironment(nil, cwd)
	if err != nil {
		return nil, err
	}

	return &Context{
		Verbose:     verbose,
		Debug:       debug,
		Variables:   NewSensitiveDict(),
		Environment: env,
		Registry:    DefaultRegistry,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}, nil
}

// Emit prints a message to the user. Debug messages go to stderr and only
// appear when debugging is enabled; other messages go to stdout when the
// verbosity is at least level.
func (c *Context) Emit(msg string, level int, debug bool) {
	if debug {
		if !c.Debug {
			return
		}
		fmt.Fprintln(c.Stderr, msg)
		return
	}

	if c.Verbose < level {
		return
	}
	fmt.Fprintln(c.Stdout, msg)
}

func (c *Context) funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()

	funcs["env"] = func(name string) string {
		v, _ := c.Environment.Get(name)
		return v
	}

	return funcs
}

// Template compiles a raw configuration value into a TemplateFunc. Strings
// are parsed as text/template bodies rendered against the template
// variables; anything else passes through untouched.
func (c *Context) Template(raw interface{}) (TemplateFunc, error) {
	s, ok := raw.(string)
	if !ok {
		return func(*Context) (interface{}, error) {
			return raw, nil
		}, nil
	}

	tmpl, err := template.New("config").Option("missingkey=error").Funcs(c.funcMap()).Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile template %q", s)
	}

	return func(ctxt *Context) (interface{}, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, ctxt.Variables.Data()); err != nil {
			return nil, errors.Wrapf(err, "failed to render template %q", s)
		}
		return buf.String(), nil
	}, nil
}

// templateString is a convenience for configuration fields that must render
// to a string.
func templateString(fn TemplateFunc, ctxt *Context) (string, error) {
	v, err := fn(ctxt)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}

	return fmt.Sprintf("%v", v), nil
}
