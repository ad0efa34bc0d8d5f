package tread

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SensitiveEnvVar is the environment variable holding the set of variable
// names whose values must be masked in any printed form of the environment.
const SensitiveEnvVar = "TREAD_SENSITIVE"

// boundVariable is a list- or set-shaped view over one environment
// variable. Mutating the view rebuilds the backing string value; assigning
// the backing value re-parses the view.
type boundVariable interface {
	update(raw string)
	rebuild()
}

// ListVariable presents an environment variable such as PATH as an ordered
// list of elements joined by a separator.
type ListVariable struct {
	env   *Environment
	name  string
	sep   string
	elems []string
}

func (v *ListVariable) update(raw string) {
	if raw == "" {
		v.elems = nil
		return
	}
	v.elems = strings.Split(raw, v.sep)
}

func (v *ListVariable) rebuild() {
	v.env.data[v.name] = strings.Join(v.elems, v.sep)
}

func (v *ListVariable) Len() int {
	return len(v.elems)
}

func (v *ListVariable) Get(idx int) string {
	return v.elems[idx]
}

func (v *ListVariable) Set(idx int, value string) {
	v.elems[idx] = value
	v.rebuild()
}

func (v *ListVariable) Append(value string) {
	v.elems = append(v.elems, value)
	v.rebuild()
}

func (v *ListVariable) Insert(idx int, value string) {
	v.elems = append(v.elems, "")
	copy(v.elems[idx+1:], v.elems[idx:])
	v.elems[idx] = value
	v.rebuild()
}

func (v *ListVariable) Remove(idx int) {
	v.elems = append(v.elems[:idx], v.elems[idx+1:]...)
	v.rebuild()
}

func (v *ListVariable) Elems() []string {
	return append([]string(nil), v.elems...)
}

func (v *ListVariable) String() string {
	return v.env.data[v.name]
}

// SetVariable presents an environment variable as an unordered set of
// elements joined by a separator. The backing string keeps its elements
// sorted so the value is stable.
type SetVariable struct {
	env   *Environment
	name  string
	sep   string
	elems map[string]struct{}
}

func (v *SetVariable) update(raw string) {
	v.elems = map[string]struct{}{}
	if raw == "" {
		return
	}
	for _, e := range strings.Split(raw, v.sep) {
		v.elems[e] = struct{}{}
	}
}

func (v *SetVariable) rebuild() {
	v.env.data[v.name] = strings.Join(v.Elems(), v.sep)
}

func (v *SetVariable) Len() int {
	return len(v.elems)
}

func (v *SetVariable) Contains(item string) bool {
	_, ok := v.elems[item]
	return ok
}

func (v *SetVariable) Add(item string) {
	v.elems[item] = struct{}{}
	v.rebuild()
}

func (v *SetVariable) Discard(item string) {
	delete(v.elems, item)
	v.rebuild()
}

func (v *SetVariable) Elems() []string {
	elems := make([]string, 0, len(v.elems))
	for e := range v.elems {
		elems = append(elems, e)
	}
	sort.Strings(elems)

	return elems
}

func (v *SetVariable) String() string {
	return v.env.data[v.name]
}

// Environment holds the process environment and working directory that
// external commands run with. PATH is bound as a list variable and the
// sensitive-name set as a set variable.
type Environment struct {
	data      map[string]string
	special   map[string]boundVariable
	sensitive *SetVariable
	cwd       string
}

// NewEnvironment builds an Environment from the given variables (nil means
// the current process environment) and working directory (empty means the
// current one; relative paths are interpreted against it).
func NewEnvironment(environ map[string]string, cwd string) (*Environment, error) {
	data := environ
	if data == nil {
		data = map[string]string{}
		for _, pair := range os.Environ() {
			parts := strings.SplitN(pair, "=", 2)
			data[parts[0]] = parts[1]
		}
	}

	base, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine working directory")
	}
	if cwd == "" {
		cwd = "."
	}

	env := &Environment{
		data:    data,
		special: map[string]boundVariable{},
		cwd:     canonicalizePath(base, cwd),
	}

	if err := env.DeclareList("PATH", string(os.PathListSeparator)); err != nil {
		return nil, err
	}
	if err := env.DeclareSet(SensitiveEnvVar, string(os.PathListSeparator)); err != nil {
		return nil, err
	}
	env.sensitive = env.special[SensitiveEnvVar].(*SetVariable)

	return env, nil
}

func (e *Environment) Get(name string) (string, bool) {
	v, ok := e.data[name]
	return v, ok
}

// Set assigns a variable. Bound list/set views of the variable are
// re-parsed from the new value.
func (e *Environment) Set(name, value string) {
	e.data[name] = value
	if special, ok := e.special[name]; ok {
		special.update(value)
	}
}

func (e *Environment) Unset(name string) {
	delete(e.data, name)
	if special, ok := e.special[name]; ok {
		special.update("")
	}
}

func (e *Environment) Len() int {
	return len(e.data)
}

// SetValue implements VariableStore; non-string values are stringified
// since the environment only carries strings.
func (e *Environment) SetValue(name string, value interface{}) {
	if value == nil {
		e.Unset(name)
		return
	}
	if s, ok := value.(string); ok {
		e.Set(name, s)
		return
	}
	e.Set(name, fmt.Sprintf("%v", value))
}

func (e *Environment) UpdateValues(values map[string]interface{}) {
	for k, v := range values {
		e.SetValue(k, v)
	}
}

// DeclareSensitive adds a variable name to the sensitive set. The variable
// need not be present.
func (e *Environment) DeclareSensitive(name string) {
	e.sensitive.Add(name)
}

func (e *Environment) IsSensitive(name string) bool {
	return e.sensitive.Contains(name)
}

func (e *Environment) declareSpecial(name, sep string, build func() boundVariable) error {
	if existing, ok := e.special[name]; ok {
		return errors.Errorf("variable %s already declared as %T", name, existing)
	}

	v := build()
	v.update(e.data[name])
	e.special[name] = v

	return nil
}

// DeclareList binds a variable as a list variable. This can be done even if
// the variable is not present.
func (e *Environment) DeclareList(name, sep string) error {
	return e.declareSpecial(name, sep, func() boundVariable {
		return &ListVariable{env: e, name: name, sep: sep}
	})
}

// DeclareSet binds a variable as a set variable. This can be done even if
// the variable is not present.
func (e *Environment) DeclareSet(name, sep string) error {
	return e.declareSpecial(name, sep, func() boundVariable {
		return &SetVariable{env: e, name: name, sep: sep}
	})
}

func (e *Environment) ListVar(name string) (*ListVariable, bool) {
	v, ok := e.special[name].(*ListVariable)
	return v, ok
}

func (e *Environment) SetVar(name string) (*SetVariable, bool) {
	v, ok := e.special[name].(*SetVariable)
	return v, ok
}

// Environ renders the environment as sorted KEY=value pairs, the shape
// os/exec wants.
func (e *Environment) Environ() []string {
	pairs := make([]string, 0, len(e.data))
	for k, v := range e.data {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	return pairs
}

// Masked renders the environment with sensitive values replaced, for safe
// logging.
func (e *Environment) Masked() map[string]string {
	out := make(map[string]string, len(e.data))
	for k, v := range e.data {
		if e.IsSensitive(k) {
			out[k] = fmt.Sprintf(masking, k)
		} else {
			out[k] = v
		}
	}

	return out
}

func (e *Environment) Cwd() string {
	return e.cwd
}

// Chdir changes the working directory commands run in. Relative paths are
// interpreted against the current working directory.
func (e *Environment) Chdir(path string) {
	e.cwd = canonicalizePath(e.cwd, path)
}

func (e *Environment) Copy() *Environment {
	data := make(map[string]string, len(e.data))
	for k, v := range e.data {
		data[k] = v
	}

	copied := &Environment{
		data:    data,
		special: map[string]boundVariable{},
		cwd:     e.cwd,
	}
	for name, special := range e.special {
		switch special := special.(type) {
		case *ListVariable:
			v := &ListVariable{env: copied, name: name, sep: special.sep}
			v.update(data[name])
			copied.special[name] = v
		case *SetVariable:
			v := &SetVariable{env: copied, name: name, sep: special.sep}
			v.update(data[name])
			copied.special[name] = v
		}
	}
	copied.sensitive = copied.special[SensitiveEnvVar].(*SetVariable)

	return copied
}

// Command builds an exec.Cmd for the given command line, carrying this
// environment's variables and working directory. A string command line is
// split with shell quoting honored; a string slice is taken verbatim.
func (e *Environment) Command(command interface{}) (*exec.Cmd, error) {
	var argv []string

	switch command := command.(type) {
	case string:
		parsed, err := shellwords.Parse(command)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to split command %q", command)
		}
		argv = parsed
	case []string:
		argv = command
	default:
		return nil, errors.Errorf("unexpected command type %T", command)
	}

	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	log.WithFields(log.Fields{"argv": argv, "cwd": e.cwd}).Debug("building command")

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = e.cwd
	cmd.Env = e.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

var _ VariableStore = (*Environment)(nil)
var _ VariableStore = (*SensitiveDict)(nil)
