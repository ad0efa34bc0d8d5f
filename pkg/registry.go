package tread

import "fmt"

// Restriction is a bitmask limiting which action categories a modifier may
// wrap.
type Restriction int

const (
	// RestrictNormal marks a modifier compatible only with normal actions.
	RestrictNormal Restriction = 1 << iota

	// RestrictStep marks a modifier compatible only with step actions,
	// actions that expand into further steps at parse time.
	RestrictStep
)

// Unrestricted marks a modifier compatible with both categories.
const Unrestricted = RestrictNormal | RestrictStep

// ActionFactory builds an action from its (already schema-validated)
// configuration.
type ActionFactory func(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error)

// ModifierFactory builds a modifier from its (already schema-validated)
// configuration.
type ModifierFactory func(ctxt *Context, name string, config interface{}, addr *StepAddress) (Modifier, error)

// ActionDef declares an action plugin: its configuration schema, whether
// invoking it yields further steps rather than a result, and its factory.
type ActionDef struct {
	Name       string
	Schema     map[string]interface{}
	StepAction bool
	New        ActionFactory
}

// ModifierDef declares a modifier plugin: its configuration schema, its
// priority (lower runs its pre-call phase earlier and its post-call phase
// later, so lower-priority modifiers nest outermost), its restriction mask,
// and its factory.
type ModifierDef struct {
	Name        string
	Schema      map[string]interface{}
	Priority    int
	Restriction Restriction
	New         ModifierFactory
}

// Registry maps action and modifier names to their declared contracts. The
// step resolver only ever performs lookups and membership tests; how the
// registry gets populated is up to the caller.
type Registry struct {
	actions   map[string]*ActionDef
	modifiers map[string]*ModifierDef
}

func NewRegistry() *Registry {
	return &Registry{
		actions:   map[string]*ActionDef{},
		modifiers: map[string]*ModifierDef{},
	}
}

func (r *Registry) RegisterAction(def *ActionDef) error {
	if def.Name == "" || def.New == nil {
		return fmt.Errorf("action definition must have a name and a factory")
	}
	if _, ok := r.actions[def.Name]; ok {
		return fmt.Errorf("action %q is already registered", def.Name)
	}
	if _, ok := r.modifiers[def.Name]; ok {
		return fmt.Errorf("name %q is already registered as a modifier", def.Name)
	}

	r.actions[def.Name] = def
	return nil
}

func (r *Registry) RegisterModifier(def *ModifierDef) error {
	if def.Name == "" || def.New == nil {
		return fmt.Errorf("modifier definition must have a name and a factory")
	}
	if def.Restriction == 0 {
		return fmt.Errorf("modifier %q must declare a restriction mask", def.Name)
	}
	if _, ok := r.modifiers[def.Name]; ok {
		return fmt.Errorf("modifier %q is already registered", def.Name)
	}
	if _, ok := r.actions[def.Name]; ok {
		return fmt.Errorf("name %q is already registered as an action", def.Name)
	}

	r.modifiers[def.Name] = def
	return nil
}

func (r *Registry) Action(name string) (*ActionDef, bool) {
	def, ok := r.actions[name]
	return def, ok
}

func (r *Registry) Modifier(name string) (*ModifierDef, bool) {
	def, ok := r.modifiers[name]
	return def, ok
}

func (r *Registry) HasAction(name string) bool {
	_, ok := r.actions[name]
	return ok
}

func (r *Registry) HasModifier(name string) bool {
	_, ok := r.modifiers[name]
	return ok
}

// DefaultRegistry is the registry used by contexts unless another one is
// provided.
var DefaultRegistry = NewRegistry()

// MustRegisterAction registers an action into the default registry and
// panics on conflict. Intended for process-start registration.
func MustRegisterAction(def *ActionDef) {
	if err := DefaultRegistry.RegisterAction(def); err != nil {
		panic(err)
	}
}

// MustRegisterModifier registers a modifier into the default registry and
// panics on conflict. Intended for process-start registration.
func MustRegisterModifier(def *ModifierDef) {
	if err := DefaultRegistry.RegisterModifier(def); err != nil {
		panic(err)
	}
}
