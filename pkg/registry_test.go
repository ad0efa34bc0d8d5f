package tread

import (
	"testing"
)

func dummyActionDef(name string) *ActionDef {
	return &ActionDef{
		Name: name,
		New: func(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error) {
			return &noopAction{part{name: name}}, nil
		},
	}
}

func dummyModifierDef(name string) *ModifierDef {
	return &ModifierDef{
		Name:        name,
		Priority:    100,
		Restriction: Unrestricted,
		New: func(ctxt *Context, name string, config interface{}, addr *StepAddress) (Modifier, error) {
			return &BaseModifier{part{name: name}}, nil
		},
	}
}

func TestRegistryRegistration(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterAction(dummyActionDef("build")); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if err := r.RegisterModifier(dummyModifierDef("retry")); err != nil {
		t.Fatalf("Error: %v", err)
	}

	if !r.HasAction("build") || r.HasAction("retry") {
		t.Error("action lookup confused with modifiers")
	}
	if !r.HasModifier("retry") || r.HasModifier("build") {
		t.Error("modifier lookup confused with actions")
	}

	if def, ok := r.Action("build"); !ok || def.Name != "build" {
		t.Errorf("Action(build) = %v, %v", def, ok)
	}
	if def, ok := r.Modifier("retry"); !ok || def.Priority != 100 {
		t.Errorf("Modifier(retry) = %v, %v", def, ok)
	}
}

func TestRegistryConflicts(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterAction(dummyActionDef("build")); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if err := r.RegisterModifier(dummyModifierDef("retry")); err != nil {
		t.Fatalf("Error: %v", err)
	}

	if err := r.RegisterAction(dummyActionDef("build")); err == nil {
		t.Error("duplicate action registration must fail")
	}
	if err := r.RegisterModifier(dummyModifierDef("retry")); err == nil {
		t.Error("duplicate modifier registration must fail")
	}
	if err := r.RegisterAction(dummyActionDef("retry")); err == nil {
		t.Error("an action must not shadow a modifier")
	}
	if err := r.RegisterModifier(dummyModifierDef("build")); err == nil {
		t.Error("a modifier must not shadow an action")
	}

	if err := r.RegisterAction(&ActionDef{Name: "nofactory"}); err == nil {
		t.Error("a definition without a factory must fail")
	}
	norestriction := dummyModifierDef("bare")
	norestriction.Restriction = 0
	if err := r.RegisterModifier(norestriction); err == nil {
		t.Error("a modifier without a restriction mask must fail")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("Error: %v", err)
	}

	for _, name := range []string{"run", "chdir", "var", "env", "include"} {
		if !r.HasAction(name) {
			t.Errorf("builtin action %q missing", name)
		}
	}
	for _, name := range []string{"when", "ignore-errors"} {
		if !r.HasModifier(name) {
			t.Errorf("builtin modifier %q missing", name)
		}
	}

	include, _ := r.Action("include")
	if !include.StepAction {
		t.Error("include must be a step action")
	}

	when, _ := r.Modifier("when")
	ignore, _ := r.Modifier("ignore-errors")
	if when.Priority >= ignore.Priority {
		t.Error("when must sort before ignore-errors")
	}
	if when.Restriction != Unrestricted {
		t.Error("when must be unrestricted")
	}
	if ignore.Restriction != RestrictNormal {
		t.Error("ignore-errors must be restricted to normal actions")
	}

	if err := RegisterBuiltins(r); err == nil {
		t.Error("registering builtins twice must fail")
	}
}
