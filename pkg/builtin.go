package tread

// RegisterBuiltins adds the built-in actions and modifiers to a registry.
// Callers that construct their own Registry must invoke this themselves;
// the tread command does it for DefaultRegistry at startup.
func RegisterBuiltins(r *Registry) error {
	actions := []*ActionDef{
		{Name: "run", Schema: runSchema, New: newRunAction},
		{Name: "chdir", Schema: chdirSchema, New: newDirectoryAction},
		{Name: "var", Schema: varSchema, New: newVariableAction},
		{Name: "env", Schema: envSchema, New: newEnvironmentAction},
		{Name: "include", Schema: includeSchema, StepAction: true, New: newIncludeAction},
	}
	for _, def := range actions {
		if err := r.RegisterAction(def); err != nil {
			return err
		}
	}

	modifiers := []*ModifierDef{
		{
			Name:        "when",
			Schema:      whenSchema,
			Priority:    conditionalPriority,
			Restriction: Unrestricted,
			New:         newConditionalModifier,
		},
		{
			Name:        "ignore-errors",
			Schema:      ignoreErrorsSchema,
			Priority:    ignoreErrorsPriority,
			Restriction: RestrictNormal,
			New:         newIgnoreErrorsModifier,
		},
	}
	for _, def := range modifiers {
		if err := r.RegisterModifier(def); err != nil {
			return err
		}
	}

	return nil
}
