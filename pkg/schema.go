package tread

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/xeipuuv/gojsonschema"
)

// validateSchema checks config against a JSON schema expressed as a Go map.
// All validation failures are collected and reported together in a single
// ConfigError. A nil schema accepts anything.
func validateSchema(name string, config interface{}, schema map[string]interface{}, addr *StepAddress) error {
	if schema == nil {
		return nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return configError(addr, "bad schema for %q: %v", name, err)
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return configError(addr, "failed to validate %q: %v", name, err)
	}

	if result.Valid() {
		return nil
	}

	var merr *multierror.Error
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			field = name
		} else {
			field = fmt.Sprintf("%s/%s", name, field)
		}
		merr = multierror.Append(merr, fmt.Errorf("%s: %s", field, desc.Description()))
	}

	return configError(addr, "failed to validate %q: %v", name, merr)
}
