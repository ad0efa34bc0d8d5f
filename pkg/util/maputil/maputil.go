package maputil

import (
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// CastKeysToStrings converts a YAML-decoded map with interface{} keys into a
// string-keyed map. Non-string keys are an error.
func CastKeysToStrings(m map[interface{}]interface{}) (map[string]interface{}, error) {
	result := map[string]interface{}{}

	for k, v := range m {
		str, ok := k.(string)
		if !ok {
			return nil, errors.Errorf("unexpected non-string key %v(%T)", k, k)
		}
		result[str] = v
	}

	return result, nil
}

// Normalize deep-converts a YAML-decoded value so that every mapping in it
// is string-keyed. Slices and nested maps are walked recursively; scalars
// pass through unchanged.
func Normalize(v interface{}) (interface{}, error) {
	switch typed := v.(type) {
	case yaml.MapSlice:
		// yaml.v2 propagates the MapSlice type into nested mappings when
		// the document was decoded into a MapSlice.
		cast := map[string]interface{}{}
		for _, item := range typed {
			str, ok := item.Key.(string)
			if !ok {
				return nil, errors.Errorf("unexpected non-string key %v(%T)", item.Key, item.Key)
			}
			cast[str] = item.Value
		}
		return normalizeMap(cast)
	case map[interface{}]interface{}:
		cast, err := CastKeysToStrings(typed)
		if err != nil {
			return nil, err
		}
		return normalizeMap(cast)
	case map[string]interface{}:
		return normalizeMap(typed)
	case []interface{}:
		result := make([]interface{}, len(typed))
		for i, item := range typed {
			normalized, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			result[i] = normalized
		}
		return result, nil
	default:
		return v, nil
	}
}

func normalizeMap(m map[string]interface{}) (map[string]interface{}, error) {
	result := map[string]interface{}{}

	for k, v := range m {
		normalized, err := Normalize(v)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		result[k] = normalized
	}

	return result, nil
}
