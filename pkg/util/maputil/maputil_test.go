package maputil

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	yaml "gopkg.in/yaml.v2"
)

func TestCastKeysToStrings(t *testing.T) {
	actual, err := CastKeysToStrings(map[interface{}]interface{}{
		"a": 1,
		"b": "two",
	})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := map[string]interface{}{"a": 1, "b": "two"}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("actual value %s doesn't match expected value %s", spew.Sdump(actual), spew.Sdump(expected))
	}

	if _, err := CastKeysToStrings(map[interface{}]interface{}{1: "x"}); err == nil {
		t.Error("non-string keys must be rejected")
	}
}

func TestNormalize(t *testing.T) {
	input := map[interface{}]interface{}{
		"top": map[interface{}]interface{}{
			"nested": []interface{}{
				map[interface{}]interface{}{"deep": true},
				"scalar",
			},
		},
		"plain": 7,
	}

	actual, err := Normalize(input)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := map[string]interface{}{
		"top": map[string]interface{}{
			"nested": []interface{}{
				map[string]interface{}{"deep": true},
				"scalar",
			},
		},
		"plain": 7,
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}

	if v, err := Normalize("scalar"); err != nil || v != "scalar" {
		t.Errorf("Normalize(scalar) = %v, %v", v, err)
	}

	if _, err := Normalize(map[interface{}]interface{}{"ok": map[interface{}]interface{}{2: "x"}}); err == nil {
		t.Error("nested non-string keys must be rejected")
	}
}

// Decoding a document into a yaml.MapSlice makes yaml.v2 decode every
// nested mapping as a MapSlice too. Normalize must turn those into
// string-keyed maps, not leave them as slices of MapItem.
func TestNormalizeMapSlice(t *testing.T) {
	input := yaml.MapSlice{
		{Key: "set", Value: yaml.MapSlice{
			{Key: "greeting", Value: "hi"},
			{Key: "count", Value: 2},
		}},
		{Key: "unset", Value: []interface{}{"old"}},
	}

	actual, err := Normalize(input)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := map[string]interface{}{
		"set": map[string]interface{}{
			"greeting": "hi",
			"count":    2,
		},
		"unset": []interface{}{"old"},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Normalize(yaml.MapSlice{{Key: 3, Value: "x"}}); err == nil {
		t.Error("non-string MapSlice keys must be rejected")
	}
}
