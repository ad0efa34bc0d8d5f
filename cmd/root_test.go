package cmd

import (
	"reflect"
	"testing"
)

func TestParseVar(t *testing.T) {
	testcases := []struct {
		arg      string
		key      string
		value    interface{}
		fails    bool
	}{
		{arg: "name=deploy", key: "name", value: "deploy"},
		{arg: "str:name=deploy", key: "name", value: "deploy"},
		{arg: "string:empty=", key: "empty", value: ""},
		{arg: "int:count=3", key: "count", value: 3},
		{arg: "integer:count=-2", key: "count", value: -2},
		{arg: "bool:flag=true", key: "flag", value: true},
		{arg: "bool:flag=True", key: "flag", value: true},
		{arg: "boolean:flag=no", key: "flag", value: false},
		{arg: "eq=a=b", key: "eq", value: "a=b"},
		{arg: "plain=with:colon", key: "plain", value: "with:colon"},
		{arg: "novalue", fails: true},
		{arg: "=orphan", fails: true},
		{arg: "int:count=three", fails: true},
		{arg: "list:x=1", fails: true},
	}

	for _, tc := range testcases {
		key, value, err := parseVar(tc.arg)
		if tc.fails {
			if err == nil {
				t.Errorf("parseVar(%q) must fail", tc.arg)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVar(%q): %v", tc.arg, err)
			continue
		}
		if key != tc.key || !reflect.DeepEqual(value, tc.value) {
			t.Errorf("parseVar(%q) = %q, %#v; want %q, %#v", tc.arg, key, value, tc.key, tc.value)
		}
	}
}

func TestParseEnv(t *testing.T) {
	key, value, err := parseEnv("DEPLOY_ENV=staging")
	if err != nil || key != "DEPLOY_ENV" || value != "staging" {
		t.Errorf("parseEnv = %q, %q, %v", key, value, err)
	}

	if _, _, err := parseEnv("NOEQUALS"); err == nil {
		t.Error("parseEnv must require an '='")
	}
	if _, _, err := parseEnv("=value"); err == nil {
		t.Error("parseEnv must require a key")
	}
}
