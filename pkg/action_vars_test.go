package tread

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func callSingleStep(t *testing.T, ctxt *Context, document string) *StepResult {
	t.Helper()

	steps, err := ParseString(ctxt, "test.yaml", document)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(steps))
	}

	result, err := steps[0].Call(ctxt)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	return result
}

func TestVariableAction(t *testing.T) {
	ctxt := testContext(t)
	ctxt.Variables.SetValue("stale", "old")
	ctxt.Variables.SetValue("base", "prod")

	result := callSingleStep(t, ctxt, `
- var:
    set:
      target: "{{.base}}-eu"
      replicas: 3
    unset: [stale]
    sensitive: [token]
`)

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want %v", result.Status, StatusSuccess)
	}

	if v, _ := ctxt.Variables.Get("target"); v != "prod-eu" {
		t.Errorf("target = %v, want templated value", v)
	}
	if v, _ := ctxt.Variables.Get("replicas"); v != 3 {
		t.Errorf("replicas = %v, want 3", v)
	}
	if _, ok := ctxt.Variables.Get("stale"); ok {
		t.Error("stale must be unset")
	}
	if !ctxt.Variables.IsSensitive("token") {
		t.Error("token must be declared sensitive")
	}
}

func TestVariableActionSetWinsOverUnset(t *testing.T) {
	ctxt := testContext(t)
	ctxt.Variables.SetValue("both", "old")

	callSingleStep(t, ctxt, `
- var:
    set:
      both: new
    unset: [both]
`)

	if v, ok := ctxt.Variables.Get("both"); !ok || v != "new" {
		t.Errorf("both = %v, %v; set must win over unset", v, ok)
	}
}

func TestVariableActionFiles(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "vars.yaml")
	if err := ioutil.WriteFile(good, []byte("region: eu-west-1\nsize: 4\n"), 0644); err != nil {
		t.Fatalf("Error: %v", err)
	}

	ctxt := testContext(t)

	steps, err := ParseFile(ctxt, writeStepFile(t, dir, `
- var:
    files: [vars.yaml, missing.yaml]
    set:
      size: 8
`), "", nil)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if _, err := steps[0].Call(ctxt); err != nil {
		t.Fatalf("Error: %v", err)
	}

	if v, _ := ctxt.Variables.Get("region"); v != "eu-west-1" {
		t.Errorf("region = %v, want the file's value", v)
	}
	// Explicit settings override file contents.
	if v, _ := ctxt.Variables.Get("size"); v != 8 {
		t.Errorf("size = %v, want 8", v)
	}
}

func TestEnvironmentAction(t *testing.T) {
	ctxt := testContext(t)
	ctxt.Environment.Set("OLD", "x")

	result := callSingleStep(t, ctxt, `
- env:
    set:
      DEPLOY_ENV: staging
    unset: [OLD]
    sensitive: [API_KEY]
`)

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want %v", result.Status, StatusSuccess)
	}

	if v, _ := ctxt.Environment.Get("DEPLOY_ENV"); v != "staging" {
		t.Errorf("DEPLOY_ENV = %q, want %q", v, "staging")
	}
	if _, ok := ctxt.Environment.Get("OLD"); ok {
		t.Error("OLD must be unset")
	}
	if !ctxt.Environment.IsSensitive("API_KEY") {
		t.Error("API_KEY must be declared sensitive")
	}
}

func TestEnvironmentActionRejectsNonStrings(t *testing.T) {
	ctxt := testContext(t)

	_, err := ParseString(ctxt, "test.yaml", `
- env:
    set:
      COUNT: 3
`)
	if err == nil {
		t.Error("env values must be strings")
	}
}

func TestChdirAction(t *testing.T) {
	ctxt := testContext(t)
	ctxt.Environment.Chdir("/tmp")
	ctxt.Variables.SetValue("sub", "work")

	result := callSingleStep(t, ctxt, `
- chdir: "{{.sub}}/dir"
`)

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want %v", result.Status, StatusSuccess)
	}
	if ctxt.Environment.Cwd() != "/tmp/work/dir" {
		t.Errorf("Cwd() = %q, want %q", ctxt.Environment.Cwd(), "/tmp/work/dir")
	}
}

func writeStepFile(t *testing.T, dir, document string) string {
	t.Helper()

	fname := filepath.Join(dir, "steps.yaml")
	if err := ioutil.WriteFile(fname, []byte(document), 0644); err != nil {
		t.Fatalf("Error: %v", err)
	}

	return fname
}
