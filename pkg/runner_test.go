package tread

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func runSteps(t *testing.T, document string) (string, error) {
	t.Helper()

	ctxt := testContext(t)

	steps, err := ParseString(ctxt, "test.yaml", document)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	var buf bytes.Buffer
	runner := NewRunner(nil, false)
	runner.Writer = &buf

	runErr := runner.Run(ctxt, steps)
	return buf.String(), runErr
}

func TestRunnerSuccess(t *testing.T) {
	output, err := runSteps(t, `
- name: first
  run: "true"
- name: second
  run: "true"
`)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := "[Step 1]: first . . . SUCCESS\n[Step 2]: second . . . SUCCESS\n"
	if output != expected {
		t.Errorf("output = %q, want %q", output, expected)
	}
}

func TestRunnerStopsOnFailure(t *testing.T) {
	output, err := runSteps(t, `
- name: broken
  run: "false"
- name: never
  run: "true"
`)
	if err == nil {
		t.Fatal("expected a failure")
	}
	if err.Error() != "Test step failure" {
		t.Errorf("error = %q, want %q", err.Error(), "Test step failure")
	}
	// The outcome is a plain message for the user, not a wrapped internal
	// error carrying a stack trace.
	if detailed := fmt.Sprintf("%+v", err); detailed != "Test step failure" {
		t.Errorf("detailed error = %q, want the bare message", detailed)
	}

	if strings.Contains(output, "never") {
		t.Errorf("steps after the failure must not run: %q", output)
	}
	if !strings.Contains(output, "[Step 1]: broken . . . FAILURE\n") {
		t.Errorf("output = %q, missing the failure line", output)
	}
}

func TestRunnerIgnoredFailure(t *testing.T) {
	output, err := runSteps(t, `
- name: flaky
  run: "false"
  ignore-errors: true
- name: after
  run: "true"
`)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := "[Step 1]: flaky . . . FAILURE (ignored)\n[Step 2]: after . . . SUCCESS\n"
	if output != expected {
		t.Errorf("output = %q, want %q", output, expected)
	}
}

func TestRunnerConditionalSkip(t *testing.T) {
	output, err := runSteps(t, `
- name: skipped
  run: "false"
  when: "no"
- name: after
  run: "true"
`)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := "[Step 1]: skipped . . . SKIPPED\n[Step 2]: after . . . SUCCESS\n"
	if output != expected {
		t.Errorf("output = %q, want %q", output, expected)
	}
}

func TestRunnerQuiet(t *testing.T) {
	ctxt := testContext(t)
	ctxt.Verbose = LevelQuiet

	steps, err := ParseString(ctxt, "test.yaml", `
- run: "false"
`)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	var buf bytes.Buffer
	runner := NewRunner(nil, false)
	runner.Writer = &buf

	if err := runner.Run(ctxt, steps); err == nil {
		t.Fatal("failures must still stop a quiet run")
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want none when quiet", buf.String())
	}
}

func TestRunnerCommandNotRunnable(t *testing.T) {
	_, err := runSteps(t, `
- name: vanished
  run: /no/such/binary/anywhere
`)
	if err == nil {
		t.Fatal("expected a failure")
	}
	// A command that cannot even start is an ERROR, not an exit status.
	if !strings.HasPrefix(err.Error(), "Test step failure: ") {
		t.Errorf("error = %q, want a step failure with a message", err.Error())
	}
}

type skipExtension struct {
	BaseExtension

	skipName string
	post     []string
}

func (*skipExtension) Priority() int { return 10 }

func (e *skipExtension) PreStep(ctxt *Context, step *Step, idx int) (bool, error) {
	return step.Name == e.skipName, nil
}

func (e *skipExtension) PostStep(ctxt *Context, step *Step, idx int, result *StepResult) error {
	e.post = append(e.post, step.Name)
	return nil
}

func TestRunnerExtensionSkip(t *testing.T) {
	ctxt := testContext(t)

	steps, err := ParseString(ctxt, "test.yaml", `
- name: wanted
  run: "true"
- name: unwanted
  run: "false"
`)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	ext := &skipExtension{skipName: "unwanted"}
	var buf bytes.Buffer
	runner := NewRunner(NewExtensionSet(ext), false)
	runner.Writer = &buf

	if err := runner.Run(ctxt, steps); err != nil {
		t.Fatalf("Error: %v", err)
	}

	expected := "[Step 1]: wanted . . . SUCCESS\n[Step 2]: unwanted . . . SKIPPED\n"
	if output := buf.String(); output != expected {
		t.Errorf("output = %q, want %q", output, expected)
	}

	// A skipped step bypasses the post hook as well.
	if len(ext.post) != 1 || ext.post[0] != "wanted" {
		t.Errorf("post hooks = %v, want only the executed step", ext.post)
	}
}

func TestTimingExtensionReport(t *testing.T) {
	ctxt := testContext(t)

	var out bytes.Buffer
	ctxt.Stdout = &out

	steps, err := ParseString(ctxt, "test.yaml", `
- name: quick
  run: "true"
`)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	runner := NewRunner(NewExtensionSet(NewTimingExtension()), false)
	runner.Writer = &bytes.Buffer{}

	if err := runner.Run(ctxt, steps); err != nil {
		t.Fatalf("Error: %v", err)
	}

	report := out.String()
	if !strings.Contains(report, "Step timings:") || !strings.Contains(report, "[Step 1]: quick") {
		t.Errorf("timing report = %q, missing the per-step line", report)
	}
}
