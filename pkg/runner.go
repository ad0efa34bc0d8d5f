package tread

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/colorstring"
)

var statusColors = map[Status]string{
	StatusSkipped: "[yellow]",
	StatusSuccess: "[green]",
	StatusFailure: "[red]",
	StatusError:   "[bold][red]",
}

// Runner executes a parsed step list in order, reporting each step's outcome
// and stopping at the first failure that is not marked ignored.
type Runner struct {
	Extensions *ExtensionSet
	Writer     io.Writer
	Colorize   *colorstring.Colorize
}

func NewRunner(exts *ExtensionSet, colored bool) *Runner {
	if exts == nil {
		exts = NewExtensionSet()
	}

	return &Runner{
		Extensions: exts,
		Writer:     os.Stdout,
		Colorize: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !colored,
			Reset:   true,
		},
	}
}

// Run walks the steps. The returned error is non-nil when a step fails or
// errors without being ignored, or when a modifier or extension errors out.
func (r *Runner) Run(ctxt *Context, steps []*Step) error {
	if err := r.Extensions.ReadSteps(ctxt, steps); err != nil {
		return err
	}

	outcome := r.run(ctxt, steps)

	return r.Extensions.Finalize(ctxt, outcome)
}

func (r *Runner) run(ctxt *Context, steps []*Step) error {
	verbose := ctxt.Verbose >= LevelInfo

	for idx, step := range steps {
		if verbose {
			fmt.Fprintf(r.Writer, "[Step %d]: %s . . . ", idx+1, step.Name)
		}

		skip, err := r.Extensions.PreStep(ctxt, step, idx)
		if err != nil {
			return err
		}
		if skip {
			r.report(NewResult(StatusSkipped), verbose)
			continue
		}

		result, err := step.Call(ctxt)
		if err != nil {
			return err
		}

		if err := r.Extensions.PostStep(ctxt, step, idx, result); err != nil {
			return err
		}

		r.report(result, verbose)

		if !result.OK() {
			if result.Msg != "" {
				return fmt.Errorf("Test step failure: %s", result.Msg)
			}
			return errors.New("Test step failure")
		}
	}

	return nil
}

func (r *Runner) report(result *StepResult, verbose bool) {
	if !verbose {
		return
	}

	status := r.Colorize.Color(statusColors[result.Status] + result.Status.String())
	if result.Ignored() {
		status += " (ignored)"
	}
	fmt.Fprintln(r.Writer, status)
}
