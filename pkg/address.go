package tread

import "fmt"

// StepAddress identifies where a step came from: the source file, an
// optional key within the file (when the file is a mapping of step lists),
// and the zero-based index of the step in that list.
type StepAddress struct {
	Fname string
	Idx   int
	Key   string

	str string
}

func NewStepAddress(fname string, idx int, key string) *StepAddress {
	return &StepAddress{Fname: fname, Idx: idx, Key: key}
}

// String renders a human-readable label, e.g. "test.yaml step 3" or
// "test.yaml[deploy] step 3". The step number is 1-based.
func (a *StepAddress) String() string {
	if a.str == "" {
		if a.Key == "" {
			a.str = fmt.Sprintf("%s step %d", a.Fname, a.Idx+1)
		} else {
			a.str = fmt.Sprintf("%s[%s] step %d", a.Fname, a.Key, a.Idx+1)
		}
	}

	return a.str
}

// Dirname returns the directory containing the source file, for resolving
// relative paths mentioned by a step.
func (a *StepAddress) Dirname() string {
	return dirnameOf(a.Fname)
}
