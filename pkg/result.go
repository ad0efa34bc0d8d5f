package tread

// Status is the outcome state of a step. The ordering matters: when results
// are aggregated, the worst (highest) status wins.
type Status int

const (
	StatusSkipped Status = iota
	StatusSuccess
	StatusFailure
	StatusError
)

var statusNames = []string{"SKIPPED", "SUCCESS", "FAILURE", "ERROR"}

func (s Status) String() string {
	if s < StatusSkipped || s > StatusError {
		return "UNKNOWN"
	}

	return statusNames[s]
}

// StepResult is the uniform outcome of one step invocation.
//
// The ignore flag is tri-state: unset, false, or true. Only the first
// explicit write takes effect, so the first modifier (or extension) to touch
// it wins; later writers become no-ops but may still read the stored value.
type StepResult struct {
	Status Status
	Msg    string

	// ReturnCode is the exit code of an external process, when the result
	// came from one.
	ReturnCode *int

	// Err is the captured action error, when the result came from one.
	Err error

	// Results holds child results when this result aggregates others.
	Results []*StepResult

	ignore *bool
}

// NewResult returns a result with an explicitly chosen status.
func NewResult(status Status) *StepResult {
	return &StepResult{Status: status}
}

// ResultFromReturnCode infers the status from a process exit code: zero is
// SUCCESS, anything else FAILURE.
func ResultFromReturnCode(code int) *StepResult {
	status := StatusSuccess
	if code != 0 {
		status = StatusFailure
	}

	return &StepResult{Status: status, ReturnCode: &code}
}

// ResultFromError wraps a captured action error into an ERROR result.
func ResultFromError(err error) *StepResult {
	return &StepResult{Status: StatusError, Err: err, Msg: err.Error()}
}

// CombineResults aggregates child results: the status is the worst child
// status, and the ignore flag is set if any child has it set.
func CombineResults(results []*StepResult) *StepResult {
	combined := &StepResult{Status: StatusSkipped, Results: results}

	ignore := false
	for _, r := range results {
		if r.Status > combined.Status {
			combined.Status = r.Status
		}
		if r.Ignored() {
			ignore = true
		}
	}
	combined.ignore = &ignore

	return combined
}

// WithMessage attaches a detail message and returns the result for chaining.
func (r *StepResult) WithMessage(msg string) *StepResult {
	r.Msg = msg
	return r
}

// OK reports whether the result counts as non-failing: either the ignore
// flag is set, or the status is SKIPPED or SUCCESS. A skipped step never
// halts the run.
func (r *StepResult) OK() bool {
	if r.ignore != nil && *r.ignore {
		return true
	}

	return r.Status == StatusSkipped || r.Status == StatusSuccess
}

// Ignored returns the ignore flag, or false when it has not been set.
func (r *StepResult) Ignored() bool {
	return r.ignore != nil && *r.ignore
}

// SetIgnore stores the ignore flag if it has not been set yet. Once set,
// whether to true or false, further calls have no effect.
func (r *StepResult) SetIgnore(value bool) {
	if r.ignore == nil {
		r.ignore = &value
	}
}
