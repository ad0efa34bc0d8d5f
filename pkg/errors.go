package tread

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports a structural problem in step configuration: an
// unresolvable action or modifier name, a schema violation, a malformed
// source document, and so on. It is raised at parse time and aborts the run
// before any step executes.
type ConfigError struct {
	Msg  string
	Addr *StepAddress
}

func configError(addr *StepAddress, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Msg:  fmt.Sprintf(format, args...),
		Addr: addr,
	}
}

func (e *ConfigError) Error() string {
	if e.Addr != nil {
		return fmt.Sprintf("%s (%s)", e.Msg, e.Addr)
	}

	return e.Msg
}

// IsConfigError reports whether err is a ConfigError, possibly wrapped.
func IsConfigError(err error) bool {
	_, ok := errors.Cause(err).(*ConfigError)
	return ok
}
