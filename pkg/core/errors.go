package core

import (
	"github.com/pkg/errors"
)

// ContractViolation is raised (as a panic) when the evaluator is handed
// something the checker should have ruled out. It indicates a bug, not a
// user error.
type ContractViolation struct {
	err error
}

func (v *ContractViolation) Error() string {
	return "internal error: " + v.err.Error()
}

func (v *ContractViolation) Unwrap() error {
	return v.err
}

// Cause returns the underlying error, which carries a stack trace.
func (v *ContractViolation) Cause() error {
	return v.err
}

func contractViolation(format string, args ...any) *ContractViolation {
	return &ContractViolation{err: errors.Errorf(format, args...)}
}
