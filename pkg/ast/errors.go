package ast

import (
	"errors"
	"fmt"
)

var (
	ErrVariableNotFound  = errors.New("variable not found")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrInvalidOperator   = errors.New("invalid operator")
)

// EvalError is returned when a statement cannot be evaluated against a set of
// bindings. It wraps one of the sentinel errors above.
type EvalError struct {
	Kind    error
	Message string
}

func (e *EvalError) Error() string { return e.Message }
func (e *EvalError) Unwrap() error { return e.Kind }

func evalErrorf(kind error, format string, args ...any) error {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func variableNotFound(name string) error {
	return evalErrorf(ErrVariableNotFound, "Variable not found: %s", name)
}
