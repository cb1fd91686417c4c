// Package types defines the shared domain types for the nookops operator
// tooling: the error taxonomy for provider-call failures and the lifecycle
// states a rule moves through during a trigger-and-restore pass.
package types

import "fmt"

// ErrorCode is a typed string for categorizing provider-call failures.
type ErrorCode string

const (
	// ErrCodeLookup indicates a rule's current schedule could not be read
	// (missing rule or DescribeRule failure). Fatal to the whole run.
	ErrCodeLookup ErrorCode = "rule_lookup_failed"

	// ErrCodeUpdate indicates the provider rejected the forced one-shot
	// schedule for a rule. Fatal to the whole run.
	ErrCodeUpdate ErrorCode = "rule_update_failed"

	// ErrCodeRestore indicates the provider rejected restoring a rule's
	// original schedule. Reported per rule; the run keeps restoring the
	// remaining rules.
	ErrCodeRestore ErrorCode = "rule_restore_failed"

	// ErrCodeInvoke indicates a function invocation was rejected by the
	// provider or the function itself reported an error. Fatal to the
	// remaining invocations.
	ErrCodeInvoke ErrorCode = "function_invoke_failed"
)

// OpError is the standard error type for failed provider operations. It
// carries the rule or function identifier the operation targeted and wraps
// the underlying provider error for errors.Is/errors.As support.
type OpError struct {
	Code     ErrorCode
	Resource string
	Err      error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Resource)
}

// Unwrap returns the underlying provider error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError with the given code, resource identifier,
// and underlying error. This is the standard constructor for operation errors.
func NewOpError(code ErrorCode, resource string, err error) *OpError {
	return &OpError{
		Code:     code,
		Resource: resource,
		Err:      err,
	}
}
