package cli

import (
	stderrors "errors"
	"fmt"
)

// Exit codes for the relver CLI.
// These codes support CI integration: a workflow can distinguish bad
// invocations from missing repository state or a timed-out push.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime or check failure
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates required files or repository state are missing
	ExitMissingPrerequisites = 4

	// ExitTimeout indicates a network operation timed out
	ExitTimeout = 5
)

// ExitError carries an exit code through cobra's error return path.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and no message.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// NewExitErrorWrap attaches an exit code to an underlying error.
func NewExitErrorWrap(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// AsExitError returns the ExitError in err's chain, or nil.
func AsExitError(err error) *ExitError {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr
	}
	return nil
}

// ExitCode maps an error from Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if exitErr := AsExitError(err); exitErr != nil {
		return exitErr.Code
	}
	return ExitFailure
}
