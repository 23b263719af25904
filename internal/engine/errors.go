package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlcheck/internal/diag"
)

// RunErrorCode categorizes run failures.
type RunErrorCode string

const (
	// ErrCodeCancelled indicates the context was cancelled mid-run.
	ErrCodeCancelled RunErrorCode = "CANCELLED"

	// ErrCodeRecordFailed indicates the run could not be written to the store.
	ErrCodeRecordFailed RunErrorCode = "RECORD_FAILED"

	// ErrCodeHashFailed indicates the spec fingerprint could not be computed.
	ErrCodeHashFailed RunErrorCode = "HASH_FAILED"
)

// RunError is a failure of the run itself, as opposed to a finding about
// an expression. Expression findings are diagnostics in the report.
type RunError struct {
	Code    RunErrorCode
	Message string
	RunID   string
	Err     error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RunID != "" {
		msg += fmt.Sprintf(" (run=%s)", e.RunID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.Err
}

// DiagnosticCode returns the code run failures are reported under (E020).
func (e *RunError) DiagnosticCode() string {
	return diag.CodeRuntime
}

// IsCancelled returns true if the error is a cancellation RunError.
// Uses errors.As to handle wrapped errors.
func IsCancelled(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCancelled
	}
	return false
}
