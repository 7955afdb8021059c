package contract

import "fmt"

// ReadError wraps any read-side fetch failure. Callers absorb it: they
// degrade to empty data and log, they never crash the current view.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("contract read %s: %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// SubmissionError reports a wallet signature rejection or broadcast
// failure. The transaction never obtained a handle.
type SubmissionError struct {
	Operation Operation
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s: %v", e.Operation, e.Err)
}
func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfirmationError reports a chain-side failure or rejection after a
// successful broadcast.
type ConfirmationError struct {
	Handle TxHandle
	Err    error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("confirm %s: %v", e.Handle, e.Err)
}
func (e *ConfirmationError) Unwrap() error { return e.Err }
