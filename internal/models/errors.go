package models

import "fmt"

// ValidationError is a local, pre-write failure. No store call has been
// made when one is returned; the operation can be corrected and retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransportError wraps a failed call to the tabular store. The message is
// the store's own error text when the store returned one.
type TransportError struct {
	Op      string
	Range   string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store %s %s: %s", e.Op, e.Range, e.Message)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Range, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError is a TransportError subtype: the store signalled quota
// exhaustion. Callers should treat it as a retry-shortly advisory rather
// than a hard failure.
type RateLimitError struct {
	TransportError
}

// ConsistencyError reports a multi-row order transaction that partially
// completed. Rows already written are not rolled back; the store is left
// in a state that must be reconciled by hand. Token identifies the
// transaction for reconciliation.
type ConsistencyError struct {
	OrderID        string
	Token          string
	CompletedSteps int
	TotalSteps     int
	Err            error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("order %s partially written: %d of %d rows committed (txn %s), manual reconciliation required: %v",
		e.OrderID, e.CompletedSteps, e.TotalSteps, e.Token, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
