package services

import "fmt"

// ValidationError reports a missing or malformed input field. It is never
// retried automatically; the caller corrects the input and re-invokes.
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

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TemporalError reports a structurally invalid interval, such as an end date
// before a start date. The operation aborts with the aggregate unmodified.
type TemporalError struct {
	Message string
}

func (e *TemporalError) Error() string {
	return e.Message
}

func newTemporalError(format string, args ...interface{}) *TemporalError {
	return &TemporalError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// PersistenceError wraps a storage failure surfaced by the database layer.
// The engine performs no retries; retry policy belongs to the caller.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
