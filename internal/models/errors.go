package models

import "fmt"

// ValidationError reports a value outside its allowed range
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// NotFoundError reports an unknown item, city or category
type NotFoundError struct {
	Kind  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Query)
}

// DataError reports malformed or missing reference data
type DataError struct {
	Source string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("reference data %s: %v", e.Source, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// ExternalServiceError reports a failure of the language model boundary
type ExternalServiceError struct {
	Capability string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Capability, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write of a confirmed order
type PersistenceError struct {
	Sink string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order to %s: %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
