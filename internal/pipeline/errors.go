package pipeline

import "fmt"

// ValidationError rejects a question before any remote call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// GenerationError wraps a failure to obtain acceptable SQL from the model.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate sql: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ExecutionError wraps a backend failure and keeps the SQL that caused it.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute sql: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
