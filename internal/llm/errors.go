package llm

import "fmt"

// AdapterError represents a failure to obtain a response from the model (network, quota, timeout)
type AdapterError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call failed in %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("model call failed in %s: %s", e.Stage, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}

// SchemaValidationError represents a model response that does not conform to the stage's schema.
// Payload carries the raw response for diagnostics.
type SchemaValidationError struct {
	Stage   string
	Payload string
	Cause   error
}

func (e *SchemaValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema validation failed in %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("schema validation failed in %s", e.Stage)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Cause
}
