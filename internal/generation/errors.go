package generation

import "fmt"

// GenerationError represents a fatal failure planning or writing the episode
type GenerationError struct {
	Stage string
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed in %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("generation failed in %s", e.Stage)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
