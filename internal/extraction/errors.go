package extraction

import "fmt"

// ExtractionError represents a fatal failure extracting one section
type ExtractionError struct {
	Section string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed for section %q: %v", e.Section, e.Cause)
	}
	return fmt.Sprintf("extraction failed for section %q", e.Section)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// AssemblyError represents an invalid set of sections passed to AssembleDocument
type AssemblyError struct {
	Section string
	Message string
}

func (e *AssemblyError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("cannot assemble document: section %q: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("cannot assemble document: %s", e.Message)
}
