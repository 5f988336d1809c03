package verification

import (
	"fmt"

	"github.com/jonathan/doc-podcast/internal/types"
)

// StageError represents a fatal failure in one of the verification stages
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verification failed in %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("verification failed in %s", e.Stage)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// ReconciliationMismatch records a verification batch whose response could not be
// mapped one-to-one onto the submitted claims. It is never fatal: the unresolved
// claims are labelled NOT_FOUND and the report is marked degraded.
type ReconciliationMismatch struct {
	Batch      int
	Submitted  int
	Returned   int
	Unresolved []int // stable claim indexes
	Reason     string
	Cause      error
}

func (e *ReconciliationMismatch) Error() string {
	msg := fmt.Sprintf("batch %d reconciliation mismatch: submitted %d, returned %d, unresolved %d",
		e.Batch, e.Submitted, e.Returned, len(e.Unresolved))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ReconciliationMismatch) Unwrap() error {
	return e.Cause
}

// DegradedBatch converts the mismatch into its report form
func (e *ReconciliationMismatch) DegradedBatch() types.DegradedBatch {
	unresolved := make([]int, len(e.Unresolved))
	copy(unresolved, e.Unresolved)
	reason := e.Reason
	if e.Cause != nil {
		if reason != "" {
			reason += ": "
		}
		reason += e.Cause.Error()
	}
	return types.DegradedBatch{
		Batch:            e.Batch,
		Submitted:        e.Submitted,
		Returned:         e.Returned,
		UnresolvedClaims: unresolved,
		Reason:           reason,
	}
}
