package literature

import "fmt"

// UnavailableError represents a literature search service failure
// (network error, non-success status, unparsable response). The
// orchestrator treats it as transient and retries.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("literature search unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("literature search unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
