package inference

import "fmt"

// ProcessingError reports which inference stage failed.
type ProcessingError struct {
	Stage string
	Cause error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
	}
	return e.Stage
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
