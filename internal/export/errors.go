package export

import "fmt"

// ExportError represents a failed export. Exports are never retried automatically.
type ExportError struct {
	Strategy string
	Message  string
	Cause    error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s export failed: %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s export failed: %s", e.Strategy, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
