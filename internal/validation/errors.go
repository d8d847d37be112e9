// Package validation checks pagination results and exported PDFs.
package validation

import "fmt"

// PDFError reports a PDF that could not be read or counted. Path is empty for in-memory documents.
type PDFError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PDFError) Error() string {
	subject := "pdf"
	if e.Path != "" {
		subject = "pdf " + e.Path
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", subject, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", subject, e.Message)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}
