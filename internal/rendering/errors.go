// Package rendering renders resume documents into measurable HTML views and fixed-size pages.
package rendering

import (
	"errors"
	"fmt"
)

// errNilDocument is wrapped by every RenderError for a missing document.
var errNilDocument = errors.New("resume document is nil")

// TemplateError reports a failure parsing the embedded templates or executing one block.
type TemplateError struct {
	// Block is the template block that failed: "view", "page" or "document". Empty for parse failures.
	Block string
	// Page is set when a single page failed to execute.
	Page  int
	Cause error
}

func (e *TemplateError) Error() string {
	switch {
	case e.Block == "":
		return fmt.Sprintf("template error: parse: %v", e.Cause)
	case e.Page > 0:
		return fmt.Sprintf("template error: %s (page %d): %v", e.Block, e.Page, e.Cause)
	default:
		return fmt.Sprintf("template error: %s: %v", e.Block, e.Cause)
	}
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError reports invalid input to a render operation.
type RenderError struct {
	// Op is the renderer method: "view", "pages" or "document".
	Op    string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
