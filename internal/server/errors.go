// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// ErrResumeNotFound indicates the resume does not exist
type ErrResumeNotFound struct {
	ID string
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound      *ErrResumeNotFound
		validation    *ErrValidation
		editorInvalid *editor.ValidationError
		schemaInvalid *schemas.ValidationError
		unknownTmpl   *layout.UnknownTemplateError
		exportFailed  *export.ExportError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound), errors.Is(err, editor.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &editorInvalid),
		errors.As(err, &schemaInvalid), errors.As(err, &unknownTmpl):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrSessionClosed):
		return http.StatusConflict
	case errors.As(err, &exportFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
