// Package schemas embeds the JSON Schemas for documents accepted over the API and the CLI.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	ResumeDocument    = "resume_document.schema.json"
	LayoutPreferences = "layout_preferences.schema.json"
	PaginationState   = "pagination_state.schema.json"
	ExportRequest     = "export_request.schema.json"
)
