package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// loadDocument reads a resume document from path, or builds the sample resume when path is empty.
func loadDocument(path string, sampleJobs int) (*types.ResumeDocument, error) {
	if path == "" {
		return types.SampleResume(sampleJobs), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if err := schemas.ValidateResumeDocument(data); err != nil {
		return nil, fmt.Errorf("invalid resume document %s: %w", path, err)
	}

	var doc types.ResumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse resume document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resume document %s: %w", path, err)
	}
	for _, id := range doc.ActiveSections {
		if !doc.IsKnownSection(id) {
			return nil, fmt.Errorf("invalid resume document %s: unknown section %q", path, id)
		}
	}
	return &doc, nil
}

// preferencesFor returns the default preferences with template applied, falling back to the config default.
func preferencesFor(template, fallback string) types.LayoutPreferences {
	if template == "" {
		template = fallback
	}
	return types.DefaultLayoutPreferences(template)
}

// writeOutput writes data to path.
func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
