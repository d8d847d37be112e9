package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// ExportRequest is the request body for POST /resumes/{id}/export
type ExportRequest struct {
	Strategy string `json:"strategy,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// handleExport settles the resume's pagination and returns it as a PDF
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	var req ExportRequest
	if len(body) > 0 {
		if err := decodeJSON(body, schemas.ValidateExportRequest, &req); err != nil {
			s.errorFrom(w, err)
			return
		}
	}
	if req.Strategy == "" {
		req.Strategy = s.exportStrategy
	}

	exporter, err := s.newExporter(req.Strategy)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	start := time.Now()
	res, err := sess.Export(r.Context(), exporter, req.Filename)
	s.recordExport(r.Context(), id, req, res, err, time.Since(start))
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data) //nolint:errcheck
}

// handleListExports returns the export log of a resume
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.resumes.ListExports(r.Context(), id, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list exports: "+err.Error())
		return
	}
	if records == nil {
		records = []db.ExportRecord{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"exports": records,
		"count":   len(records),
	})
}

// recordExport appends the outcome of an export to the export log. Logging failures never fail the request.
func (s *Server) recordExport(ctx context.Context, id uuid.UUID, req ExportRequest, res *export.Result, exportErr error, elapsed time.Duration) {
	rec := &db.ExportRecord{
		ResumeID:   id,
		Strategy:   req.Strategy,
		Filename:   export.SanitizeFilename(req.Filename),
		Status:     db.ExportSucceeded,
		DurationMs: elapsed.Milliseconds(),
	}
	if exportErr != nil {
		msg := exportErr.Error()
		rec.Status = db.ExportFailed
		rec.Error = &msg
	} else if res != nil {
		rec.Filename = res.Filename
		rec.Pages = res.Pages
		rec.SizeBytes = len(res.Data)
	}

	if _, err := s.resumes.RecordExport(ctx, rec); err != nil {
		log.Printf("[EXPORT] failed to record export of %s: %v", id, err)
	}
}
