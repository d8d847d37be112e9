package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// TemplateResponse describes one resume template
type TemplateResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	HeaderPolicy string `json:"header_policy"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status   string `json:"status"`
	Browser  bool   `json:"browser"`
	Sessions int    `json:"sessions"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Browser:  s.browser != nil,
		Sessions: len(s.sessions.IDs()),
	})
}

// handleListTemplates lists the registered templates
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	templates := layout.Templates()
	out := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, TemplateResponse{
			ID:           t.ID,
			Name:         t.Name,
			Description:  t.Description,
			HeaderPolicy: t.HeaderPolicy.String(),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": out})
}

// handleCreateResume stores a new resume document
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	doc, err := s.decodeDocument(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	resume, err := s.resumes.CreateResume(r.Context(), doc)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create resume: "+err.Error())
		return
	}

	log.Printf("[server] created resume %s (%s)", resume.ID, resume.Name)
	s.jsonResponse(w, http.StatusCreated, resume)
}

// handleListResumes lists stored resumes
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	resumes, err := s.resumes.ListResumes(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list resumes: "+err.Error())
		return
	}
	if resumes == nil {
		resumes = []db.ResumeSummary{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"resumes": resumes,
		"count":   len(resumes),
	})
}

// handleGetResume returns a stored resume
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	resume, err := s.resumes.GetResume(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorFrom(w, &ErrResumeNotFound{ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, resume)
}

// handleUpdateResume replaces a resume document and recalculates its pagination
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	doc, err := s.decodeDocument(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	found, err := s.resumes.UpdateResume(r.Context(), id, doc)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to update resume: "+err.Error())
		return
	}
	if !found {
		s.errorFrom(w, &ErrResumeNotFound{ID: id.String()})
		return
	}

	sess, err := s.sessions.Get(r.Context(), id.String())
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if err := sess.ReplaceDocument(doc); err != nil {
		s.errorFrom(w, err)
		return
	}
	// The section order lives in the layout preferences too; keep them in step
	if err := sess.SetActiveSections(r.Context(), doc.ActiveSections); err != nil {
		s.errorFrom(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":       id.String(),
		"document": sess.Document(),
	})
}

// handleDeleteResume deletes a resume and closes its session
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	found, err := s.resumes.DeleteResume(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete resume: "+err.Error())
		return
	}
	if !found {
		s.errorFrom(w, &ErrResumeNotFound{ID: id.String()})
		return
	}

	s.sessions.Evict(id.String())
	if s.prefs != nil {
		if err := s.prefs.Delete(r.Context(), id.String()); err != nil {
			log.Printf("[server] failed to delete preferences of %s: %v", id, err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// resumeID parses the {id} path value, writing a 400 when it is not a UUID.
func (s *Server) resumeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Resume ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume ID format")
		return uuid.Nil, false
	}
	return id, true
}

// session returns the editing session of the {id} resume, writing the error response on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	id, ok := s.resumeID(w, r)
	if !ok {
		return nil, false
	}
	sess, err := s.sessions.Get(r.Context(), id.String())
	if err != nil {
		s.errorFrom(w, err)
		return nil, false
	}
	return sess, true
}

// syncDocument writes the session's document back to the store after a layout change.
func (s *Server) syncDocument(ctx context.Context, sess *editor.Session) {
	id, err := uuid.Parse(sess.ID())
	if err != nil {
		return
	}
	if _, err := s.resumes.UpdateResume(ctx, id, sess.Document()); err != nil {
		log.Printf("[server] failed to store document of %s: %v", id, err)
	}
}

// readBody reads a size-limited request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return body, nil
}

// decodeJSON validates body against a schema before unmarshalling it into dst.
func decodeJSON(body []byte, validate func([]byte) error, dst any) error {
	if err := validate(body); err != nil {
		var loadErr *schemas.SchemaLoadError
		if errors.As(err, &loadErr) {
			return &ErrValidation{Field: "body", Message: "invalid JSON"}
		}
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// decodeDocument reads and validates a resume document body.
func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (*types.ResumeDocument, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}

	var doc types.ResumeDocument
	if err := decodeJSON(body, schemas.ValidateResumeDocument, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, &ErrValidation{Field: "document", Message: err.Error()}
	}
	for _, id := range doc.ActiveSections {
		if id != types.SectionPersonal && !doc.IsKnownSection(id) {
			return nil, &ErrValidation{Field: "active_sections", Message: "unknown section " + id}
		}
	}
	return &doc, nil
}
