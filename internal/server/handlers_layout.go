package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// streamHeartbeat is how often an idle pagination stream sends a keep-alive comment.
const streamHeartbeat = 15 * time.Second

// SectionsRequest is the request body for PUT /resumes/{id}/sections
type SectionsRequest struct {
	ActiveSections []string `json:"active_sections"`
}

// TemplateRequest is the request body for PUT /resumes/{id}/template
type TemplateRequest struct {
	Template string `json:"template"`
}

// PagesResponse is the response for GET /resumes/{id}/pages
type PagesResponse struct {
	PageCount int              `json:"page_count"`
	Version   uint64           `json:"version"`
	Pages     []rendering.Page `json:"pages"`
}

// handleSetSections reorders, adds or removes the sections of a resume
func (s *Server) handleSetSections(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	var req SectionsRequest
	if err := decodeJSON(body, validSectionsRequest, &req); err != nil {
		s.errorFrom(w, err)
		return
	}

	if err := sess.SetActiveSections(r.Context(), req.ActiveSections); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.syncDocument(r.Context(), sess)

	s.jsonResponse(w, http.StatusOK, sess.Preferences())
}

// handleSetTemplate switches the template of a resume
func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	var req TemplateRequest
	if err := decodeJSON(body, validTemplateRequest, &req); err != nil {
		s.errorFrom(w, err)
		return
	}

	if err := sess.SetTemplate(r.Context(), req.Template); err != nil {
		s.errorFrom(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, sess.Preferences())
}

// handleGetPreferences returns the layout preferences of a resume
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Preferences())
}

// handleSetPreferences replaces the layout preferences of a resume
func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	var p types.LayoutPreferences
	if err := decodeJSON(body, schemas.ValidateLayoutPreferences, &p); err != nil {
		s.errorFrom(w, err)
		return
	}

	if err := sess.SetPreferences(r.Context(), p); err != nil {
		s.errorFrom(w, err)
		return
	}
	if len(p.ActiveSections) > 0 {
		s.syncDocument(r.Context(), sess)
	}

	s.jsonResponse(w, http.StatusOK, sess.Preferences())
}

// handleGetPagination returns the current pagination state.
// ?settle=true runs any pending recalculation first; a session that never ran a pass always settles.
func (s *Server) handleGetPagination(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	settle, _ := strconv.ParseBool(r.URL.Query().Get("settle"))
	if settle || sess.State().Version == 0 {
		if err := sess.Settle(r.Context()); err != nil {
			s.errorFrom(w, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, sess.State())
}

// handlePaginationStream streams every new pagination state as a "pagination" event.
// A client reconnecting with Last-Event-ID is not sent the state it already has.
func (s *Server) handlePaginationStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	stream, err := newStateStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	states, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	// A fresh session has not paginated yet; its first state would be a placeholder
	if sess.State().Version == 0 {
		if err := sess.Settle(r.Context()); err != nil {
			stream.fail(err)
			return
		}
		// The settled state is sent below; drop its broadcast copy
		select {
		case <-states:
		default:
		}
	}

	seen := lastEventVersion(r)
	if current := sess.State(); current.Version > seen {
		if err := stream.state(current); err != nil {
			return
		}
		seen = current.Version
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, open := <-states:
			if !open {
				stream.closed(sess.ID()) //nolint:errcheck
				return
			}
			if state.Version <= seen {
				continue
			}
			if err := stream.state(state); err != nil {
				return
			}
			seen = state.Version
		case <-heartbeat.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}

// handleGetPages renders the pages of the current state.
// ?view=N is the page in view (default 1); ?all=true renders every page eagerly.
func (s *Server) handleGetPages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	view := 1
	if v := r.URL.Query().Get("view"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid view")
			return
		}
		view = parsed
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	pages, state, err := sess.Pages(view, all)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, PagesResponse{
		PageCount: state.PageCount,
		Version:   state.Version,
		Pages:     pages,
	})
}

// handlePreview returns the whole resume as one printable HTML document
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	html, err := sess.Preview()
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html)) //nolint:errcheck
}

// validSectionsRequest checks the sections body shape.
func validSectionsRequest(body []byte) error {
	return schemas.ValidateJSONString(sectionsRequestSchema, string(body))
}

// validTemplateRequest checks the template body shape.
func validTemplateRequest(body []byte) error {
	return schemas.ValidateJSONString(templateRequestSchema, string(body))
}

const sectionsRequestSchema = `{
	"type": "object",
	"required": ["active_sections"],
	"properties": {
		"active_sections": {"type": "array", "uniqueItems": true, "items": {"type": "string", "minLength": 1}}
	},
	"additionalProperties": false
}`

const templateRequestSchema = `{
	"type": "object",
	"required": ["template"],
	"properties": {
		"template": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`
