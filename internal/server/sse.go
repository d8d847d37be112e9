package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/resume-builder/internal/types"
)

// Pagination stream event names
const (
	EventPagination = "pagination"
	EventClosed     = "closed"
	EventError      = "error"
)

// streamRetry is the reconnect delay suggested to EventSource clients.
const streamRetry = 3 * time.Second

// stateStream writes pagination states as Server-Sent Events. Each pagination event carries the
// state's version as its event id, so a reconnecting client's Last-Event-ID tells which states it has.
type stateStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newStateStream sends the stream headers and the retry hint.
func newStateStream(w http.ResponseWriter) (*stateStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &stateStream{w: w, flusher: flusher}
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", streamRetry.Milliseconds()); err != nil {
		return nil, err
	}
	flusher.Flush()
	return s, nil
}

// lastEventVersion parses the Last-Event-ID header of a reconnecting client; 0 when absent.
func lastEventVersion(r *http.Request) uint64 {
	v, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *stateStream) event(id, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// state sends one pagination state.
func (s *stateStream) state(st types.PaginationState) error {
	return s.event(strconv.FormatUint(st.Version, 10), EventPagination, st)
}

// closed tells the client the session ended, e.g. because the resume was deleted.
func (s *stateStream) closed(resumeID string) error {
	return s.event("", EventClosed, map[string]string{"id": resumeID})
}

// fail sends an error event. The stream ends after it.
func (s *stateStream) fail(err error) {
	s.event("", EventError, map[string]string{"error": err.Error()}) //nolint:errcheck
}

// ping writes a comment line, which clients ignore, to keep proxies from closing an idle stream.
func (s *stateStream) ping() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
