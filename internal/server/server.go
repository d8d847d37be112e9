package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/resume-builder/internal/browser"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/prefs"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	resumes        ResumeStore
	sessions       *editor.Manager
	prefs          prefs.Store
	browser        *browser.Browser
	exportStrategy string
	newExporter    func(strategy string) (export.Exporter, error)
	rateLimiter    *ratelimit.Limiter
	verbose        bool
}

// Config holds server configuration
type Config struct {
	Port     int
	Resumes  ResumeStore
	Sessions *editor.Manager
	// Prefs is cleared when a resume is deleted. Optional.
	Prefs prefs.Store
	// Browser drives PDF export. Nil disables the export endpoint.
	Browser        *browser.Browser
	ExportStrategy string
	// RateLimit overrides the environment rate limit configuration.
	RateLimit *ratelimit.Config
	Verbose   bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Resumes == nil {
		return nil, fmt.Errorf("server: resume store is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("server: session manager is required")
	}
	if cfg.ExportStrategy == "" {
		cfg.ExportStrategy = export.DefaultStrategy
	}
	if !export.IsStrategy(cfg.ExportStrategy) {
		return nil, fmt.Errorf("server: unknown export strategy %q", cfg.ExportStrategy)
	}

	s := &Server{
		resumes:        cfg.Resumes,
		sessions:       cfg.Sessions,
		prefs:          cfg.Prefs,
		browser:        cfg.Browser,
		exportStrategy: cfg.ExportStrategy,
		verbose:        cfg.Verbose,
	}
	s.newExporter = func(strategy string) (export.Exporter, error) {
		return export.New(strategy, s.browser, s.verbose)
	}

	// Initialize rate limiter
	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		fromEnv, err := ratelimit.ConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		rlConfig = fromEnv
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleListTemplates)

	// Resume CRUD endpoints
	mux.HandleFunc("POST /resumes", s.handleCreateResume)
	mux.HandleFunc("GET /resumes", s.handleListResumes)
	mux.HandleFunc("GET /resumes/{id}", s.handleGetResume)
	mux.HandleFunc("PUT /resumes/{id}", s.handleUpdateResume)
	mux.HandleFunc("DELETE /resumes/{id}", s.handleDeleteResume)

	// Layout endpoints
	mux.HandleFunc("PUT /resumes/{id}/sections", s.handleSetSections)
	mux.HandleFunc("PUT /resumes/{id}/template", s.handleSetTemplate)
	mux.HandleFunc("GET /resumes/{id}/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /resumes/{id}/preferences", s.handleSetPreferences)

	// Pagination and rendering endpoints
	mux.HandleFunc("GET /resumes/{id}/pagination", s.handleGetPagination)
	mux.HandleFunc("GET /resumes/{id}/pagination/stream", s.handlePaginationStream)
	mux.HandleFunc("GET /resumes/{id}/pages", s.handleGetPages)
	mux.HandleFunc("GET /resumes/{id}/preview", s.handlePreview)

	// Export endpoints
	mux.HandleFunc("POST /resumes/{id}/export", s.handleExport)
	mux.HandleFunc("GET /resumes/{id}/exports", s.handleListExports)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for exports and pagination streams
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Closing sessions ends open pagination streams so Shutdown does not wait on them
	s.sessions.Close()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and every editing session.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
	s.sessions.Close()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Page-Count")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		// Check rate limit
		decision := s.rateLimiter.Allow(clientID, r.Method, r.URL.Path)

		s.setRateLimitHeaders(w, decision)
		if !decision.Allowed {
			s.rateLimitResponse(w, clientID, decision)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if s.verbose {
			log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d completed in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom writes err with the status HTTPStatus assigns it. Internal errors are logged.
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	if d.Limited() {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, d ratelimit.Decision) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"rule":    d.Rule,
	}
	if d.Limited() {
		response["limit"] = d.Limit
		response["reset_at"] = d.Reset.Format(time.RFC3339)
	}

	if d.RetryAfter > 0 {
		// Round up so clients never retry a moment too early.
		retry := int(math.Ceil(d.RetryAfter.Seconds()))
		response["retry_after"] = retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}

	log.Printf("[rate-limit] %s refused by rule %q (limit %d)", clientID, d.Rule, d.Limit)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
