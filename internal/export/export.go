// Package export turns a rendered multi-page resume document into a PDF.
package export

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/browser"
	"github.com/jonathan/resume-builder/internal/validation"
)

// Strategy names.
const (
	StrategyPrint   = "print"
	StrategyCompose = "compose"
	StrategyRaster  = "raster"
)

// DefaultStrategy is used when a request names none.
const DefaultStrategy = StrategyPrint

// DefaultFilename is used when a request names no file.
const DefaultFilename = "resume.pdf"

// ContentTypePDF is the MIME type of every export result.
const ContentTypePDF = "application/pdf"

// Job is one export request: a fully rendered document and the ids of its page blocks, in order.
type Job struct {
	HTML     string
	PageIDs  []string
	Filename string
	Format   string
}

// Result is an exported PDF.
type Result struct {
	Strategy    string
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
	Duration    time.Duration
}

// Exporter produces a PDF from a job.
type Exporter interface {
	Name() string
	Export(ctx context.Context, job Job) (*Result, error)
}

// Strategies returns the available strategy names.
func Strategies() []string {
	return []string{StrategyPrint, StrategyCompose, StrategyRaster}
}

// IsStrategy reports whether name is a known strategy.
func IsStrategy(name string) bool {
	for _, s := range Strategies() {
		if s == name {
			return true
		}
	}
	return false
}

// New returns the exporter for strategy, driving b.
func New(strategy string, b *browser.Browser, verbose bool) (Exporter, error) {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if b == nil {
		return nil, &ExportError{Strategy: strategy, Message: "headless browser is not configured"}
	}
	switch strategy {
	case StrategyPrint:
		return &PrintExporter{browser: b, verbose: verbose}, nil
	case StrategyCompose:
		return &ComposeExporter{browser: b, verbose: verbose}, nil
	case StrategyRaster:
		return &RasterExporter{browser: b, verbose: verbose}, nil
	default:
		return nil, &ExportError{Strategy: strategy, Message: fmt.Sprintf("unknown strategy (expected one of %s)", strings.Join(Strategies(), ", "))}
	}
}

// checkJob rejects jobs no strategy can export.
func checkJob(strategy string, job Job) error {
	if strings.TrimSpace(job.HTML) == "" {
		return &ExportError{Strategy: strategy, Message: "document is empty"}
	}
	if len(job.PageIDs) == 0 {
		return &ExportError{Strategy: strategy, Message: "document has no pages"}
	}
	if job.Format != "" && job.Format != "pdf" {
		return &ExportError{Strategy: strategy, Message: fmt.Sprintf("unsupported format %q", job.Format)}
	}
	return nil
}

// finish verifies the PDF has exactly one page per page block and builds the result.
func finish(strategy string, job Job, data []byte, start time.Time, verbose bool) (*Result, error) {
	pages, err := validation.CountPDFPages(data)
	if err != nil {
		return nil, &ExportError{Strategy: strategy, Message: "produced an unreadable PDF", Cause: err}
	}
	if pages != len(job.PageIDs) {
		return nil, &ExportError{
			Strategy: strategy,
			Message:  fmt.Sprintf("produced %d page(s), expected %d", pages, len(job.PageIDs)),
		}
	}

	res := &Result{
		Strategy:    strategy,
		Filename:    SanitizeFilename(job.Filename),
		ContentType: ContentTypePDF,
		Data:        data,
		Pages:       pages,
		Duration:    time.Since(start),
	}
	if verbose {
		log.Printf("[EXPORT] %s: %d page(s), %d bytes in %s", strategy, pages, len(data), res.Duration.Round(time.Millisecond))
	}
	return res, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename returns a safe .pdf file name for a Content-Disposition header.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return DefaultFilename
	}
	return name + ".pdf"
}
