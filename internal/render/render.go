// Package render converts source documents into ordered page
// representations for the model: JPEG page images for PDFs, CSV-like text
// sections for spreadsheets. Rendering is deterministic given
// (path, resolution, page limit).
package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Typed input errors. Callers check these with eris.Is; input problems fail
// fast and are never retried.
var (
	ErrFileNotFound        = eris.New("render: file not found")
	ErrUnsupportedFileType = eris.New("render: unsupported file type")
)

// Page is one rendered page representation.
type Page struct {
	// Index is the 1-based page (or sheet) number.
	Index int

	// Kind is "image" for PDF pages, "text" for spreadsheet sections.
	Kind string

	// MediaType and Data carry a base64-encoded image for image pages.
	MediaType string
	Data      string

	// Text carries the CSV-like section for text pages.
	Text string
}

// Options controls rendering fidelity and cost.
type Options struct {
	// DPI for PDF rasterization. Default 200.
	DPI int

	// MaxWidth caps the rendered image width in pixels. Default 1024.
	MaxWidth int

	// MaxPages caps how many pages are rendered. 0 means no cap.
	MaxPages int
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = 200
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = 1024
	}
	return o
}

// Renderer converts a document path into ordered pages.
type Renderer interface {
	Render(ctx context.Context, path string, opts Options) ([]Page, error)
}

// DocRenderer renders PDFs via poppler's pdftoppm and spreadsheets via the
// xlsx library.
type DocRenderer struct {
	pdftoppmPath string
}

// NewRenderer creates a DocRenderer. If pdftoppmPath is empty, "pdftoppm"
// is resolved from PATH.
func NewRenderer(pdftoppmPath string) *DocRenderer {
	if pdftoppmPath == "" {
		pdftoppmPath = "pdftoppm"
	}
	return &DocRenderer{pdftoppmPath: pdftoppmPath}
}

// Render dispatches on file extension. Missing files and unknown formats
// return the typed sentinels above.
func (r *DocRenderer) Render(ctx context.Context, path string, opts Options) ([]Page, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, eris.Wrapf(ErrFileNotFound, "render: %s", path)
	}

	opts = opts.withDefaults()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return r.renderPDF(ctx, path, opts)
	case ".xlsx":
		return renderXLSX(path, opts)
	case ".xls":
		// The xlsx library reads only the zip-based format; the legacy
		// binary format would surface as a confusing open error.
		return nil, eris.Wrapf(ErrUnsupportedFileType, "render: legacy .xls is not supported, convert %s to .xlsx", filepath.Base(path))
	default:
		return nil, eris.Wrapf(ErrUnsupportedFileType, "render: %s", filepath.Ext(path))
	}
}
