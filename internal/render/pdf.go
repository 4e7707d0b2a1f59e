package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// renderPDF rasterizes PDF pages to JPEG via pdftoppm, then base64-encodes
// them. Width is capped with -scale-to-x (aspect preserved by -scale-to-y
// -1) so page images stay under the model's useful resolution.
func (r *DocRenderer) renderPDF(ctx context.Context, path string, opts Options) ([]Page, error) {
	tmpDir, err := os.MkdirTemp("", "spreader-render-*")
	if err != nil {
		return nil, eris.Wrap(err, "render: create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	args := []string{
		"-jpeg",
		"-jpegopt", "quality=85",
		"-r", strconv.Itoa(opts.DPI),
		"-scale-to-x", strconv.Itoa(opts.MaxWidth),
		"-scale-to-y", "-1",
	}
	if opts.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(opts.MaxPages))
	}
	args = append(args, path, prefix)

	cmd := exec.CommandContext(ctx, r.pdftoppmPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "render: pdftoppm failed for %s: %s", path, stderr.String())
	}

	pages, err := collectRenderedPages(tmpDir)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, eris.Errorf("render: pdftoppm produced no pages for %s", path)
	}

	zap.L().Debug("rendered pdf",
		zap.String("path", path),
		zap.Int("pages", len(pages)),
		zap.Int("dpi", opts.DPI),
		zap.Int("max_width", opts.MaxWidth),
	)
	return pages, nil
}

// collectRenderedPages reads pdftoppm's output files in page order.
// pdftoppm zero-pads page numbers, so lexical order is page order.
func collectRenderedPages(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrap(err, "render: read temp dir")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".jpg" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	pages := make([]Page, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, eris.Wrapf(err, "render: read page %s", name)
		}
		pages = append(pages, Page{
			Index:     i + 1,
			Kind:      "image",
			MediaType: "image/jpeg",
			Data:      base64.StdEncoding.EncodeToString(data),
		})
	}
	return pages, nil
}

// Describe returns a short human-readable page descriptor for logs.
func (p Page) Describe() string {
	return fmt.Sprintf("page %d (%s)", p.Index, p.Kind)
}
