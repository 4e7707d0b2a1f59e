package spreader

import (
	"fmt"

	"github.com/bridge-group/spreader-cli/internal/render"
	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// pagesToParts converts rendered pages into message content parts, each
// preceded by a page marker so the model can report page numbers.
func pagesToParts(pages []render.Page) []anthropic.ContentPart {
	parts := make([]anthropic.ContentPart, 0, len(pages)*2)
	for _, p := range pages {
		parts = append(parts, anthropic.TextPart(fmt.Sprintf("Page %d:", p.Index)))
		if p.Kind == "text" {
			parts = append(parts, anthropic.TextPart(p.Text))
		} else {
			parts = append(parts, anthropic.ImagePart(p.MediaType, p.Data))
		}
	}
	return parts
}

// headPages returns the first n pages, or all pages when n <= 0 or exceeds
// the page count.
func headPages(pages []render.Page, n int) []render.Page {
	if n <= 0 || n >= len(pages) {
		return pages
	}
	return pages[:n]
}

// selectPages picks pages by their 1-based numbers, preserving order.
// An empty selection returns all pages.
func selectPages(pages []render.Page, nums []int) []render.Page {
	if len(nums) == 0 {
		return pages
	}
	byIndex := make(map[int]render.Page, len(pages))
	for _, p := range pages {
		byIndex[p.Index] = p
	}
	var out []render.Page
	for _, n := range nums {
		if p, ok := byIndex[n]; ok {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return pages
	}
	return out
}
