package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMissingFile(t *testing.T) {
	r := NewRenderer("")
	_, err := r.Render(context.Background(), "/nonexistent/statements.pdf", Options{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrFileNotFound))
}

func TestRenderDirectoryIsNotFound(t *testing.T) {
	r := NewRenderer("")
	_, err := r.Render(context.Background(), t.TempDir(), Options{})
	assert.True(t, eris.Is(err, ErrFileNotFound))
}

func TestRenderUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a real doc"), 0o644))

	r := NewRenderer("")
	_, err := r.Render(context.Background(), path, Options{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnsupportedFileType))
}

func TestRenderLegacyXLSIsUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.xls")
	require.NoError(t, os.WriteFile(path, []byte("\xd0\xcf\x11\xe0 legacy workbook"), 0o644))

	r := NewRenderer("")
	_, err := r.Render(context.Background(), path, Options{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnsupportedFileType))
	assert.Contains(t, err.Error(), ".xlsx")
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 200, opts.DPI)
	assert.Equal(t, 1024, opts.MaxWidth)
	assert.Zero(t, opts.MaxPages)

	custom := Options{DPI: 300, MaxWidth: 2048, MaxPages: 5}.withDefaults()
	assert.Equal(t, 300, custom.DPI)
	assert.Equal(t, 2048, custom.MaxWidth)
	assert.Equal(t, 5, custom.MaxPages)
}

func TestCollectRenderedPagesOrdersByName(t *testing.T) {
	dir := t.TempDir()
	// pdftoppm zero-pads page numbers in its output names.
	for _, name := range []string{"page-03.jpg", "page-01.jpg", "page-02.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpegdata"), 0o644))
	}

	pages, err := collectRenderedPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, "image", p.Kind)
		assert.Equal(t, "image/jpeg", p.MediaType)
		assert.NotEmpty(t, p.Data)
	}
}

func TestCSVEscape(t *testing.T) {
	assert.Equal(t, "Revenue", csvEscape("Revenue"))
	assert.Equal(t, `"1,000"`, csvEscape("1,000"))
	assert.Equal(t, `"Net ""loss"""`, csvEscape(`Net "loss"`))
}
