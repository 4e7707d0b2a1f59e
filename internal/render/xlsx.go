package render

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// renderXLSX turns each worksheet into one CSV-like text page. Statement
// tables survive this flattening well enough for the model because column
// positions are preserved.
func renderXLSX(path string, opts Options) ([]Page, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "render: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("render: xlsx %s has no sheets", path)
	}

	var pages []Page
	for i, sheet := range f.Sheets {
		if opts.MaxPages > 0 && len(pages) >= opts.MaxPages {
			break
		}
		pages = append(pages, Page{
			Index: i + 1,
			Kind:  "text",
			Text:  sheetToCSV(sheet),
		})
	}
	return pages, nil
}

func sheetToCSV(sheet *xlsx.Sheet) string {
	var b strings.Builder
	b.WriteString("## Sheet: ")
	b.WriteString(sheet.Name)
	b.WriteString("\n")

	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = csvEscape(cell.String())
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
