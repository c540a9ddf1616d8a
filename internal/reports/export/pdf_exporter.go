package export

import (
	"fmt"
	"io"

	"founder-portal/ops-portal/ops-portal-backend/pkg/pdf"
)

// WritePDF renders the report as a single table document.
func WritePDF(w io.Writer, r *Report) error {
	table := pdf.Table{
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		GeneratedAt: r.GeneratedAt,
		Columns:     r.Columns,
		Summary:     r.Summary,
	}
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, val := range row {
			switch v := val.(type) {
			case float64:
				cells[i] = fmt.Sprintf("%.2f", v)
			case nil:
			default:
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		table.Rows = append(table.Rows, cells)
	}

	opts := pdf.DefaultOptions()
	if len(r.Columns) > 4 {
		opts.Orientation = "landscape"
	}
	return pdf.Render(w, table, opts)
}
