package pdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Color is an RGB triple
type Color struct {
	R, G, B int
}

// Options configures page layout
type Options struct {
	PageSize       string
	Orientation    string // portrait or landscape
	FontFamily     string
	FontSize       float64
	TitleFontSize  float64
	HeaderColor    Color
	AlternateColor Color
	DateFormat     string
	Margin         float64
}

// DefaultOptions returns A4 portrait with a blue header row
func DefaultOptions() Options {
	return Options{
		PageSize:       "A4",
		Orientation:    "portrait",
		FontFamily:     "Arial",
		FontSize:       10,
		TitleFontSize:  16,
		HeaderColor:    Color{R: 68, G: 114, B: 196},
		AlternateColor: Color{R: 242, G: 242, B: 242},
		DateFormat:     "2006-01-02",
		Margin:         15,
	}
}

// Table is a titled grid of pre-formatted cells with an optional summary block.
type Table struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]string
	Summary     [][2]string
}

// Render writes t as a single-table PDF document.
func Render(w io.Writer, t Table, opts Options) error {
	orientation := "P"
	if opts.Orientation == "landscape" {
		orientation = "L"
	}

	doc := gofpdf.New(orientation, "mm", opts.PageSize, "")
	doc.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	doc.SetAutoPageBreak(true, opts.Margin)
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(opts.FontFamily, "", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont(opts.FontFamily, "B", opts.TitleFontSize)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 10, t.Title, "", 1, "C", false, 0, "")
	if t.Subtitle != "" {
		doc.SetFont(opts.FontFamily, "", opts.FontSize+2)
		doc.SetTextColor(100, 100, 100)
		doc.CellFormat(0, 8, t.Subtitle, "", 1, "C", false, 0, "")
	}
	if !t.GeneratedAt.IsZero() {
		doc.SetFont(opts.FontFamily, "", opts.FontSize-1)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 6, "Generated: "+t.GeneratedAt.Format(opts.DateFormat), "", 1, "R", false, 0, "")
	}
	doc.Ln(6)

	widths := columnWidths(doc, t, opts)
	header := func() {
		doc.SetFont(opts.FontFamily, "B", opts.FontSize+1)
		doc.SetFillColor(opts.HeaderColor.R, opts.HeaderColor.G, opts.HeaderColor.B)
		doc.SetTextColor(255, 255, 255)
		for i, col := range t.Columns {
			doc.CellFormat(widths[i], 8, col, "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont(opts.FontFamily, "", opts.FontSize)
		doc.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := doc.GetPageSize()
	for i, row := range t.Rows {
		if doc.GetY()+8 > pageHeight-opts.Margin {
			doc.AddPage()
			header()
		}
		if i%2 == 1 {
			doc.SetFillColor(opts.AlternateColor.R, opts.AlternateColor.G, opts.AlternateColor.B)
		} else {
			doc.SetFillColor(255, 255, 255)
		}
		for j := range t.Columns {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			align := "L"
			if j > 0 {
				align = "R"
			}
			doc.CellFormat(widths[j], 7, cell, "1", 0, align, true, 0, "")
		}
		doc.Ln(-1)
	}

	if len(t.Summary) > 0 {
		doc.Ln(8)
		for _, item := range t.Summary {
			doc.SetFont(opts.FontFamily, "B", opts.FontSize)
			doc.CellFormat(60, 6, item[0]+":", "", 0, "L", false, 0, "")
			doc.SetFont(opts.FontFamily, "", opts.FontSize)
			doc.CellFormat(0, 6, item[1], "", 1, "L", false, 0, "")
		}
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	return doc.Output(w)
}

// Bytes renders t into memory.
func Bytes(t Table, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, t, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func columnWidths(doc *gofpdf.Fpdf, t Table, opts Options) []float64 {
	pageWidth, _ := doc.GetPageSize()
	available := pageWidth - 2*opts.Margin

	doc.SetFont(opts.FontFamily, "B", opts.FontSize+1)
	widths := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = doc.GetStringWidth(col) + 6
	}
	doc.SetFont(opts.FontFamily, "", opts.FontSize)
	for _, row := range t.Rows {
		for i := range t.Columns {
			if i < len(row) {
				if w := doc.GetStringWidth(row[i]) + 6; w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	var total float64
	for _, w := range widths {
		total += w
	}
	if total > 0 {
		// stretch or shrink to the printable width
		scale := available / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}
