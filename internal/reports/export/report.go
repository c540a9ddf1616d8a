package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

// Format is a downloadable file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, xlsx (or excel) and pdf, case-insensitively. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/csv"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Report is a single table ready for export
type Report struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]interface{}
	Summary     [][2]string
}

// RowDetail is optional per-holder context shown next to a cap table line
type RowDetail struct {
	Role       string
	Commitment string
	Vesting    string
}

// CapTableReport lays out a cap table with one line per holder and a total.
func CapTableReport(title string, table captable.CapTable, details map[string]RowDetail, at time.Time) *Report {
	r := &Report{
		Title:       title,
		GeneratedAt: at,
		Columns:     []string{"Stakeholder", "Role", "Commitment", "Vesting", "Ownership %"},
	}
	for _, e := range table {
		d := details[e.Stakeholder]
		r.Rows = append(r.Rows, []interface{}{e.Stakeholder, d.Role, d.Commitment, d.Vesting, e.Percentage})
	}

	r.Summary = append(r.Summary, [2]string{"Total", formatPercent(table.Total())})
	if pool, ok := table.Get(captable.ESOPKey); ok {
		r.Summary = append(r.Summary, [2]string{"Unallocated pool", formatPercent(pool)})
	}
	if table.IsOverAllocated() {
		r.Subtitle = "Warning: declared equity exceeds 100%"
	}
	return r
}

// DilutionReport lays out a simulated round as before/after ownership.
func DilutionReport(result *captable.DilutionResult, at time.Time) *Report {
	title := "Round simulation"
	if result.Label != "" {
		title = result.Label + " simulation"
	}

	r := &Report{
		Title:       title,
		Subtitle:    fmt.Sprintf("Investment %.2f at %.2f pre-money", result.Investment, result.PreMoneyValuation),
		GeneratedAt: at,
		Columns:     []string{"Stakeholder", "Before %", "After %", "Change %"},
	}
	for _, c := range result.Changes {
		r.Rows = append(r.Rows, []interface{}{c.Stakeholder, c.Before, c.After, c.Delta})
	}
	r.Summary = [][2]string{
		{"Post-money valuation", fmt.Sprintf("%.2f", result.PostMoneyValuation)},
		{"New investor stake", formatPercent(result.NewInvestorPercentage)},
	}
	return r
}

// Write renders r in the requested format.
func Write(w io.Writer, format Format, r *Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, r, DefaultCSVOptions())
	case FormatXLSX:
		return WriteExcel(w, r, DefaultExcelOptions())
	case FormatPDF:
		return WritePDF(w, r)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
