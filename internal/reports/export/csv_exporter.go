package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter      rune
	UseCRLF        bool
	IncludeHeader  bool
	IncludeSummary bool
	Precision      int
	DateFormat     string
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:      ',',
		IncludeHeader:  true,
		IncludeSummary: true,
		Precision:      4,
		DateFormat:     "2006-01-02",
	}
}

// WriteCSV writes the report rows, followed by the summary lines after a blank row.
func WriteCSV(w io.Writer, r *Report, options CSVOptions) error {
	writer := csv.NewWriter(w)
	writer.Comma = options.Delimiter
	writer.UseCRLF = options.UseCRLF

	if options.IncludeHeader {
		if err := writer.Write(r.Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, row := range r.Rows {
		record := make([]string, len(row))
		for i, val := range row {
			record[i] = formatCSVValue(val, options)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if options.IncludeSummary && len(r.Summary) > 0 {
		if err := writer.Write([]string{}); err != nil {
			return fmt.Errorf("failed to write separator: %w", err)
		}
		for _, line := range r.Summary {
			if err := writer.Write([]string{line[0], line[1]}); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCSVValue(val interface{}, options CSVOptions) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', options.Precision, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', options.Precision, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(options.DateFormat)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
