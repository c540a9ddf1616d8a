package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

func foundingTable(t *testing.T) captable.CapTable {
	t.Helper()
	table, err := captable.NormalizeCapTable([]captable.Stakeholder{
		{Name: "Alex", Equity: 40},
		{Name: "Ben", Equity: 40},
		{Name: "Casey", Equity: 5},
		{Name: "Dana", Equity: 1},
	})
	require.NoError(t, err)
	return table
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"excel", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", FormatPDF, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestCapTableReport(t *testing.T) {
	report := CapTableReport("Cap table", foundingTable(t), map[string]RowDetail{
		"Alex": {Role: "CEO", Commitment: "full_time"},
	}, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	require.Len(t, report.Rows, 5)
	assert.Equal(t, []interface{}{"Alex", "CEO", "full_time", "", 40.0}, report.Rows[0])
	assert.Equal(t, "ESOP", report.Rows[4][0])
	assert.Equal(t, [2]string{"Unallocated pool", "14.00%"}, report.Summary[1])
	assert.Empty(t, report.Subtitle)
}

func TestCapTableReport_FlagsOverAllocation(t *testing.T) {
	table, err := captable.NormalizeCapTable([]captable.Stakeholder{{Name: "Alex", Equity: 60}, {Name: "Ben", Equity: 50}})
	require.NoError(t, err)

	report := CapTableReport("Cap table", table, nil, time.Now())
	assert.Contains(t, report.Subtitle, "exceeds 100%")
}

func TestWriteCSV(t *testing.T) {
	report := CapTableReport("Cap table", foundingTable(t), nil, time.Now())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, report))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, report.Columns, records[0])
	assert.Equal(t, []string{"Casey", "", "", "", "5.0000"}, records[3])
	assert.Equal(t, []string{"Total", "100.00%"}, records[len(records)-2])
}

func TestWriteExcel(t *testing.T) {
	result, err := captable.SimulateDilution(foundingTable(t), 1_000_000, 5_000_000)
	require.NoError(t, err)
	report := DilutionReport(result, time.Now())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet := DefaultExcelOptions().SheetName
	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Stakeholder", header)

	name, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Alex", name)
}

func TestWritePDF(t *testing.T) {
	report := CapTableReport("Cap table", foundingTable(t), nil, time.Now())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestDilutionReport(t *testing.T) {
	result, err := captable.SimulateRound(foundingTable(t), captable.FundingRoundInput{
		Investment: 1_000_000, PreMoneyValuation: 5_000_000, Label: "Seed",
	})
	require.NoError(t, err)

	report := DilutionReport(result, time.Now())
	assert.Equal(t, "Seed simulation", report.Title)
	assert.Len(t, report.Rows, len(result.Changes))
	assert.Equal(t, [2]string{"New investor stake", "16.67%"}, report.Summary[1])
}
