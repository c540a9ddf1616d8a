package pdf

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	rows := make([][]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, []string{fmt.Sprintf("Holder %d", i), "1.25%"})
	}

	out, err := Bytes(Table{
		Title:       "Cap Table",
		Subtitle:    "Seed",
		GeneratedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Columns:     []string{"Stakeholder", "Ownership"},
		Rows:        rows,
		Summary:     [][2]string{{"Total", "100.00%"}},
	}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
