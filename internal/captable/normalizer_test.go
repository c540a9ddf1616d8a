package captable

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCapTable_FoundingTeam(t *testing.T) {
	roster := []Stakeholder{
		{Name: "Alex", Equity: 40},
		{Name: "Ben", Equity: 40},
		{Name: "Casey", Equity: 5},
		{Name: "Dana", Equity: 1},
	}

	table, err := NormalizeCapTable(roster)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alex", "Ben", "Casey", "Dana", ESOPKey}, table.Stakeholders())
	assert.Equal(t, map[string]float64{
		"Alex": 40, "Ben": 40, "Casey": 5, "Dana": 1, ESOPKey: 14,
	}, table.Map())
	assert.Equal(t, 100.0, table.Total())
	assert.False(t, table.IsOverAllocated())
}

func TestNormalizeCapTable_EmptyRosterIsAllPool(t *testing.T) {
	table, err := NormalizeCapTable(nil)
	require.NoError(t, err)
	assert.Equal(t, CapTable{{Stakeholder: ESOPKey, Percentage: 100}}, table)
}

func TestNormalizeCapTable_SumsToHundred(t *testing.T) {
	rosters := [][]Stakeholder{
		{{Name: "A", Equity: 33.3}, {Name: "B", Equity: 33.3}, {Name: "C", Equity: 33.3}},
		{{Name: "A", Equity: 100}},
		{{Name: "A", Equity: 0}, {Name: "B", Equity: 0.0001}},
		{{Name: "A", Equity: 12.5}, {Name: "B", Equity: 7.25}, {Name: "C", Equity: 0.1}, {Name: "D", Equity: 60}},
	}

	for _, roster := range rosters {
		table, err := NormalizeCapTable(roster)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, table.Total(), 1e-9)
		pool, ok := table.Get(ESOPKey)
		require.True(t, ok)
		assert.GreaterOrEqual(t, pool, 0.0)
	}
}

func TestNormalizeCapTable_OverAllocationIsNotClamped(t *testing.T) {
	table, err := NormalizeCapTable([]Stakeholder{
		{Name: "Alex", Equity: 60},
		{Name: "Ben", Equity: 55},
	})
	require.NoError(t, err)

	pool, ok := table.Get(ESOPKey)
	require.True(t, ok)
	assert.Equal(t, -15.0, pool)
	assert.True(t, table.IsOverAllocated())
}

func TestNormalizeCapTable_RejectsBadRosters(t *testing.T) {
	tests := []struct {
		name   string
		roster []Stakeholder
		field  string
	}{
		{"negative equity", []Stakeholder{{Name: "Alex", Equity: -1}}, "equity[Alex]"},
		{"equity above 100", []Stakeholder{{Name: "Alex", Equity: 100.5}}, "equity[Alex]"},
		{"NaN equity", []Stakeholder{{Name: "Alex", Equity: math.NaN()}}, "equity[Alex]"},
		{"blank name", []Stakeholder{{Name: "  ", Equity: 5}}, "stakeholder"},
		{"duplicate name", []Stakeholder{{Name: "Alex", Equity: 5}, {Name: "Alex", Equity: 5}}, "stakeholder"},
		{"reserved name", []Stakeholder{{Name: "esop", Equity: 5}}, "stakeholder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NormalizeCapTable(tt.roster)
			assert.Nil(t, table)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.NotEmpty(t, vErr.Constraint)
		})
	}
}

func TestNormalizeCapTable_DoesNotAliasRoster(t *testing.T) {
	roster := []Stakeholder{{Name: "Alex", Equity: 50}}
	table, err := NormalizeCapTable(roster)
	require.NoError(t, err)

	roster[0].Equity = 10
	got, _ := table.Get("Alex")
	assert.Equal(t, 50.0, got)
}

func TestFromMap_KeepsRequestedOrder(t *testing.T) {
	table := FromMap(map[string]float64{"Zed": 10, "Alex": 40, "ESOP": 50}, []string{"ESOP", "Zed"})
	assert.Equal(t, []string{"ESOP", "Zed", "Alex"}, table.Stakeholders())
}
