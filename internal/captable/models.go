package captable

import (
	"math"
	"sort"
)

const (
	// ESOPKey identifies the synthesized unallocated pool.
	ESOPKey = "ESOP"
	// NewInvestorKey identifies the stake issued by a simulated round.
	NewInvestorKey = "New Investor"

	// FullOwnership is the total every cap table must add up to.
	FullOwnership = 100.0
	// SumTolerance is how far an input table may drift from FullOwnership.
	SumTolerance = 0.01
)

// Stakeholder is a named holder with a declared equity percentage
type Stakeholder struct {
	Name   string  `json:"name"`
	Equity float64 `json:"equity"`
}

// Entry is a single line of a cap table
type Entry struct {
	Stakeholder string  `json:"stakeholder"`
	Percentage  float64 `json:"percentage"`
}

// CapTable is an ordered mapping from stakeholder to ownership percentage.
type CapTable []Entry

// Get returns the percentage held by name.
func (t CapTable) Get(name string) (float64, bool) {
	for _, e := range t {
		if e.Stakeholder == name {
			return e.Percentage, true
		}
	}
	return 0, false
}

// Total sums every entry.
func (t CapTable) Total() float64 {
	var total float64
	for _, e := range t {
		total += e.Percentage
	}
	return total
}

// Map returns the table as a plain map, dropping order.
func (t CapTable) Map() map[string]float64 {
	m := make(map[string]float64, len(t))
	for _, e := range t {
		m[e.Stakeholder] = e.Percentage
	}
	return m
}

// Stakeholders returns the identifiers in table order.
func (t CapTable) Stakeholders() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Stakeholder
	}
	return names
}

// IsOverAllocated reports whether the ESOP pool went negative.
func (t CapTable) IsOverAllocated() bool {
	pool, ok := t.Get(ESOPKey)
	return ok && pool < 0
}

// Clone returns an independently owned copy.
func (t CapTable) Clone() CapTable {
	if t == nil {
		return nil
	}
	out := make(CapTable, len(t))
	copy(out, t)
	return out
}

// FromMap builds a table from m using the given key order. Keys missing from
// order are appended alphabetically.
func FromMap(m map[string]float64, order []string) CapTable {
	out := make(CapTable, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, name := range order {
		if p, ok := m[name]; ok && !seen[name] {
			out = append(out, Entry{Stakeholder: name, Percentage: p})
			seen[name] = true
		}
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, Entry{Stakeholder: name, Percentage: m[name]})
	}
	return out
}

// FundingRoundInput describes the terms of a priced round
type FundingRoundInput struct {
	Investment        float64 `json:"investment"`
	PreMoneyValuation float64 `json:"pre_money_valuation"`
	Label             string  `json:"label"`
}

// StakeChange shows how one holder's percentage moved through a round
type StakeChange struct {
	Stakeholder string  `json:"stakeholder"`
	Before      float64 `json:"before"`
	After       float64 `json:"after"`
	Delta       float64 `json:"delta"`
}

// DilutionResult is the outcome of a simulated round
type DilutionResult struct {
	Label                 string        `json:"label,omitempty"`
	Investment            float64       `json:"investment"`
	PreMoneyValuation     float64       `json:"pre_money_valuation"`
	PostMoneyValuation    float64       `json:"post_money_valuation"`
	NewInvestorPercentage float64       `json:"new_investor_percentage"`
	CapTable              CapTable      `json:"cap_table"`
	Changes               []StakeChange `json:"changes"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
