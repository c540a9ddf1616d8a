package captable

import "strings"

// NormalizeCapTable derives a complete cap table from a roster snapshot.
//
// Declared stakes keep roster order and an ESOP entry holding whatever is left
// of 100% is appended. When the roster claims more than 100% the pool is
// negative; callers use that to flag over-allocation.
func NormalizeCapTable(roster []Stakeholder) (CapTable, error) {
	table := make(CapTable, 0, len(roster)+1)
	seen := make(map[string]bool, len(roster))
	var allocated float64

	for i, s := range roster {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, &ValidationError{
				Field:      "stakeholder",
				Value:      i,
				Constraint: "identifier is required",
			}
		}
		if strings.EqualFold(name, ESOPKey) {
			return nil, &ValidationError{
				Field:      "stakeholder",
				Value:      name,
				Constraint: "identifier is reserved for the unallocated pool",
			}
		}
		if seen[name] {
			return nil, &ValidationError{
				Field:      "stakeholder",
				Value:      name,
				Constraint: "identifier must be unique",
			}
		}
		if !isFinite(s.Equity) || s.Equity < 0 || s.Equity > FullOwnership {
			return nil, &ValidationError{
				Field:      "equity[" + name + "]",
				Value:      s.Equity,
				Constraint: "must be between 0 and 100",
			}
		}

		seen[name] = true
		allocated += s.Equity
		table = append(table, Entry{Stakeholder: name, Percentage: s.Equity})
	}

	table = append(table, Entry{Stakeholder: ESOPKey, Percentage: FullOwnership - allocated})
	return table, nil
}
