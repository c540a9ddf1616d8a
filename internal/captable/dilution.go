package captable

import (
	"fmt"
	"math"
)

// SimulateDilution prices a new round against an existing cap table.
//
// Every existing stake is scaled by pre/post and the new investor receives
// investment/post. Steps run in a fixed order so repeated calls agree to the
// last bit.
func SimulateDilution(table CapTable, investment, preMoney float64) (*DilutionResult, error) {
	if !isFinite(investment) || investment <= 0 {
		return nil, &InvalidInputError{
			Field:      "investment",
			Value:      investment,
			Constraint: "must be greater than 0",
		}
	}
	if !isFinite(preMoney) || preMoney <= 0 {
		return nil, &InvalidInputError{
			Field:      "pre_money_valuation",
			Value:      preMoney,
			Constraint: "must be greater than 0",
		}
	}
	if len(table) == 0 {
		return nil, &InvalidInputError{
			Field:      "cap_table",
			Value:      0,
			Constraint: "must contain at least one stakeholder",
		}
	}
	total := table.Total()
	if !isFinite(total) || math.Abs(total-FullOwnership) > SumTolerance {
		return nil, &InvalidInputError{
			Field:      "cap_table",
			Value:      total,
			Constraint: fmt.Sprintf("percentages must sum to 100 (±%g)", SumTolerance),
		}
	}

	postMoney := preMoney + investment
	newInvestorPct := (investment / postMoney) * 100
	scale := preMoney / postMoney

	diluted := make(CapTable, 0, len(table)+1)
	changes := make([]StakeChange, 0, len(table)+1)
	investorIdx := -1
	for _, e := range table {
		after := e.Percentage * scale
		if e.Stakeholder == NewInvestorKey {
			investorIdx = len(diluted)
		}
		diluted = append(diluted, Entry{Stakeholder: e.Stakeholder, Percentage: after})
		changes = append(changes, StakeChange{
			Stakeholder: e.Stakeholder,
			Before:      e.Percentage,
			After:       after,
			Delta:       after - e.Percentage,
		})
	}

	// A prior "New Investor" line absorbs the fresh stake instead of being duplicated.
	if investorIdx >= 0 {
		diluted[investorIdx].Percentage += newInvestorPct
		changes[investorIdx].After = diluted[investorIdx].Percentage
		changes[investorIdx].Delta = changes[investorIdx].After - changes[investorIdx].Before
	} else {
		diluted = append(diluted, Entry{Stakeholder: NewInvestorKey, Percentage: newInvestorPct})
		changes = append(changes, StakeChange{
			Stakeholder: NewInvestorKey,
			After:       newInvestorPct,
			Delta:       newInvestorPct,
		})
	}

	return &DilutionResult{
		Investment:            investment,
		PreMoneyValuation:     preMoney,
		PostMoneyValuation:    postMoney,
		NewInvestorPercentage: newInvestorPct,
		CapTable:              diluted,
		Changes:               changes,
	}, nil
}

// SimulateRound is SimulateDilution driven by a FundingRoundInput.
func SimulateRound(table CapTable, in FundingRoundInput) (*DilutionResult, error) {
	res, err := SimulateDilution(table, in.Investment, in.PreMoneyValuation)
	if err != nil {
		return nil, err
	}
	res.Label = in.Label
	return res, nil
}
