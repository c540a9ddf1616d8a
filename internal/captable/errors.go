package captable

import "fmt"

// ValidationError reports malformed or out-of-range stakeholder data
type ValidationError struct {
	Field      string      `json:"field"`
	Value      interface{} `json:"value"`
	Constraint string      `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Constraint)
}

// InvalidInputError reports unusable round terms or an unbalanced cap table
type InvalidInputError struct {
	Field      string  `json:"field"`
	Value      float64 `json:"value"`
	Constraint string  `json:"constraint"`
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Constraint)
}
