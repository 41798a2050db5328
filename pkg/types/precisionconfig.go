package types

import (
	"slices"
	"strings"
)

// PrecisionConfig is the precision requested for the operands of a dot-product or convolution.
//
// A nil *PrecisionConfig means no precision was requested, and the backend default applies.
// Otherwise, it holds either one precision shared by all operands, or one precision per operand.
type PrecisionConfig struct {
	// Shared is used for every operand when PerOperand is empty.
	Shared Precision

	// PerOperand holds one precision per operand, in operand order. It has two or more values,
	// or it is empty.
	PerOperand []Precision
}

// NewPrecisionConfig creates the config from the list of per-operand precisions:
//
//   - No precisions: returns nil.
//   - One precision: it is shared by all operands.
//   - Two or more: one per operand, in the given order.
func NewPrecisionConfig(precisions ...Precision) *PrecisionConfig {
	switch len(precisions) {
	case 0:
		return nil
	case 1:
		return &PrecisionConfig{Shared: precisions[0]}
	default:
		return &PrecisionConfig{PerOperand: slices.Clone(precisions)}
	}
}

// IsPerOperand returns whether there is a separate precision for each operand.
func (c *PrecisionConfig) IsPerOperand() bool {
	return c != nil && len(c.PerOperand) > 0
}

// Operand returns the precision for the i-th operand.
// It returns PrecisionDefault if c is nil, or if i is out of range of the per-operand list.
func (c *PrecisionConfig) Operand(i int) Precision {
	if c == nil {
		return PrecisionDefault
	}
	if !c.IsPerOperand() {
		return c.Shared
	}
	if i < 0 || i >= len(c.PerOperand) {
		return PrecisionDefault
	}
	return c.PerOperand[i]
}

// ForOperands returns the precision for each of numOperands operands.
func (c *PrecisionConfig) ForOperands(numOperands int) []Precision {
	result := make([]Precision, numOperands)
	for i := range result {
		result[i] = c.Operand(i)
	}
	return result
}

// Values returns the precisions as they were given: nil, one shared value, or one per operand.
// It's the inverse of NewPrecisionConfig.
func (c *PrecisionConfig) Values() []Precision {
	if c == nil {
		return nil
	}
	if c.IsPerOperand() {
		return slices.Clone(c.PerOperand)
	}
	return []Precision{c.Shared}
}

// Equal returns whether both configs request the same precisions. Two nil configs are equal.
func (c *PrecisionConfig) Equal(other *PrecisionConfig) bool {
	if c == nil || other == nil {
		return c == other
	}
	return slices.Equal(c.Values(), other.Values())
}

// String implements fmt.Stringer: "None", "HIGHEST" or "(HIGH, DEFAULT)".
func (c *PrecisionConfig) String() string {
	if c == nil {
		return "None"
	}
	if !c.IsPerOperand() {
		return c.Shared.ToStableHLO()
	}
	parts := make([]string, len(c.PerOperand))
	for i, p := range c.PerOperand {
		parts[i] = p.ToStableHLO()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
