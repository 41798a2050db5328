package types

import "fmt"

// Precision for dot-products and convolutions on accelerator backends, as used by the operands of
// XLA's PrecisionConfig.
//
// It controls the tradeoff between speed and accuracy. The values match xla.PrecisionConfig.Precision,
// minus the deprecated PACKED_NIBBLE.
type Precision int

//go:generate go tool enumer -type=Precision -trimprefix=Precision -output=gen_precision_enumer.go precision.go

const (
	// PrecisionDefault is the fastest calculation, but the least accurate approximation to the original number.
	PrecisionDefault Precision = iota

	// PrecisionHigh is slower but more accurate than the default.
	PrecisionHigh

	// PrecisionHighest uses as many algorithm passes as necessary to approximate float32 arithmetic.
	PrecisionHighest
)

// ToStableHLO returns the StableHLO name of the precision, e.g. "HIGHEST".
func (p Precision) ToStableHLO() string {
	switch p {
	case PrecisionDefault:
		return "DEFAULT"
	case PrecisionHigh:
		return "HIGH"
	case PrecisionHighest:
		return "HIGHEST"
	default:
		return fmt.Sprintf("UNKNOWN_PRECISION<%d>", int(p))
	}
}
