// Package stablehlo renders dimension numbers and precision configurations as StableHLO attributes,
// in the text format used by StableHLO programs compiled by PJRT.
//
// See the StableHLO documentation and specifications in https://openxla.org/stablehlo/spec
package stablehlo

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/xladims/pkg/types"
	"github.com/pkg/errors"
)

// ConvDimensionNumbersToStableHLO returns the StableHLO convolution dimension numbers, e.g.:
// "#stablehlo.conv<[b, 0, 1, f]x[0, 1, i, o]->[b, 0, 1, f]>".
func ConvDimensionNumbersToStableHLO(dn types.ConvDimensionNumbers) (string, error) {
	if err := dn.Validate(); err != nil {
		return "", err
	}
	return string(getConvAxesConfig(dn)), nil
}

// getConvAxesConfig generates the StableHLO convolution dimension numbers string. dn must be valid.
func getConvAxesConfig(dn types.ConvDimensionNumbers) literalStr {
	rank := len(dn.LHSSpec)
	setSpatialAxes := func(spatialAxes []int, def []string) {
		for i, axis := range spatialAxes {
			def[axis] = strconv.Itoa(i)
		}
	}

	inputDef := make([]string, rank)
	inputDef[dn.InputBatchAxis()] = "b"
	inputDef[dn.InputFeatureAxis()] = "f"
	setSpatialAxes(dn.InputSpatialAxes(), inputDef)

	kernelDef := make([]string, rank)
	kernelDef[dn.KernelInputFeatureAxis()] = "i"
	kernelDef[dn.KernelOutputFeatureAxis()] = "o"
	setSpatialAxes(dn.KernelSpatialAxes(), kernelDef)

	outputDef := make([]string, rank)
	outputDef[dn.OutputBatchAxis()] = "b"
	outputDef[dn.OutputFeatureAxis()] = "f"
	setSpatialAxes(dn.OutputSpatialAxes(), outputDef)

	return literalStrF("#stablehlo.conv<[%s]x[%s]->[%s]>",
		strings.Join(inputDef, ", "),
		strings.Join(kernelDef, ", "),
		strings.Join(outputDef, ", "))
}

// DotDimensionNumbersToStableHLO returns the StableHLO "#stablehlo.dot<...>" dimension numbers.
func DotDimensionNumbersToStableHLO(dn types.DotDimensionNumbers) (string, error) {
	if err := dn.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"#stablehlo.dot<\n"+
			"\tlhs_batching_dimensions = %s,\n"+
			"\trhs_batching_dimensions = %s,\n"+
			"\tlhs_contracting_dimensions = %s,\n"+
			"\trhs_contracting_dimensions = %s\n>",
		intSliceToStableHLO(dn.LHSBatch),
		intSliceToStableHLO(dn.RHSBatch),
		intSliceToStableHLO(dn.LHSContracting),
		intSliceToStableHLO(dn.RHSContracting)), nil
}

// GatherDimensionNumbersToStableHLO returns the StableHLO "#stablehlo.gather<...>" dimension numbers.
func GatherDimensionNumbersToStableHLO(dn types.GatherDimensionNumbers) string {
	return fmt.Sprintf(
		"#stablehlo.gather<\n"+
			"\toffset_dims = %s,\n"+
			"\tcollapsed_slice_dims = %s,\n"+
			"\toperand_batching_dims = %s,\n"+
			"\tstart_indices_batching_dims = %s,\n"+
			"\tstart_index_map = %s,\n"+
			"\tindex_vector_dim = %d>",
		intSliceToStableHLO(dn.OffsetDims),
		intSliceToStableHLO(dn.CollapsedSliceDims),
		intSliceToStableHLO(dn.OperandBatchingDims),
		intSliceToStableHLO(dn.StartIndicesBatchingDims),
		intSliceToStableHLO(dn.StartIndexMap),
		dn.IndexVectorDim)
}

// ScatterDimensionNumbersToStableHLO returns the StableHLO "#stablehlo.scatter<...>" dimension numbers.
func ScatterDimensionNumbersToStableHLO(dn types.ScatterDimensionNumbers) string {
	return fmt.Sprintf(
		"#stablehlo.scatter<\n"+
			"\tupdate_window_dims = %s,\n"+
			"\tinserted_window_dims = %s,\n"+
			"\tinput_batching_dims = %s,\n"+
			"\tscatter_indices_batching_dims = %s,\n"+
			"\tscatter_dims_to_operand_dims = %s,\n"+
			"\tindex_vector_dim = %d>",
		intSliceToStableHLO(dn.UpdateWindowDims),
		intSliceToStableHLO(dn.InsertedWindowDims),
		intSliceToStableHLO(dn.InputBatchingDims),
		intSliceToStableHLO(dn.ScatterIndicesBatchingDims),
		intSliceToStableHLO(dn.ScatterDimsToOperandDims),
		dn.IndexVectorDim)
}

// PrecisionConfigToStableHLO returns the precision config for an operation with numOperands operands,
// e.g.: "[#stablehlo<precision DEFAULT>, #stablehlo<precision HIGH>]".
//
// A nil config renders the default precision for every operand.
func PrecisionConfigToStableHLO(config *types.PrecisionConfig, numOperands int) (string, error) {
	if config.IsPerOperand() && len(config.PerOperand) != numOperands {
		return "", errors.Errorf("precision config %s has %d values, but the operation takes %d operands",
			config, len(config.PerOperand), numOperands)
	}
	precisions := config.ForOperands(numOperands)
	parts := make([]string, len(precisions))
	for i, p := range precisions {
		if !p.IsAPrecision() {
			return "", errors.Errorf("invalid precision %s for operand #%d", p, i)
		}
		parts[i] = fmt.Sprintf("#stablehlo<precision %s>", p.ToStableHLO())
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// DotGeneralAttributes returns the attributes of a "stablehlo.dot_general" operation.
func DotGeneralAttributes(dn types.DotDimensionNumbers, precision *types.PrecisionConfig) (Attributes, error) {
	dotDimensionNumbers, err := DotDimensionNumbersToStableHLO(dn)
	if err != nil {
		return nil, err
	}
	precisionConfig, err := PrecisionConfigToStableHLO(precision, 2)
	if err != nil {
		return nil, errors.WithMessage(err, "in DotGeneral precision_config")
	}
	return Attributes{
		"dot_dimension_numbers": literalStr(dotDimensionNumbers),
		"precision_config":      literalStr(precisionConfig),
	}, nil
}

// ConvolutionAttributes returns the attributes of a "stablehlo.convolution" operation.
//
// The parameters strides, paddings, inputDilations and kernelDilations must have one entry per spatial axis,
// or be left empty, in which case the defaults (zeros for paddings and ones for the others) are used.
// See conv.Sequence to normalize strides and dilations given in other forms.
func ConvolutionAttributes(dn types.ConvDimensionNumbers,
	strides []int, paddings [][2]int, inputDilations, kernelDilations []int,
	channelGroupCount, batchGroupCount int,
	precision *types.PrecisionConfig) (Attributes, error) {
	if err := dn.Validate(); err != nil {
		return nil, err
	}
	rankSpatial := dn.NumSpatialDims()

	// Set default for any missing slices.
	windowReversal := make([]bool, rankSpatial)
	if len(paddings) == 0 {
		paddings = make([][2]int, rankSpatial)
	} else if len(paddings) != rankSpatial {
		return nil, errors.Errorf("Convolution requires one padding per spatial axis (%d), got %v", rankSpatial, paddings)
	}
	for _, s := range []struct {
		name   string
		values *[]int
	}{{"strides", &strides}, {"input dilations", &inputDilations}, {"kernel dilations", &kernelDilations}} {
		if len(*s.values) == 0 {
			*s.values = slices.Repeat([]int{1}, rankSpatial)
			continue
		}
		if len(*s.values) != rankSpatial {
			return nil, errors.Errorf("Convolution requires one of %s per spatial axis (%d), got %v",
				s.name, rankSpatial, *s.values)
		}
		for _, v := range *s.values {
			if v < 1 {
				return nil, errors.Errorf("Convolution %s must be >= 1, got %v", s.name, *s.values)
			}
		}
	}
	if channelGroupCount < 1 || batchGroupCount < 1 {
		return nil, errors.Errorf("Convolution group counts must be >= 1, got channelGroupCount=%d and batchGroupCount=%d",
			channelGroupCount, batchGroupCount)
	}

	precisionConfig, err := PrecisionConfigToStableHLO(precision, 2)
	if err != nil {
		return nil, errors.WithMessage(err, "in Convolution precision_config")
	}
	return Attributes{
		"window_strides":      intSliceToArrayI64StableHLO(strides),
		"padding":             paddingsToStableHLO(paddings),
		"lhs_dilation":        intSliceToArrayI64StableHLO(inputDilations),
		"rhs_dilation":        intSliceToArrayI64StableHLO(kernelDilations),
		"window_reversal":     boolSliceToArrayI1StableHLO(windowReversal),
		"dimension_numbers":   getConvAxesConfig(dn),
		"feature_group_count": int64(channelGroupCount),
		"batch_group_count":   int64(batchGroupCount),
		"precision_config":    literalStr(precisionConfig),
	}, nil
}

// GatherAttributes returns the attributes of a "stablehlo.gather" operation.
// There must be one slice size per operand axis.
func GatherAttributes(dn types.GatherDimensionNumbers, sliceSizes []int, indicesAreSorted bool) Attributes {
	return Attributes{
		"dimension_numbers":  literalStr(GatherDimensionNumbersToStableHLO(dn)),
		"slice_sizes":        intSliceToArrayI64StableHLO(sliceSizes),
		"indices_are_sorted": indicesAreSorted,
	}
}

// ScatterAttributes returns the attributes of a "stablehlo.scatter" operation.
func ScatterAttributes(dn types.ScatterDimensionNumbers, indicesAreSorted, uniqueIndices bool) Attributes {
	return Attributes{
		"scatter_dimension_numbers": literalStr(ScatterDimensionNumbersToStableHLO(dn)),
		"indices_are_sorted":        indicesAreSorted,
		"unique_indices":            uniqueIndices,
	}
}
