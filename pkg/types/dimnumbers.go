package types

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/xladims/internal/utils"
	"github.com/pkg/errors"
)

// ConvDimensionNumbers assigns roles to the axes of the input (lhs), kernel (rhs) and output of a convolution.
//
// Each spec lists axes of the corresponding operand in a fixed order of roles:
//
//   - LHSSpec: input batch axis, input feature (channels) axis, then the input spatial axes.
//   - RHSSpec: kernel output feature axis, kernel input feature axis, then the kernel spatial axes.
//   - OutSpec: output batch axis, output feature axis, then the output spatial axes.
//
// So for a 2D convolution with "NHWC" images and "HWIO" kernels, one has
// LHSSpec=(0, 3, 1, 2), RHSSpec=(3, 2, 0, 1) and OutSpec=(0, 3, 1, 2).
type ConvDimensionNumbers struct {
	LHSSpec, RHSSpec, OutSpec []int
}

// NumSpatialDims returns the number of spatial axes of the convolution.
func (dn ConvDimensionNumbers) NumSpatialDims() int {
	return max(len(dn.LHSSpec)-2, 0)
}

// InputBatchAxis returns the batch axis of the input.
func (dn ConvDimensionNumbers) InputBatchAxis() int { return dn.LHSSpec[0] }

// InputFeatureAxis returns the channels axis of the input.
func (dn ConvDimensionNumbers) InputFeatureAxis() int { return dn.LHSSpec[1] }

// InputSpatialAxes returns the spatial axes of the input.
func (dn ConvDimensionNumbers) InputSpatialAxes() []int { return dn.LHSSpec[2:] }

// KernelOutputFeatureAxis returns the axis of the kernel that maps to the output channels.
func (dn ConvDimensionNumbers) KernelOutputFeatureAxis() int { return dn.RHSSpec[0] }

// KernelInputFeatureAxis returns the axis of the kernel that maps to the input channels.
func (dn ConvDimensionNumbers) KernelInputFeatureAxis() int { return dn.RHSSpec[1] }

// KernelSpatialAxes returns the spatial axes of the kernel.
func (dn ConvDimensionNumbers) KernelSpatialAxes() []int { return dn.RHSSpec[2:] }

// OutputBatchAxis returns the batch axis of the output.
func (dn ConvDimensionNumbers) OutputBatchAxis() int { return dn.OutSpec[0] }

// OutputFeatureAxis returns the channels axis of the output.
func (dn ConvDimensionNumbers) OutputFeatureAxis() int { return dn.OutSpec[1] }

// OutputSpatialAxes returns the spatial axes of the output.
func (dn ConvDimensionNumbers) OutputSpatialAxes() []int { return dn.OutSpec[2:] }

// Validate checks that the three specs have the same rank (at least 2) and that
// each of them is a permutation of the axes 0...rank-1.
func (dn ConvDimensionNumbers) Validate() error {
	rank := len(dn.LHSSpec)
	if rank < 2 {
		return errors.Errorf("convolution dimension numbers require at least the batch and feature axes, got lhs_spec=%v", dn.LHSSpec)
	}
	if len(dn.RHSSpec) != rank || len(dn.OutSpec) != rank {
		return errors.Errorf("convolution dimension numbers must have the same rank for all operands, got lhs_spec=%v, rhs_spec=%v, out_spec=%v",
			dn.LHSSpec, dn.RHSSpec, dn.OutSpec)
	}
	for _, spec := range []struct {
		name string
		axes []int
	}{{"lhs_spec", dn.LHSSpec}, {"rhs_spec", dn.RHSSpec}, {"out_spec", dn.OutSpec}} {
		if !utils.IsPermutation(spec.axes, rank) {
			return errors.Errorf("convolution %s=%v is not a permutation of the axes of a rank-%d operand",
				spec.name, spec.axes, rank)
		}
	}
	return nil
}

// Equal returns whether both dimension numbers are the same.
func (dn ConvDimensionNumbers) Equal(other ConvDimensionNumbers) bool {
	return slices.Equal(dn.LHSSpec, other.LHSSpec) &&
		slices.Equal(dn.RHSSpec, other.RHSSpec) &&
		slices.Equal(dn.OutSpec, other.OutSpec)
}

// String implements fmt.Stringer.
func (dn ConvDimensionNumbers) String() string {
	return fmt.Sprintf("ConvDimensionNumbers(lhs_spec=%s, rhs_spec=%s, out_spec=%s)",
		TupleString(dn.LHSSpec), TupleString(dn.RHSSpec), TupleString(dn.OutSpec))
}

// DotDimensionNumbers defines the contracting and batch axes of a generalized dot-product ("DotGeneral").
type DotDimensionNumbers struct {
	LHSContracting, RHSContracting []int
	LHSBatch, RHSBatch             []int
}

// Contracting returns the (lhs, rhs) contracting axes.
func (dn DotDimensionNumbers) Contracting() (lhs, rhs []int) {
	return dn.LHSContracting, dn.RHSContracting
}

// Batch returns the (lhs, rhs) batch axes.
func (dn DotDimensionNumbers) Batch() (lhs, rhs []int) {
	return dn.LHSBatch, dn.RHSBatch
}

// Validate checks that lhs and rhs list the same number of contracting and batch axes,
// and that no axis is negative or used twice in the same operand.
func (dn DotDimensionNumbers) Validate() error {
	if len(dn.LHSContracting) != len(dn.RHSContracting) {
		return errors.Errorf("dot dimension numbers must have the same number of contracting axes for lhs and rhs, got %v and %v",
			dn.LHSContracting, dn.RHSContracting)
	}
	if len(dn.LHSBatch) != len(dn.RHSBatch) {
		return errors.Errorf("dot dimension numbers must have the same number of batch axes for lhs and rhs, got %v and %v",
			dn.LHSBatch, dn.RHSBatch)
	}
	for _, side := range []struct {
		name               string
		contracting, batch []int
	}{{"lhs", dn.LHSContracting, dn.LHSBatch}, {"rhs", dn.RHSContracting, dn.RHSBatch}} {
		seen := utils.MakeSet[int](len(side.contracting) + len(side.batch))
		for _, axis := range slices.Concat(side.contracting, side.batch) {
			if axis < 0 {
				return errors.Errorf("dot dimension numbers for %s has negative axis %d", side.name, axis)
			}
			if seen.Has(axis) {
				return errors.Errorf("dot dimension numbers for %s uses axis %d more than once (contracting=%v, batch=%v)",
					side.name, axis, side.contracting, side.batch)
			}
			seen.Insert(axis)
		}
	}
	return nil
}

// String implements fmt.Stringer, formatted as ((lhs_contracting, rhs_contracting), (lhs_batch, rhs_batch)).
func (dn DotDimensionNumbers) String() string {
	return fmt.Sprintf("((%s, %s), (%s, %s))",
		TupleString(dn.LHSContracting), TupleString(dn.RHSContracting),
		TupleString(dn.LHSBatch), TupleString(dn.RHSBatch))
}

// GatherDimensionNumbers describes the axes of a Gather operation.
// See details in https://openxla.org/stablehlo/spec#gather.
type GatherDimensionNumbers struct {
	// OffsetDims are the output axes that hold the offset slices.
	OffsetDims []int

	// CollapsedSliceDims are the operand axes (with slice size 1) that are not included in the output.
	CollapsedSliceDims []int

	// StartIndexMap maps the values of the index vector to operand axes.
	StartIndexMap []int

	// IndexVectorDim is the axis of the start indices that holds the index vectors.
	IndexVectorDim int

	OperandBatchingDims, StartIndicesBatchingDims []int
}

// String implements fmt.Stringer.
func (dn GatherDimensionNumbers) String() string {
	return fmt.Sprintf("GatherDimensionNumbers(offset_dims=%s, collapsed_slice_dims=%s, start_index_map=%s, "+
		"operand_batching_dims=%s, start_indices_batching_dims=%s, index_vector_dim=%d)",
		TupleString(dn.OffsetDims), TupleString(dn.CollapsedSliceDims), TupleString(dn.StartIndexMap),
		TupleString(dn.OperandBatchingDims), TupleString(dn.StartIndicesBatchingDims), dn.IndexVectorDim)
}

// ScatterDimensionNumbers describes the axes of a Scatter operation.
// See details in https://openxla.org/stablehlo/spec#scatter.
type ScatterDimensionNumbers struct {
	// UpdateWindowDims are the axes of the updates that form the update window.
	UpdateWindowDims []int

	// InsertedWindowDims are operand axes that have no corresponding update window axis.
	InsertedWindowDims []int

	// ScatterDimsToOperandDims maps the values of the index vector to operand axes.
	ScatterDimsToOperandDims []int

	// IndexVectorDim is the axis of the scatter indices that holds the index vectors.
	IndexVectorDim int

	InputBatchingDims, ScatterIndicesBatchingDims []int
}

// String implements fmt.Stringer.
func (dn ScatterDimensionNumbers) String() string {
	return fmt.Sprintf("ScatterDimensionNumbers(update_window_dims=%s, inserted_window_dims=%s, "+
		"scatter_dims_to_operand_dims=%s, input_batching_dims=%s, scatter_indices_batching_dims=%s, index_vector_dim=%d)",
		TupleString(dn.UpdateWindowDims), TupleString(dn.InsertedWindowDims), TupleString(dn.ScatterDimsToOperandDims),
		TupleString(dn.InputBatchingDims), TupleString(dn.ScatterIndicesBatchingDims), dn.IndexVectorDim)
}

// TupleString formats the axes as a tuple: "(0, 3, 1, 2)", "(1,)" or "()".
func TupleString(axes []int) string {
	if len(axes) == 1 {
		return fmt.Sprintf("(%d,)", axes[0])
	}
	parts := make([]string, len(axes))
	for i, axis := range axes {
		parts[i] = fmt.Sprint(axis)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
