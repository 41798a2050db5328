// Package conv holds helpers to prepare the arguments of convolutions: normalizing per-axis
// strides and dilations, and building the dimension numbers for the usual image layouts.
package conv

import (
	"slices"

	"github.com/gomlx/xladims/internal/utils"
	"github.com/gomlx/xladims/pkg/types"
	"github.com/pkg/errors"
)

// ErrInvalidArgument is returned (wrapped) when a sequence doesn't have any of the accepted lengths.
var ErrInvalidArgument = errors.New("invalid argument")

// ScalarSequence returns value repeated for each of the numSpatialDims spatial axes.
func ScalarSequence(value, numSpatialDims int) []int {
	return slices.Repeat([]int{value}, max(numSpatialDims, 0))
}

// Sequence normalizes per-axis strides or dilations to one value per spatial axis.
//
// The values can be given as:
//
//   - One value: it is repeated for every spatial axis, same as ScalarSequence.
//   - One value per spatial axis: returned as is (a copy).
//   - One value per axis of the full operand (numSpatialDims+2), including the batch and channels axes:
//     the two non-spatial entries are stripped. If channelAxis is 1 the layout is assumed to be
//     channels-first ([batch, channels, spatial...]), otherwise channels-last ([batch, spatial..., channels]).
//
// Any other length returns an error wrapping ErrInvalidArgument.
func Sequence(values []int, numSpatialDims, channelAxis int) ([]int, error) {
	switch len(values) {
	case 1:
		return ScalarSequence(values[0], numSpatialDims), nil
	case numSpatialDims:
		return slices.Clone(values), nil
	case numSpatialDims + 2:
		if channelAxis == 1 {
			return slices.Clone(values[2:]), nil
		}
		return slices.Clone(values[1 : len(values)-1]), nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument,
			"unexpected sequence=%v for a convolution with %d spatial axes: it must have length 1, %d or %d",
			values, numSpatialDims, numSpatialDims, numSpatialDims+2)
	}
}

// DimensionNumbers creates the ConvDimensionNumbers for a convolution with numSpatialDims spatial axes.
//
// Images (input and output) are laid out as [batch, spatial..., channels] if channelsLast, or
// [batch, channels, spatial...] otherwise.
// Kernels are laid out as [spatial..., inputChannels, outputChannels], or
// [spatial..., outputChannels, inputChannels] if transpose is set (used for transposed convolutions).
func DimensionNumbers(numSpatialDims int, channelsLast, transpose bool) types.ConvDimensionNumbers {
	rank := numSpatialDims + 2
	var imageSpec []int
	if channelsLast {
		imageSpec = append([]int{0, rank - 1}, utils.Iota(1, numSpatialDims)...)
	} else {
		imageSpec = append([]int{0, 1}, utils.Iota(2, numSpatialDims)...)
	}

	var kernelSpec []int
	if transpose {
		kernelSpec = []int{rank - 2, rank - 1}
	} else {
		kernelSpec = []int{rank - 1, rank - 2}
	}
	kernelSpec = append(kernelSpec, utils.Iota(0, numSpatialDims)...)

	return types.ConvDimensionNumbers{
		LHSSpec: imageSpec,
		RHSSpec: kernelSpec,
		OutSpec: slices.Clone(imageSpec),
	}
}
