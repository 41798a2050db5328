// Package xlaproto converts XLA's serialized dimension-numbers and precision-config protocol buffers
// (from xla_data.proto) to the parameter types in pkg/types, and back.
//
// All conversions are stateless and safe for concurrent use.
package xlaproto

import (
	"fmt"

	"github.com/gomlx/xladims/internal/protos/xladata"
	"github.com/gomlx/xladims/pkg/types"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/reflect/protoreflect"
	"k8s.io/klog/v2"
)

// ConvDimensionNumbersFromProto converts a serialized xla.ConvolutionDimensionNumbers.
//
// The specs are assembled as:
//
//   - LHSSpec: (input_batch_dimension, input_feature_dimension, input_spatial_dimensions...)
//   - RHSSpec: (kernel_output_feature_dimension, kernel_input_feature_dimension, kernel_spatial_dimensions...)
//   - OutSpec: (output_batch_dimension, output_feature_dimension, output_spatial_dimensions...)
func ConvDimensionNumbersFromProto(data []byte) (types.ConvDimensionNumbers, error) {
	msg, err := xladata.Unmarshal(xladata.ConvolutionDimensionNumbers, data)
	if err != nil {
		return types.ConvDimensionNumbers{}, err
	}
	dn := types.ConvDimensionNumbers{
		LHSSpec: append([]int{
			xladata.Int(msg, "input_batch_dimension"),
			xladata.Int(msg, "input_feature_dimension")},
			xladata.Ints(msg, "input_spatial_dimensions")...),
		RHSSpec: append([]int{
			xladata.Int(msg, "kernel_output_feature_dimension"),
			xladata.Int(msg, "kernel_input_feature_dimension")},
			xladata.Ints(msg, "kernel_spatial_dimensions")...),
		OutSpec: append([]int{
			xladata.Int(msg, "output_batch_dimension"),
			xladata.Int(msg, "output_feature_dimension")},
			xladata.Ints(msg, "output_spatial_dimensions")...),
	}
	klog.V(2).Infof("xlaproto: converted %s", dn)
	return dn, nil
}

// ConvDimensionNumbersToProto serializes the dimension numbers as an xla.ConvolutionDimensionNumbers.
// It returns an error if the dimension numbers are not valid.
func ConvDimensionNumbersToProto(dn types.ConvDimensionNumbers) ([]byte, error) {
	if err := dn.Validate(); err != nil {
		return nil, errors.WithMessage(err, "cannot serialize convolution dimension numbers")
	}
	msg := xladata.New(xladata.ConvolutionDimensionNumbers)
	xladata.SetInt(msg, "input_batch_dimension", dn.InputBatchAxis())
	xladata.SetInt(msg, "input_feature_dimension", dn.InputFeatureAxis())
	xladata.SetInts(msg, "input_spatial_dimensions", dn.InputSpatialAxes())
	xladata.SetInt(msg, "kernel_output_feature_dimension", dn.KernelOutputFeatureAxis())
	xladata.SetInt(msg, "kernel_input_feature_dimension", dn.KernelInputFeatureAxis())
	xladata.SetInts(msg, "kernel_spatial_dimensions", dn.KernelSpatialAxes())
	xladata.SetInt(msg, "output_batch_dimension", dn.OutputBatchAxis())
	xladata.SetInt(msg, "output_feature_dimension", dn.OutputFeatureAxis())
	xladata.SetInts(msg, "output_spatial_dimensions", dn.OutputSpatialAxes())
	return xladata.Marshal(msg)
}

// DotDimensionNumbersFromProto converts a serialized xla.DotDimensionNumbers.
func DotDimensionNumbersFromProto(data []byte) (types.DotDimensionNumbers, error) {
	msg, err := xladata.Unmarshal(xladata.DotDimensionNumbers, data)
	if err != nil {
		return types.DotDimensionNumbers{}, err
	}
	dn := types.DotDimensionNumbers{
		LHSContracting: xladata.Ints(msg, "lhs_contracting_dimensions"),
		RHSContracting: xladata.Ints(msg, "rhs_contracting_dimensions"),
		LHSBatch:       xladata.Ints(msg, "lhs_batch_dimensions"),
		RHSBatch:       xladata.Ints(msg, "rhs_batch_dimensions"),
	}
	klog.V(2).Infof("xlaproto: converted dot dimension numbers %s", dn)
	return dn, nil
}

// DotDimensionNumbersToProto serializes the dimension numbers as an xla.DotDimensionNumbers.
func DotDimensionNumbersToProto(dn types.DotDimensionNumbers) ([]byte, error) {
	msg := xladata.New(xladata.DotDimensionNumbers)
	xladata.SetInts(msg, "lhs_contracting_dimensions", dn.LHSContracting)
	xladata.SetInts(msg, "rhs_contracting_dimensions", dn.RHSContracting)
	xladata.SetInts(msg, "lhs_batch_dimensions", dn.LHSBatch)
	xladata.SetInts(msg, "rhs_batch_dimensions", dn.RHSBatch)
	return xladata.Marshal(msg)
}

// GatherDimensionNumbersFromProto converts a serialized xla.GatherDimensionNumbers.
func GatherDimensionNumbersFromProto(data []byte) (types.GatherDimensionNumbers, error) {
	msg, err := xladata.Unmarshal(xladata.GatherDimensionNumbers, data)
	if err != nil {
		return types.GatherDimensionNumbers{}, err
	}
	dn := types.GatherDimensionNumbers{
		OffsetDims:               xladata.Ints(msg, "offset_dims"),
		CollapsedSliceDims:       xladata.Ints(msg, "collapsed_slice_dims"),
		StartIndexMap:            xladata.Ints(msg, "start_index_map"),
		IndexVectorDim:           xladata.Int(msg, "index_vector_dim"),
		OperandBatchingDims:      xladata.Ints(msg, "operand_batching_dims"),
		StartIndicesBatchingDims: xladata.Ints(msg, "start_indices_batching_dims"),
	}
	klog.V(2).Infof("xlaproto: converted %s", dn)
	return dn, nil
}

// GatherDimensionNumbersToProto serializes the dimension numbers as an xla.GatherDimensionNumbers.
func GatherDimensionNumbersToProto(dn types.GatherDimensionNumbers) ([]byte, error) {
	msg := xladata.New(xladata.GatherDimensionNumbers)
	xladata.SetInts(msg, "offset_dims", dn.OffsetDims)
	xladata.SetInts(msg, "collapsed_slice_dims", dn.CollapsedSliceDims)
	xladata.SetInts(msg, "start_index_map", dn.StartIndexMap)
	xladata.SetInt(msg, "index_vector_dim", dn.IndexVectorDim)
	xladata.SetInts(msg, "operand_batching_dims", dn.OperandBatchingDims)
	xladata.SetInts(msg, "start_indices_batching_dims", dn.StartIndicesBatchingDims)
	return xladata.Marshal(msg)
}

// ScatterDimensionNumbersFromProto converts a serialized xla.ScatterDimensionNumbers.
func ScatterDimensionNumbersFromProto(data []byte) (types.ScatterDimensionNumbers, error) {
	msg, err := xladata.Unmarshal(xladata.ScatterDimensionNumbers, data)
	if err != nil {
		return types.ScatterDimensionNumbers{}, err
	}
	dn := types.ScatterDimensionNumbers{
		UpdateWindowDims:           xladata.Ints(msg, "update_window_dims"),
		InsertedWindowDims:         xladata.Ints(msg, "inserted_window_dims"),
		ScatterDimsToOperandDims:   xladata.Ints(msg, "scatter_dims_to_operand_dims"),
		IndexVectorDim:             xladata.Int(msg, "index_vector_dim"),
		InputBatchingDims:          xladata.Ints(msg, "input_batching_dims"),
		ScatterIndicesBatchingDims: xladata.Ints(msg, "scatter_indices_batching_dims"),
	}
	klog.V(2).Infof("xlaproto: converted %s", dn)
	return dn, nil
}

// ScatterDimensionNumbersToProto serializes the dimension numbers as an xla.ScatterDimensionNumbers.
func ScatterDimensionNumbersToProto(dn types.ScatterDimensionNumbers) ([]byte, error) {
	msg := xladata.New(xladata.ScatterDimensionNumbers)
	xladata.SetInts(msg, "update_window_dims", dn.UpdateWindowDims)
	xladata.SetInts(msg, "inserted_window_dims", dn.InsertedWindowDims)
	xladata.SetInts(msg, "scatter_dims_to_operand_dims", dn.ScatterDimsToOperandDims)
	xladata.SetInt(msg, "index_vector_dim", dn.IndexVectorDim)
	xladata.SetInts(msg, "input_batching_dims", dn.InputBatchingDims)
	xladata.SetInts(msg, "scatter_indices_batching_dims", dn.ScatterIndicesBatchingDims)
	return xladata.Marshal(msg)
}

// PrecisionConfigFromProto converts a serialized xla.PrecisionConfig.
//
// It returns nil if no operand precision is set, a shared precision if there is exactly one,
// or one precision per operand (in order) if there are more.
//
// The algorithm field is ignored. PACKED_NIBBLE (deprecated) or unknown precisions return an error.
func PrecisionConfigFromProto(data []byte) (*types.PrecisionConfig, error) {
	msg, err := xladata.Unmarshal(xladata.PrecisionConfig, data)
	if err != nil {
		return nil, err
	}
	values := xladata.Enums(msg, "operand_precision")
	precisions := make([]types.Precision, 0, len(values))
	for i, v := range values {
		p := types.Precision(v)
		if !p.IsAPrecision() {
			return nil, errors.Errorf("unsupported precision %s for operand #%d in xla.PrecisionConfig",
				precisionName(v), i)
		}
		precisions = append(precisions, p)
	}
	config := types.NewPrecisionConfig(precisions...)
	klog.V(2).Infof("xlaproto: converted precision config %s", config)
	return config, nil
}

// PrecisionConfigToProto serializes the config as an xla.PrecisionConfig.
// A nil config is serialized as an empty message.
func PrecisionConfigToProto(config *types.PrecisionConfig) ([]byte, error) {
	msg := xladata.New(xladata.PrecisionConfig)
	values := config.Values()
	numbers := make([]protoreflect.EnumNumber, len(values))
	for i, p := range values {
		if !p.IsAPrecision() {
			return nil, errors.Errorf("cannot serialize invalid precision %s for operand #%d", p, i)
		}
		numbers[i] = protoreflect.EnumNumber(p)
	}
	xladata.SetEnums(msg, "operand_precision", numbers)
	return xladata.Marshal(msg)
}

// precisionName returns the name of the xla.PrecisionConfig.Precision value, or its number if unknown.
func precisionName(v protoreflect.EnumNumber) string {
	enumValue := xladata.PrecisionConfig.Enums().ByName("Precision").Values().ByNumber(v)
	if enumValue == nil {
		return fmt.Sprintf("%d", v)
	}
	return string(enumValue.Name())
}
