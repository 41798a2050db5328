package xlaproto

import (
	"slices"
	"strings"
	"testing"

	"github.com/gomlx/xladims/internal/protos/xladata"
	"github.com/gomlx/xladims/pkg/types"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// requireNoError fails the test immediately if err is not nil.
func requireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %+v", msg, err)
	}
}

func marshal(t *testing.T, msg *dynamicpb.Message) []byte {
	t.Helper()
	data, err := xladata.Marshal(msg)
	requireNoError(t, err, "serializing test message")
	return data
}

func assertInts(t *testing.T, name string, got, want []int) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestConvDimensionNumbersFromProto(t *testing.T) {
	msg := xladata.New(xladata.ConvolutionDimensionNumbers)
	xladata.SetInt(msg, "input_batch_dimension", 0)
	xladata.SetInt(msg, "input_feature_dimension", 3)
	xladata.SetInts(msg, "input_spatial_dimensions", []int{1, 2})
	xladata.SetInt(msg, "kernel_input_feature_dimension", 2)
	xladata.SetInt(msg, "kernel_output_feature_dimension", 3)
	xladata.SetInts(msg, "kernel_spatial_dimensions", []int{0, 1})
	xladata.SetInt(msg, "output_batch_dimension", 0)
	xladata.SetInt(msg, "output_feature_dimension", 3)
	xladata.SetInts(msg, "output_spatial_dimensions", []int{1, 2})

	dn, err := ConvDimensionNumbersFromProto(marshal(t, msg))
	requireNoError(t, err, "ConvDimensionNumbersFromProto")
	assertInts(t, "lhs_spec", dn.LHSSpec, []int{0, 3, 1, 2})
	assertInts(t, "rhs_spec", dn.RHSSpec, []int{3, 2, 0, 1})
	assertInts(t, "out_spec", dn.OutSpec, []int{0, 3, 1, 2})

	// And back.
	data, err := ConvDimensionNumbersToProto(dn)
	requireNoError(t, err, "ConvDimensionNumbersToProto")
	again, err := ConvDimensionNumbersFromProto(data)
	requireNoError(t, err, "ConvDimensionNumbersFromProto")
	if !again.Equal(dn) {
		t.Errorf("round trip changed %s to %s", dn, again)
	}
}

func TestConvDimensionNumbersEmptyMessage(t *testing.T) {
	// All fields default to zero: the specs hold only the batch and feature entries.
	dn, err := ConvDimensionNumbersFromProto(nil)
	requireNoError(t, err, "ConvDimensionNumbersFromProto")
	assertInts(t, "lhs_spec", dn.LHSSpec, []int{0, 0})
	assertInts(t, "rhs_spec", dn.RHSSpec, []int{0, 0})
	assertInts(t, "out_spec", dn.OutSpec, []int{0, 0})

	if _, err := ConvDimensionNumbersToProto(dn); err == nil {
		t.Error("ConvDimensionNumbersToProto should reject invalid dimension numbers")
	}
}

func TestDotDimensionNumbersFromProto(t *testing.T) {
	msg := xladata.New(xladata.DotDimensionNumbers)
	xladata.SetInts(msg, "lhs_contracting_dimensions", []int{2})
	xladata.SetInts(msg, "rhs_contracting_dimensions", []int{1})
	xladata.SetInts(msg, "lhs_batch_dimensions", []int{0})
	xladata.SetInts(msg, "rhs_batch_dimensions", []int{0})

	dn, err := DotDimensionNumbersFromProto(marshal(t, msg))
	requireNoError(t, err, "DotDimensionNumbersFromProto")
	lhs, rhs := dn.Contracting()
	assertInts(t, "lhs_contracting", lhs, []int{2})
	assertInts(t, "rhs_contracting", rhs, []int{1})
	lhs, rhs = dn.Batch()
	assertInts(t, "lhs_batch", lhs, []int{0})
	assertInts(t, "rhs_batch", rhs, []int{0})

	data, err := DotDimensionNumbersToProto(dn)
	requireNoError(t, err, "DotDimensionNumbersToProto")
	again, err := DotDimensionNumbersFromProto(data)
	requireNoError(t, err, "DotDimensionNumbersFromProto")
	if again.String() != dn.String() {
		t.Errorf("round trip changed %s to %s", dn, again)
	}
}

func TestGatherDimensionNumbersFromProto(t *testing.T) {
	msg := xladata.New(xladata.GatherDimensionNumbers)
	xladata.SetInts(msg, "offset_dims", []int{1})
	xladata.SetInts(msg, "collapsed_slice_dims", []int{0})
	xladata.SetInts(msg, "start_index_map", []int{0, 1})
	xladata.SetInt(msg, "index_vector_dim", 1)
	xladata.SetInts(msg, "operand_batching_dims", []int{2})
	xladata.SetInts(msg, "start_indices_batching_dims", []int{0})

	dn, err := GatherDimensionNumbersFromProto(marshal(t, msg))
	requireNoError(t, err, "GatherDimensionNumbersFromProto")
	assertInts(t, "offset_dims", dn.OffsetDims, []int{1})
	assertInts(t, "collapsed_slice_dims", dn.CollapsedSliceDims, []int{0})
	assertInts(t, "start_index_map", dn.StartIndexMap, []int{0, 1})
	assertInts(t, "operand_batching_dims", dn.OperandBatchingDims, []int{2})
	assertInts(t, "start_indices_batching_dims", dn.StartIndicesBatchingDims, []int{0})
	if dn.IndexVectorDim != 1 {
		t.Errorf("index_vector_dim = %d, want 1", dn.IndexVectorDim)
	}

	data, err := GatherDimensionNumbersToProto(dn)
	requireNoError(t, err, "GatherDimensionNumbersToProto")
	again, err := GatherDimensionNumbersFromProto(data)
	requireNoError(t, err, "GatherDimensionNumbersFromProto")
	if again.String() != dn.String() {
		t.Errorf("round trip changed %s to %s", dn, again)
	}
}

func TestScatterDimensionNumbersFromProto(t *testing.T) {
	msg := xladata.New(xladata.ScatterDimensionNumbers)
	xladata.SetInts(msg, "update_window_dims", []int{1})
	xladata.SetInts(msg, "inserted_window_dims", []int{0})
	xladata.SetInts(msg, "scatter_dims_to_operand_dims", []int{0})
	xladata.SetInt(msg, "index_vector_dim", 1)

	dn, err := ScatterDimensionNumbersFromProto(marshal(t, msg))
	requireNoError(t, err, "ScatterDimensionNumbersFromProto")
	assertInts(t, "update_window_dims", dn.UpdateWindowDims, []int{1})
	assertInts(t, "inserted_window_dims", dn.InsertedWindowDims, []int{0})
	assertInts(t, "scatter_dims_to_operand_dims", dn.ScatterDimsToOperandDims, []int{0})
	assertInts(t, "input_batching_dims", dn.InputBatchingDims, []int{})
	if dn.IndexVectorDim != 1 {
		t.Errorf("index_vector_dim = %d, want 1", dn.IndexVectorDim)
	}

	data, err := ScatterDimensionNumbersToProto(dn)
	requireNoError(t, err, "ScatterDimensionNumbersToProto")
	again, err := ScatterDimensionNumbersFromProto(data)
	requireNoError(t, err, "ScatterDimensionNumbersFromProto")
	if again.String() != dn.String() {
		t.Errorf("round trip changed %s to %s", dn, again)
	}
}

func TestPrecisionConfigFromProto(t *testing.T) {
	tests := []struct {
		name    string
		values  []protoreflect.EnumNumber
		want    *types.PrecisionConfig
		wantStr string
	}{
		{"none", nil, nil, "None"},
		{"single", []protoreflect.EnumNumber{xladata.PrecisionHighest},
			&types.PrecisionConfig{Shared: types.PrecisionHighest}, "HIGHEST"},
		{"single default", []protoreflect.EnumNumber{xladata.PrecisionDefault},
			&types.PrecisionConfig{Shared: types.PrecisionDefault}, "DEFAULT"},
		{"pair", []protoreflect.EnumNumber{xladata.PrecisionHigh, xladata.PrecisionDefault},
			&types.PrecisionConfig{PerOperand: []types.Precision{types.PrecisionHigh, types.PrecisionDefault}},
			"(HIGH, DEFAULT)"},
		{"triple", []protoreflect.EnumNumber{xladata.PrecisionDefault, xladata.PrecisionHighest, xladata.PrecisionHigh},
			&types.PrecisionConfig{PerOperand: []types.Precision{types.PrecisionDefault, types.PrecisionHighest, types.PrecisionHigh}},
			"(DEFAULT, HIGHEST, HIGH)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := xladata.New(xladata.PrecisionConfig)
			xladata.SetEnums(msg, "operand_precision", tc.values)
			got, err := PrecisionConfigFromProto(marshal(t, msg))
			requireNoError(t, err, "PrecisionConfigFromProto")
			if !got.Equal(tc.want) || got.IsPerOperand() != tc.want.IsPerOperand() {
				t.Errorf("PrecisionConfigFromProto() = %s, want %s", got, tc.want)
			}
			if got.String() != tc.wantStr {
				t.Errorf("String() = %q, want %q", got.String(), tc.wantStr)
			}

			data, err := PrecisionConfigToProto(got)
			requireNoError(t, err, "PrecisionConfigToProto")
			again, err := PrecisionConfigFromProto(data)
			requireNoError(t, err, "PrecisionConfigFromProto")
			if !again.Equal(got) {
				t.Errorf("round trip changed %s to %s", got, again)
			}
		})
	}
}

func TestPrecisionConfigUnsupported(t *testing.T) {
	for _, v := range []protoreflect.EnumNumber{xladata.PrecisionPackedNibble, 17} {
		msg := xladata.New(xladata.PrecisionConfig)
		xladata.SetEnums(msg, "operand_precision", []protoreflect.EnumNumber{xladata.PrecisionHigh, v})
		_, err := PrecisionConfigFromProto(marshal(t, msg))
		if err == nil {
			t.Fatalf("PrecisionConfigFromProto should fail for precision %d", v)
		}
		if !strings.Contains(err.Error(), "operand #1") {
			t.Errorf("error %q should point to operand #1", err)
		}
	}

	if _, err := PrecisionConfigToProto(types.NewPrecisionConfig(types.Precision(9))); err == nil {
		t.Error("PrecisionConfigToProto should fail for an invalid precision")
	}
}

func TestMalformedMessages(t *testing.T) {
	malformed := []byte{0x08, 0xff}
	for _, kind := range []Kind{KindConv, KindDot, KindGather, KindScatter, KindPrecision} {
		_, err := Decode(kind, malformed)
		if err == nil {
			t.Errorf("Decode(%s) should fail for malformed data", kind)
			continue
		}
		if !strings.Contains(err.Error(), string(kind.Descriptor().FullName())) {
			t.Errorf("Decode(%s) error %q should name the message type", kind, err)
		}
	}
}
