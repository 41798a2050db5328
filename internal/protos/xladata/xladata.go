// Package xladata holds the wire schema of the XLA messages used to describe dimension numbers
// and precision configurations (the "xla" package of xla_data.proto).
//
// Only the subset of messages needed is included. The schema is built in Go and messages are
// handled with dynamicpb, so no generated code is required.
// Field names and numbers must match xla_data.proto exactly, since they define the wire format.
package xladata

import (
	"github.com/gomlx/xladims/internal/must"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message descriptors of the supported XLA messages.
var (
	File protoreflect.FileDescriptor

	ConvolutionDimensionNumbers protoreflect.MessageDescriptor
	DotDimensionNumbers         protoreflect.MessageDescriptor
	GatherDimensionNumbers      protoreflect.MessageDescriptor
	ScatterDimensionNumbers     protoreflect.MessageDescriptor
	PrecisionConfig             protoreflect.MessageDescriptor
)

// Values of xla.PrecisionConfig.Precision.
const (
	PrecisionDefault      protoreflect.EnumNumber = 0
	PrecisionHigh         protoreflect.EnumNumber = 1
	PrecisionHighest      protoreflect.EnumNumber = 2
	PrecisionPackedNibble protoreflect.EnumNumber = 3
)

func init() {
	File = must.M1(protodesc.NewFile(fileDescriptorProto(), new(protoregistry.Files)))
	messages := File.Messages()
	ConvolutionDimensionNumbers = messages.ByName("ConvolutionDimensionNumbers")
	DotDimensionNumbers = messages.ByName("DotDimensionNumbers")
	GatherDimensionNumbers = messages.ByName("GatherDimensionNumbers")
	ScatterDimensionNumbers = messages.ByName("ScatterDimensionNumbers")
	PrecisionConfig = messages.ByName("PrecisionConfig")
}

func field(name string, number int32, label descriptorpb.FieldDescriptorProto_Label,
	fieldType descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   fieldType.Enum(),
	}
}

func int64Field(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return field(name, number, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_INT64)
}

func repeatedInt64Field(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return field(name, number, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_INT64)
}

func enumField(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typeName string) *descriptorpb.FieldDescriptorProto {
	f := field(name, number, label, descriptorpb.FieldDescriptorProto_TYPE_ENUM)
	f.TypeName = proto.String(typeName)
	return f
}

func enumType(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, value := range values {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(value),
			Number: proto.Int32(int32(i)),
		})
	}
	return e
}

// fileDescriptorProto mirrors the relevant messages of tensorflow/compiler/xla/xla_data.proto.
func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("xla/xla_data.proto"),
		Package: proto.String("xla"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("ConvolutionDimensionNumbers"),
				Field: []*descriptorpb.FieldDescriptorProto{
					int64Field("input_batch_dimension", 7),
					int64Field("input_feature_dimension", 8),
					repeatedInt64Field("input_spatial_dimensions", 11),
					int64Field("kernel_input_feature_dimension", 3),
					int64Field("kernel_output_feature_dimension", 4),
					repeatedInt64Field("kernel_spatial_dimensions", 6),
					int64Field("output_batch_dimension", 9),
					int64Field("output_feature_dimension", 10),
					repeatedInt64Field("output_spatial_dimensions", 12),
				},
			},
			{
				Name: proto.String("DotDimensionNumbers"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeatedInt64Field("lhs_contracting_dimensions", 1),
					repeatedInt64Field("rhs_contracting_dimensions", 2),
					repeatedInt64Field("lhs_batch_dimensions", 3),
					repeatedInt64Field("rhs_batch_dimensions", 4),
				},
			},
			{
				Name: proto.String("GatherDimensionNumbers"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeatedInt64Field("offset_dims", 1),
					repeatedInt64Field("collapsed_slice_dims", 2),
					repeatedInt64Field("start_index_map", 3),
					int64Field("index_vector_dim", 4),
					repeatedInt64Field("operand_batching_dims", 5),
					repeatedInt64Field("start_indices_batching_dims", 6),
				},
			},
			{
				Name: proto.String("ScatterDimensionNumbers"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeatedInt64Field("update_window_dims", 1),
					repeatedInt64Field("inserted_window_dims", 2),
					repeatedInt64Field("scatter_dims_to_operand_dims", 3),
					int64Field("index_vector_dim", 4),
					repeatedInt64Field("input_batching_dims", 5),
					repeatedInt64Field("scatter_indices_batching_dims", 6),
				},
			},
			{
				Name: proto.String("PrecisionConfig"),
				Field: []*descriptorpb.FieldDescriptorProto{
					enumField("operand_precision", 1, descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
						".xla.PrecisionConfig.Precision"),
					enumField("algorithm", 2, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL,
						".xla.PrecisionConfig.Algorithm"),
				},
				EnumType: []*descriptorpb.EnumDescriptorProto{
					enumType("Precision", "DEFAULT", "HIGH", "HIGHEST", "PACKED_NIBBLE"),
					enumType("Algorithm",
						"ALG_UNSET",
						"ALG_DOT_ANY_F8_ANY_F8_F32",
						"ALG_DOT_ANY_F8_ANY_F8_F32_FAST_ACCUM",
						"ALG_DOT_F16_F16_F16",
						"ALG_DOT_F16_F16_F32",
						"ALG_DOT_BF16_BF16_BF16",
						"ALG_DOT_BF16_BF16_F32",
						"ALG_DOT_BF16_BF16_F32_X3",
						"ALG_DOT_BF16_BF16_F32_X6",
						"ALG_DOT_TF32_TF32_F32",
						"ALG_DOT_TF32_TF32_F32_X3",
						"ALG_DOT_F32_F32_F32",
						"ALG_DOT_F64_F64_F64",
						"ALG_DOT_BF16_BF16_F32_X9"),
				},
			},
		},
	}
}

// New returns an empty message of the given type.
func New(desc protoreflect.MessageDescriptor) *dynamicpb.Message {
	return dynamicpb.NewMessage(desc)
}

// Unmarshal parses the binary wire-format data as a message of the given type.
func Unmarshal(desc protoreflect.MessageDescriptor, data []byte) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(desc)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", desc.FullName())
	}
	return msg, nil
}

// Marshal serializes the message to its binary wire-format. Output is deterministic.
func Marshal(msg proto.Message) ([]byte, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize %s", msg.ProtoReflect().Descriptor().FullName())
	}
	return data, nil
}

// fieldByName panics if the field doesn't exist: field names are fixed by the schema above.
func fieldByName(msg protoreflect.Message, name string) protoreflect.FieldDescriptor {
	fd := msg.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(errors.Errorf("message %s has no field %q", msg.Descriptor().FullName(), name))
	}
	return fd
}

// Int returns the value of a scalar integer field.
func Int(msg protoreflect.Message, name string) int {
	return int(msg.Get(fieldByName(msg, name)).Int())
}

// SetInt sets the value of a scalar integer field.
func SetInt(msg protoreflect.Message, name string, value int) {
	msg.Set(fieldByName(msg, name), protoreflect.ValueOfInt64(int64(value)))
}

// Ints returns the values of a repeated integer field, in order.
// It returns an empty (non-nil) slice if the field is not set.
func Ints(msg protoreflect.Message, name string) []int {
	list := msg.Get(fieldByName(msg, name)).List()
	values := make([]int, list.Len())
	for i := range values {
		values[i] = int(list.Get(i).Int())
	}
	return values
}

// SetInts replaces the values of a repeated integer field.
func SetInts(msg protoreflect.Message, name string, values []int) {
	fd := fieldByName(msg, name)
	msg.Clear(fd)
	if len(values) == 0 {
		return
	}
	list := msg.Mutable(fd).List()
	for _, v := range values {
		list.Append(protoreflect.ValueOfInt64(int64(v)))
	}
}

// Enums returns the values of a repeated enum field, in order.
func Enums(msg protoreflect.Message, name string) []protoreflect.EnumNumber {
	list := msg.Get(fieldByName(msg, name)).List()
	values := make([]protoreflect.EnumNumber, list.Len())
	for i := range values {
		values[i] = list.Get(i).Enum()
	}
	return values
}

// SetEnums replaces the values of a repeated enum field.
func SetEnums(msg protoreflect.Message, name string, values []protoreflect.EnumNumber) {
	fd := fieldByName(msg, name)
	msg.Clear(fd)
	if len(values) == 0 {
		return
	}
	list := msg.Mutable(fd).List()
	for _, v := range values {
		list.Append(protoreflect.ValueOfEnum(v))
	}
}
