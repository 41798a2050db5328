package xlaproto

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/xladims/internal/protos/xladata"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Kind of XLA message supported by this package.
type Kind int

const (
	KindConv Kind = iota
	KindDot
	KindGather
	KindScatter
	KindPrecision
)

var kindNames = []string{"conv", "dot", "gather", "scatter", "precision"}

// KindNames returns the names of all kinds, in order, as accepted by ParseKind.
func KindNames() []string {
	return slices.Clone(kindNames)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind converts a name (case-insensitive) as returned by Kind.String back to a Kind.
func ParseKind(name string) (Kind, error) {
	idx := slices.Index(kindNames, strings.ToLower(strings.TrimSpace(name)))
	if idx < 0 {
		return 0, errors.Errorf("unknown message kind %q, valid values are: %s", name, strings.Join(kindNames, ", "))
	}
	return Kind(idx), nil
}

// Descriptor returns the XLA message type for the kind.
func (k Kind) Descriptor() protoreflect.MessageDescriptor {
	switch k {
	case KindConv:
		return xladata.ConvolutionDimensionNumbers
	case KindDot:
		return xladata.DotDimensionNumbers
	case KindGather:
		return xladata.GatherDimensionNumbers
	case KindScatter:
		return xladata.ScatterDimensionNumbers
	case KindPrecision:
		return xladata.PrecisionConfig
	default:
		return nil
	}
}

// Decode converts the serialized message of the given kind. The result is one of
// types.ConvDimensionNumbers, types.DotDimensionNumbers, types.GatherDimensionNumbers,
// types.ScatterDimensionNumbers or *types.PrecisionConfig (possibly nil).
func Decode(kind Kind, data []byte) (any, error) {
	switch kind {
	case KindConv:
		return ConvDimensionNumbersFromProto(data)
	case KindDot:
		return DotDimensionNumbersFromProto(data)
	case KindGather:
		return GatherDimensionNumbersFromProto(data)
	case KindScatter:
		return ScatterDimensionNumbersFromProto(data)
	case KindPrecision:
		return PrecisionConfigFromProto(data)
	default:
		return nil, errors.Errorf("unknown message kind %d", int(kind))
	}
}

// FormatText parses the serialized message of the given kind and returns it in protobuf text format,
// as the proto itself sees it, useful for debugging.
func FormatText(kind Kind, data []byte) (string, error) {
	desc := kind.Descriptor()
	if desc == nil {
		return "", errors.Errorf("unknown message kind %d", int(kind))
	}
	msg, err := xladata.Unmarshal(desc, data)
	if err != nil {
		return "", err
	}
	return prototext.MarshalOptions{Multiline: true}.Format(msg), nil
}
