package stablehlo

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// literalStr is an attribute value that is written as is, without quoting.
type literalStr string

func literalStrF(format string, args ...any) literalStr {
	return literalStr(fmt.Sprintf(format, args...))
}

// intSliceToStableHLO renders the axes as "[1, 2, 3]".
func intSliceToStableHLO(s []int) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// intSliceToArrayI64StableHLO renders the values as "array<i64: 1, 2, 3>", or "array<i64>" if empty.
func intSliceToArrayI64StableHLO(s []int) literalStr {
	if len(s) == 0 {
		return "array<i64>"
	}
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return literalStr("array<i64: " + strings.Join(parts, ", ") + ">")
}

// boolSliceToArrayI1StableHLO renders the values as "array<i1: false, true>", or "array<i1>" if empty.
func boolSliceToArrayI1StableHLO(s []bool) literalStr {
	if len(s) == 0 {
		return "array<i1>"
	}
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.FormatBool(v)
	}
	return literalStr("array<i1: " + strings.Join(parts, ", ") + ">")
}

// paddingsToStableHLO renders the (start, end) paddings per spatial axis as a dense i64 tensor of shape [n, 2].
func paddingsToStableHLO(paddings [][2]int) literalStr {
	if len(paddings) == 0 {
		return "dense<> : tensor<0x2xi64>"
	}
	rows := make([]string, len(paddings))
	for i, pad := range paddings {
		rows[i] = fmt.Sprintf("[%d, %d]", pad[0], pad[1])
	}
	return literalStrF("dense<[%s]> : tensor<%dx2xi64>", strings.Join(rows, ", "), len(paddings))
}

// Attributes of a StableHLO operation, indexed by attribute name.
//
// Values can be literal strings (written as is), strings (quoted), bool or integers (written as i64).
type Attributes map[string]any

// Write the attributes as a StableHLO attribute dictionary, with sorted keys: "{key1 = value1, key2 = value2}".
func (attrs Attributes) Write(w io.Writer, indentation string) error {
	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	write("{")
	for i, key := range keys {
		if i > 0 {
			write(",")
		}
		if indentation != "" {
			write("\n%s  ", indentation)
		} else if i > 0 {
			write(" ")
		}
		write("%s = %s", key, attributeValueToStableHLO(attrs[key]))
	}
	if indentation != "" && len(keys) > 0 {
		write("\n%s", indentation)
	}
	write("}")
	return err
}

// String implements fmt.Stringer, rendering the attributes in one line.
func (attrs Attributes) String() string {
	var sb strings.Builder
	_ = attrs.Write(&sb, "")
	return sb.String()
}

func attributeValueToStableHLO(value any) string {
	switch v := value.(type) {
	case literalStr:
		return string(v)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return fmt.Sprintf("%d : i64", v)
	case int64:
		return fmt.Sprintf("%d : i64", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Literal returns an attribute value that is written as is, without quoting.
func Literal(value string) any {
	return literalStr(value)
}
