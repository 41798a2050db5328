package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/xladims/pkg/conv"
	"github.com/gomlx/xladims/pkg/stablehlo"
	"github.com/gomlx/xladims/pkg/types"
	"github.com/gomlx/xladims/pkg/xlaproto"
	"github.com/pkg/errors"
)

// renderOptions are only used to render StableHLO attributes.
type renderOptions struct {
	strides, dilations []int
	channelAxis        int
	precision          *types.PrecisionConfig
}

type renderer struct {
	w            io.Writer
	headerStyle  lipgloss.Style
	messageStyle lipgloss.Style
}

func newRenderer(w io.Writer, styled bool) *renderer {
	r := &renderer{w: w, headerStyle: lipgloss.NewStyle(), messageStyle: lipgloss.NewStyle()}
	if styled {
		r.headerStyle = r.headerStyle.Bold(true).Foreground(lipgloss.Color("63"))
		r.messageStyle = r.messageStyle.Foreground(lipgloss.Color("245"))
	}
	return r
}

func (r *renderer) header(format string, args ...any) error {
	_, err := fmt.Fprintln(r.w, r.headerStyle.Render(fmt.Sprintf(format, args...)))
	return err
}

// Render decodes data as a message of the given kind and writes it in the requested format.
func (r *renderer) Render(kind xlaproto.Kind, data []byte, format string, opts renderOptions) error {
	switch format {
	case "go", "":
		decoded, err := xlaproto.Decode(kind, data)
		if err != nil {
			return err
		}
		if err := r.header("%s:", kind.Descriptor().FullName()); err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.w, "%s\n", decoded)
		return err

	case "text":
		text, err := xlaproto.FormatText(kind, data)
		if err != nil {
			return err
		}
		if err := r.header("%s (text format):", kind.Descriptor().FullName()); err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.w, r.messageStyle.Render(text))
		return err

	case "stablehlo":
		attrs, err := stableHLOAttributes(kind, data, opts)
		if err != nil {
			return err
		}
		if err := r.header("%s as StableHLO:", kind.Descriptor().FullName()); err != nil {
			return err
		}
		if err := attrs.Write(r.w, ""); err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.w)
		return err

	default:
		return errors.Errorf("unknown output format %q, valid values are \"go\", \"text\" and \"stablehlo\"", format)
	}
}

// stableHLOAttributes converts the message to the attributes of the corresponding StableHLO operation.
func stableHLOAttributes(kind xlaproto.Kind, data []byte, opts renderOptions) (stablehlo.Attributes, error) {
	switch kind {
	case xlaproto.KindConv:
		dn, err := xlaproto.ConvDimensionNumbersFromProto(data)
		if err != nil {
			return nil, err
		}
		numSpatialDims := dn.NumSpatialDims()
		var strides, dilations []int
		if len(opts.strides) > 0 {
			if strides, err = conv.Sequence(opts.strides, numSpatialDims, opts.channelAxis); err != nil {
				return nil, errors.WithMessage(err, "strides")
			}
		}
		if len(opts.dilations) > 0 {
			if dilations, err = conv.Sequence(opts.dilations, numSpatialDims, opts.channelAxis); err != nil {
				return nil, errors.WithMessage(err, "dilations")
			}
		}
		return stablehlo.ConvolutionAttributes(dn, strides, nil, nil, dilations, 1, 1, opts.precision)

	case xlaproto.KindDot:
		dn, err := xlaproto.DotDimensionNumbersFromProto(data)
		if err != nil {
			return nil, err
		}
		return stablehlo.DotGeneralAttributes(dn, opts.precision)

	case xlaproto.KindGather:
		dn, err := xlaproto.GatherDimensionNumbersFromProto(data)
		if err != nil {
			return nil, err
		}
		return stablehlo.Attributes{"dimension_numbers": stablehlo.Literal(stablehlo.GatherDimensionNumbersToStableHLO(dn))}, nil

	case xlaproto.KindScatter:
		dn, err := xlaproto.ScatterDimensionNumbersFromProto(data)
		if err != nil {
			return nil, err
		}
		return stablehlo.Attributes{"scatter_dimension_numbers": stablehlo.Literal(stablehlo.ScatterDimensionNumbersToStableHLO(dn))}, nil

	case xlaproto.KindPrecision:
		config, err := xlaproto.PrecisionConfigFromProto(data)
		if err != nil {
			return nil, err
		}
		precisionConfig, err := stablehlo.PrecisionConfigToStableHLO(config, 2)
		if err != nil {
			return nil, err
		}
		return stablehlo.Attributes{"precision_config": stablehlo.Literal(precisionConfig)}, nil

	default:
		return nil, errors.Errorf("unknown message kind %s", kind)
	}
}
