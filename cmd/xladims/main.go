// xladims decodes a serialized XLA dimension-numbers or precision-config protocol buffer and prints
// the converted parameters.
//
// Usage:
//
//	xladims -kind=conv -in=conv_dims.pb
//	xladims -kind=precision -format=stablehlo < precision.pb
//	xladims -kind=conv -format=stablehlo -strides=1,2,2,1 -channel_axis=3 -in=conv_dims.pb
//
// If -kind is not given and the program runs in a terminal, it asks for the missing values interactively.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/gomlx/xladims/pkg/types"
	"github.com/gomlx/xladims/pkg/xlaproto"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagKind = flag.String("kind", "",
		"Kind of the XLA message to decode. Valid values: "+strings.Join(xlaproto.KindNames(), ", "))
	flagIn     = flag.String("in", "-", "File with the serialized message, or \"-\" to read it from stdin.")
	flagHex    = flag.Bool("hex", false, "Input is hex-encoded (whitespace is ignored), instead of binary.")
	flagFormat = flag.String("format", "go",
		"Output format: \"go\" prints the converted parameters, \"text\" prints the protobuf text format "+
			"and \"stablehlo\" prints the StableHLO attributes.")

	// Only used with -format=stablehlo.
	flagStrides = flag.String("strides", "",
		"Comma-separated convolution strides: one value, one per spatial axis, or one per axis of the input.")
	flagDilations = flag.String("dilations", "",
		"Comma-separated convolution kernel dilations: one value, one per spatial axis, or one per axis of the input.")
	flagChannelAxis = flag.Int("channel_axis", -1,
		"Channels axis of the input, used to interpret -strides and -dilations given for every axis: "+
			"1 for channels-first, anything else for channels-last.")
	flagPrecision = flag.String("precision", "",
		"Comma-separated operand precisions (default, high, highest) for dot and convolution attributes.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagKind == "" {
		if !term.IsTerminal(os.Stdin.Fd()) {
			klog.Fatalf("-kind must be set, valid values: %s", strings.Join(xlaproto.KindNames(), ", "))
		}
		err := Interact(flag.CommandLine.Lookup("kind"), flag.CommandLine.Lookup("in"))
		if err != nil {
			if errors.Is(err, ErrUserAborted) {
				fmt.Println("Aborted.")
				return
			}
			klog.Fatalf("Failed on error: %+v", err)
		}
	}

	kind, err := xlaproto.ParseKind(*flagKind)
	if err != nil {
		klog.Fatalf("Failed on error: %+v", err)
	}
	data, err := readInput(*flagIn, *flagHex)
	if err != nil {
		klog.Fatalf("Failed on error: %+v", err)
	}
	klog.V(1).Infof("decoding %d bytes as %s", len(data), kind.Descriptor().FullName())

	opts, err := parseRenderOptions()
	if err != nil {
		klog.Fatalf("Failed on error: %+v", err)
	}
	r := newRenderer(os.Stdout, term.IsTerminal(os.Stdout.Fd()))
	if err := r.Render(kind, data, *flagFormat, opts); err != nil {
		klog.Fatalf("Failed on error: %+v", err)
	}
}

// readInput reads the whole serialized message from path, or from stdin if path is "-".
func readInput(path string, isHex bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read message from stdin")
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read message from %q", path)
		}
	}
	if !isHex {
		return data, nil
	}
	decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode hex input")
	}
	return decoded, nil
}

func parseRenderOptions() (renderOptions, error) {
	var (
		opts renderOptions
		err  error
	)
	opts.channelAxis = *flagChannelAxis
	if opts.strides, err = parseInts(*flagStrides); err != nil {
		return opts, errors.WithMessage(err, "invalid -strides")
	}
	if opts.dilations, err = parseInts(*flagDilations); err != nil {
		return opts, errors.WithMessage(err, "invalid -dilations")
	}
	var precisions []types.Precision
	for _, part := range splitList(*flagPrecision) {
		p, err := types.PrecisionString(part)
		if err != nil {
			return opts, errors.Wrap(err, "invalid -precision")
		}
		precisions = append(precisions, p)
	}
	opts.precision = types.NewPrecisionConfig(precisions...)
	return opts, nil
}

func splitList(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func parseInts(s string) ([]int, error) {
	parts := splitList(s)
	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "value #%d %q is not an integer", i, part)
		}
		values[i] = v
	}
	return values, nil
}
