package types

import (
	"slices"
	"strings"
	"testing"
)

func TestPrecision(t *testing.T) {
	for _, tc := range []struct {
		p         Precision
		name, hlo string
	}{
		{PrecisionDefault, "Default", "DEFAULT"},
		{PrecisionHigh, "High", "HIGH"},
		{PrecisionHighest, "Highest", "HIGHEST"},
	} {
		if got := tc.p.String(); got != tc.name {
			t.Errorf("String() = %q, want %q", got, tc.name)
		}
		if got := tc.p.ToStableHLO(); got != tc.hlo {
			t.Errorf("ToStableHLO() = %q, want %q", got, tc.hlo)
		}
		parsed, err := PrecisionString(strings.ToLower(tc.name))
		if err != nil || parsed != tc.p {
			t.Errorf("PrecisionString(%q) = %v, %v", strings.ToLower(tc.name), parsed, err)
		}
	}
	if Precision(3).IsAPrecision() {
		t.Error("Precision(3) should not be a valid precision")
	}
	if got := Precision(7).ToStableHLO(); got != "UNKNOWN_PRECISION<7>" {
		t.Errorf("Precision(7).ToStableHLO() = %q", got)
	}
}

func TestConvDimensionNumbers(t *testing.T) {
	// NHWC images, HWIO kernels.
	dn := ConvDimensionNumbers{
		LHSSpec: []int{0, 3, 1, 2},
		RHSSpec: []int{3, 2, 0, 1},
		OutSpec: []int{0, 3, 1, 2},
	}
	if err := dn.Validate(); err != nil {
		t.Fatalf("Validate() failed: %+v", err)
	}
	if dn.NumSpatialDims() != 2 {
		t.Errorf("NumSpatialDims() = %d, want 2", dn.NumSpatialDims())
	}
	if dn.InputBatchAxis() != 0 || dn.InputFeatureAxis() != 3 || !slices.Equal(dn.InputSpatialAxes(), []int{1, 2}) {
		t.Errorf("unexpected input axes for %s", dn)
	}
	if dn.KernelOutputFeatureAxis() != 3 || dn.KernelInputFeatureAxis() != 2 || !slices.Equal(dn.KernelSpatialAxes(), []int{0, 1}) {
		t.Errorf("unexpected kernel axes for %s", dn)
	}
	if dn.OutputBatchAxis() != 0 || dn.OutputFeatureAxis() != 3 || !slices.Equal(dn.OutputSpatialAxes(), []int{1, 2}) {
		t.Errorf("unexpected output axes for %s", dn)
	}
	want := "ConvDimensionNumbers(lhs_spec=(0, 3, 1, 2), rhs_spec=(3, 2, 0, 1), out_spec=(0, 3, 1, 2))"
	if got := dn.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	other := ConvDimensionNumbers{
		LHSSpec: slices.Clone(dn.LHSSpec), RHSSpec: slices.Clone(dn.RHSSpec), OutSpec: slices.Clone(dn.OutSpec),
	}
	if !dn.Equal(other) {
		t.Error("Equal() should be true for a copy")
	}
	other.LHSSpec[0] = 1
	if dn.Equal(other) {
		t.Error("Equal() should be false after changing the copy")
	}

	for name, bad := range map[string]ConvDimensionNumbers{
		"too short":      {LHSSpec: []int{0}, RHSSpec: []int{0}, OutSpec: []int{0}},
		"rank mismatch":  {LHSSpec: []int{0, 1, 2}, RHSSpec: []int{0, 1}, OutSpec: []int{0, 1, 2}},
		"repeated axis":  {LHSSpec: []int{0, 1, 2}, RHSSpec: []int{0, 0, 2}, OutSpec: []int{0, 1, 2}},
		"axis too large": {LHSSpec: []int{0, 1, 2}, RHSSpec: []int{0, 1, 2}, OutSpec: []int{0, 1, 3}},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("%s: expected Validate() to fail for %s", name, bad)
		}
	}
}

func TestDotDimensionNumbers(t *testing.T) {
	dn := DotDimensionNumbers{
		LHSContracting: []int{2}, RHSContracting: []int{1},
		LHSBatch: []int{0}, RHSBatch: []int{0},
	}
	if err := dn.Validate(); err != nil {
		t.Fatalf("Validate() failed: %+v", err)
	}
	if got, want := dn.String(), "(((2,), (1,)), ((0,), (0,)))"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	lhs, rhs := dn.Contracting()
	if !slices.Equal(lhs, []int{2}) || !slices.Equal(rhs, []int{1}) {
		t.Errorf("Contracting() = %v, %v", lhs, rhs)
	}

	bad := DotDimensionNumbers{LHSContracting: []int{1}, RHSContracting: []int{0, 1}}
	if err := bad.Validate(); err == nil {
		t.Error("expected mismatched contracting axes to fail")
	}
	bad = DotDimensionNumbers{LHSContracting: []int{0}, RHSContracting: []int{1}, LHSBatch: []int{0}, RHSBatch: []int{0}}
	if err := bad.Validate(); err == nil {
		t.Error("expected lhs axis used as both contracting and batch to fail")
	}
}

func TestTupleString(t *testing.T) {
	for _, tc := range []struct {
		axes []int
		want string
	}{
		{nil, "()"},
		{[]int{4}, "(4,)"},
		{[]int{1, 0, 2}, "(1, 0, 2)"},
	} {
		if got := TupleString(tc.axes); got != tc.want {
			t.Errorf("TupleString(%v) = %q, want %q", tc.axes, got, tc.want)
		}
	}
}

func TestPrecisionConfig(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		c := NewPrecisionConfig()
		if c != nil {
			t.Fatalf("NewPrecisionConfig() = %v, want nil", c)
		}
		if c.IsPerOperand() || c.Operand(1) != PrecisionDefault || c.String() != "None" {
			t.Errorf("nil config should behave as default precision")
		}
		if got := c.ForOperands(2); !slices.Equal(got, []Precision{PrecisionDefault, PrecisionDefault}) {
			t.Errorf("ForOperands(2) = %v", got)
		}
		if c.Values() != nil {
			t.Errorf("Values() = %v, want nil", c.Values())
		}
	})

	t.Run("shared", func(t *testing.T) {
		c := NewPrecisionConfig(PrecisionHighest)
		if c.IsPerOperand() || c.Shared != PrecisionHighest {
			t.Fatalf("NewPrecisionConfig(HIGHEST) = %+v", c)
		}
		if got := c.ForOperands(2); !slices.Equal(got, []Precision{PrecisionHighest, PrecisionHighest}) {
			t.Errorf("ForOperands(2) = %v", got)
		}
		if c.String() != "HIGHEST" {
			t.Errorf("String() = %q", c.String())
		}
	})

	t.Run("per-operand", func(t *testing.T) {
		input := []Precision{PrecisionHigh, PrecisionDefault}
		c := NewPrecisionConfig(input...)
		input[0] = PrecisionHighest
		if !c.IsPerOperand() || !slices.Equal(c.Values(), []Precision{PrecisionHigh, PrecisionDefault}) {
			t.Fatalf("NewPrecisionConfig(HIGH, DEFAULT) = %+v", c)
		}
		if c.Operand(0) != PrecisionHigh || c.Operand(1) != PrecisionDefault || c.Operand(2) != PrecisionDefault {
			t.Errorf("unexpected Operand() values for %s", c)
		}
		if c.String() != "(HIGH, DEFAULT)" {
			t.Errorf("String() = %q", c.String())
		}
		if !c.Equal(NewPrecisionConfig(PrecisionHigh, PrecisionDefault)) || c.Equal(nil) {
			t.Errorf("Equal() failed for %s", c)
		}
	})
}
