package units

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		unit  Unit
	}{
		{"1 TeV", 1, TeV},
		{"0.5deg", 0.5, Deg},
		{"4.5 deg", 4.5, Deg},
		{"1e-3 TeV", 1e-3, TeV},
		{"2.5E+1 GeV", 25, GeV},
		{"-0.1 rad", -0.1, Rad},
		{"3 sr^-1", 3, PerSr},
		{"7", 7, None},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if q.Value != tt.value || q.Unit != tt.unit {
				t.Errorf("Parse(%q) = %v, want %v %s", tt.in, q, tt.value, tt.unit)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "TeV", "1 parsec", "1.2.3 deg"} {
		if _, err := Parse(in); !errors.Is(err, ErrParse) {
			t.Errorf("Parse(%q) error = %v, want ErrParse", in, err)
		}
	}
}

func TestConversion(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		to   Unit
		want float64
	}{
		{"GeV to TeV", New(500, GeV), TeV, 0.5},
		{"TeV to MeV", New(2, TeV), MeV, 2e6},
		{"rad to deg", New(math.Pi, Rad), Deg, 180},
		{"arcmin to deg", New(30, Arcmin), Deg, 0.5},
		{"sr-1 to deg-2", New(1, PerSr), PerDeg2, math.Pow(math.Pi/180, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.In(tt.to)
			if err != nil {
				t.Fatalf("In failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12*math.Max(1, math.Abs(tt.want)) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIncompatible(t *testing.T) {
	_, err := New(1, TeV).To(Deg)
	if !errors.Is(err, ErrIncompatible) {
		t.Fatalf("expected ErrIncompatible, got %v", err)
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *ConversionError, got %T", err)
	}
	if convErr.From != TeV || convErr.To != Deg {
		t.Errorf("unexpected conversion error fields: %+v", convErr)
	}

	if _, err := New(1, Deg).Add(New(1, TeV)); !errors.Is(err, ErrIncompatible) {
		t.Errorf("Add across dimensions: expected ErrIncompatible, got %v", err)
	}
	if _, err := New(1, Deg).Compare(New(1, GeV)); !errors.Is(err, ErrIncompatible) {
		t.Errorf("Compare across dimensions: expected ErrIncompatible, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	sum, err := New(1, TeV).Add(New(500, GeV))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Unit != TeV || sum.Value != 1.5 {
		t.Errorf("Add = %v, want 1.5 TeV", sum)
	}

	diff, err := New(1, Deg).Sub(New(30, Arcmin))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(diff.Value-0.5) > 1e-12 {
		t.Errorf("Sub = %v, want 0.5 deg", diff)
	}

	c, err := New(1, TeV).Compare(New(999, GeV))
	if err != nil || c != 1 {
		t.Errorf("Compare = %d, %v; want 1", c, err)
	}
}

func TestArrayIn(t *testing.T) {
	a := NewArray([]float64{100, 1000}, GeV)
	got, err := a.In(TeV)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0.1 || got[1] != 1 {
		t.Errorf("Array.In = %v, want [0.1 1]", got)
	}
	if a.Values[0] != 100 {
		t.Error("Array.In modified its receiver")
	}
}

func TestNewPanicsOnUnknownUnit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown unit")
		}
	}()
	New(1, Unit("furlong"))
}

func TestString(t *testing.T) {
	if s := New(0.5, Deg).String(); s != "0.5 deg" {
		t.Errorf("String() = %q", s)
	}
	if s := New(2, None).String(); s != "2" {
		t.Errorf("String() = %q", s)
	}
}
