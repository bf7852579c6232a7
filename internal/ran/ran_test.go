package ran

import (
	"math"
	"testing"
)

func TestSchrageSequence(t *testing.T) {
	g := New()

	for i, want := range []float64{
		2074924992,
		277396911,
		22885540,
		237697967,
		670147949,
		1772333975,
	} {
		if have := g.Next(); have != want {
			t.Fatalf("value %d: %v != %v", i, have, want)
		}
	}
	if have, want := g.Calls(), 6; have != want {
		t.Fatalf("calls %d != %d", have, want)
	}
}

func TestFirstValueMatchesFormula(t *testing.T) {
	s := InitialSeed
	want := A*math.Mod(s, Q) - R*math.Floor(s/Q)
	if want < 0 {
		want += M
	}

	if have := New().Next(); have != want {
		t.Fatalf("first value %v != %v", have, want)
	}
}

func TestOffsets(t *testing.T) {
	for _, tc := range []struct {
		variant Variant
		want    []int
	}{
		{Schrage, []int{966, 129, 10, 110, 312, 825}},
		{TrueDivision, []int{966, 107, 570, 210, 731, 856}},
	} {
		t.Run(tc.variant.String(), func(t *testing.T) {
			g := NewVariant(tc.variant)
			for i, want := range tc.want {
				if have := g.Offset(); have != want {
					t.Fatalf("offset %d: %d != %d", i, have, want)
				}
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	a, b := New(), New()
	for i := range 10000 {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("value %d differs: %v != %v", i, x, y)
		}
		if x <= 0 || x >= M {
			t.Fatalf("value %d out of range: %v", i, x)
		}
	}
}

func TestTrueDivisionRange(t *testing.T) {
	g := NewVariant(TrueDivision)
	for i := range 10000 {
		if x := g.Next(); x <= 0 || x >= M {
			t.Fatalf("value %d out of range: %v", i, x)
		}
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range []Variant{Schrage, TrueDivision} {
		have, err := ParseVariant(v.String())
		if err != nil {
			t.Fatal(err)
		}
		if have != v {
			t.Fatalf("parsed %v != %v", have, v)
		}
	}

	if v, err := ParseVariant(""); err != nil || v != Schrage {
		t.Fatalf("empty variant: %v, %v", v, err)
	}
	if _, err := ParseVariant("lcg"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
