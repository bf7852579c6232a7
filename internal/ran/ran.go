// Package ran provides the Park-Miller minimal standard generator computed
// with Schrage's method in floating point.
package ran

import (
	"fmt"
	"math"
)

const (
	A           = 16807.0
	M           = 2147483647
	Q           = 127773
	R           = 2836.0
	InitialSeed = 123456.0
)

// Variant selects how the high part s/Q is computed.
type Variant int

const (
	// Schrage truncates s/Q with floor, yielding the integer-valued
	// minimal standard sequence.
	Schrage Variant = iota
	// TrueDivision keeps the fractional part of s/Q. Files produced by the
	// old python encoder were masked with this sequence.
	TrueDivision
)

func (v Variant) String() string {
	switch v {
	case Schrage:
		return "schrage"
	case TrueDivision:
		return "true-division"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "schrage":
		return Schrage, nil
	case "true-division":
		return TrueDivision, nil
	default:
		return 0, fmt.Errorf("unknown generator variant %q", s)
	}
}

// Generator is not safe for concurrent use.
type Generator struct {
	seed    float64
	calls   int
	variant Variant
}

func New() *Generator {
	return NewVariant(Schrage)
}

func NewVariant(v Variant) *Generator {
	return &Generator{
		seed:    InitialSeed,
		variant: v,
	}
}

// Next advances the seed and returns it. The result is in (0, M).
func (g *Generator) Next() float64 {
	hi := g.seed / Q
	if g.variant == Schrage {
		hi = math.Floor(hi)
	}

	t := A*math.Mod(g.seed, Q) - R*hi
	if t < 0 {
		t += M
	}

	g.seed = t
	g.calls++
	return t
}

// Offset consumes one value and scales it to [0, 1000).
func (g *Generator) Offset() int {
	return int(1000.0 * g.Next() / M)
}

func (g *Generator) Seed() float64 {
	return g.seed
}

// Calls reports how many values have been consumed.
func (g *Generator) Calls() int {
	return g.calls
}

func (g *Generator) Variant() Variant {
	return g.variant
}
