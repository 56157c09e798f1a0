// Package airfoil generates closed outlines for symmetric NACA 4-digit
// airfoil sections. Outlines are plain 2D point sequences centred on the
// chord midpoint, ready to be rotated and placed by a span builder.
package airfoil

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidParameter is returned for non-positive chords or thickness
// scales and for station counts below two.
var ErrInvalidParameter = errors.New("airfoil: invalid parameter")

// NACA 0012 half-thickness polynomial. The final coefficient is the
// closed-trailing-edge variant, so the coefficients sum to zero.
const (
	thicknessRatio = 0.12

	a0 = 0.2969
	a1 = -0.1260
	a2 = -0.3516
	a3 = 0.2843
	a4 = -0.1036
)

// Defaults used by the blade parts.
const (
	DefaultStations       = 100
	DefaultThicknessScale = 5.0
)

// Profile is an ordered airfoil outline. Consecutive points are joined by
// straight edges and the last point connects back to the first.
type Profile []r2.Vec

// Thickness returns the half-thickness at chord station xi for a section of
// the given chord, amplified by scale. xi is clamped to [0, 1] so rounding
// at either end of the chord never reaches a negative square root.
func Thickness(xi, chord, scale float64) float64 {
	xi = clamp(xi, 0, 1)
	poly := a0*math.Sqrt(xi) + a1*xi + a2*xi*xi + a3*xi*xi*xi + a4*xi*xi*xi*xi
	t := scale * thicknessRatio * chord * poly
	if t < 0 {
		// Rounding at the closed trailing edge.
		return 0
	}
	return t
}

// Generate builds the outline of a symmetric airfoil with the given chord,
// thickness scale and number of chordwise stations.
//
// The returned profile has 2*stations-1 points. It starts at the trailing
// edge on the lower surface, runs forward to the leading edge at
// (-chord/2, 0) and back along the upper surface to the trailing edge. The
// leading-edge station appears once since its thickness is zero.
func Generate(chord, scale float64, stations int) (Profile, error) {
	switch {
	case chord <= 0 || math.IsNaN(chord) || math.IsInf(chord, 0):
		return nil, fmt.Errorf("%w: chord %v must be positive", ErrInvalidParameter, chord)
	case scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0):
		return nil, fmt.Errorf("%w: thickness scale %v must be positive", ErrInvalidParameter, scale)
	case stations < 2:
		return nil, fmt.Errorf("%w: need at least 2 stations, got %d", ErrInvalidParameter, stations)
	}

	upper := make([]r2.Vec, 0, stations)
	lower := make([]r2.Vec, 0, stations-1)
	for i := 0; i < stations; i++ {
		x := chord*float64(i)/float64(stations-1) - chord/2
		t := Thickness(x/chord+0.5, chord, scale)
		upper = append(upper, r2.Vec{X: x, Y: t})
		if i > 0 {
			lower = append(lower, r2.Vec{X: x, Y: -t})
		}
	}

	// Lower points were collected root to tip; the outline wants them tip
	// first so the whole sequence traces one loop.
	p := make(Profile, 0, 2*stations-1)
	for i := len(lower) - 1; i >= 0; i-- {
		p = append(p, lower[i])
	}
	p = append(p, upper...)
	return p, nil
}

// Bounds returns the axis-aligned extent of the profile.
func (p Profile) Bounds() (min, max r2.Vec) {
	if len(p) == 0 {
		return r2.Vec{}, r2.Vec{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// MaxThickness returns the largest full thickness (upper minus lower) of the
// profile.
func (p Profile) MaxThickness() float64 {
	min, max := p.Bounds()
	return max.Y - min.Y
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
