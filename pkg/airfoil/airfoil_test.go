package airfoil

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func TestThicknessNonNegative(t *testing.T) {
	for _, chord := range []float64{0.1, 1, 37.5, 50, 1000} {
		for i := 0; i <= 1000; i++ {
			xi := float64(i) / 1000
			if got := Thickness(xi, chord, 1); got < 0 {
				t.Fatalf("Thickness(%v, %v, 1) = %v, want >= 0", xi, chord, got)
			}
		}
	}
}

func TestThicknessZeroOnlyAtEnds(t *testing.T) {
	const chord = 50.0
	if got := Thickness(0, chord, 1); got != 0 {
		t.Errorf("Thickness at leading edge = %v, want 0", got)
	}
	if got := Thickness(1, chord, 1); !scalar.EqualWithinAbs(got, 0, tol) {
		t.Errorf("Thickness at trailing edge = %v, want 0", got)
	}
	for i := 1; i < 1000; i++ {
		xi := float64(i) / 1000
		if got := Thickness(xi, chord, 1); got <= 0 {
			t.Fatalf("Thickness(%v) = %v, want > 0 inside the chord", xi, got)
		}
	}
}

func TestThicknessClampsStation(t *testing.T) {
	if got := Thickness(-1e-15, 10, 1); math.IsNaN(got) || got != 0 {
		t.Errorf("Thickness just below 0 = %v, want 0", got)
	}
	if got := Thickness(1+1e-12, 10, 1); math.IsNaN(got) || got < 0 {
		t.Errorf("Thickness just above 1 = %v, want finite non-negative", got)
	}
}

func TestThicknessMaximum(t *testing.T) {
	// Unscaled, the peak half-thickness is 0.12 * 0.1 of chord near 30% chord;
	// the default scale of 5 restores the familiar 12% NACA 0012 section.
	const chord = 100.0
	var best, bestXi float64
	for i := 0; i <= 1000; i++ {
		xi := float64(i) / 1000
		if v := Thickness(xi, chord, 1); v > best {
			best, bestXi = v, xi
		}
	}
	if !scalar.EqualWithinAbs(best, 1.2, 0.005) {
		t.Errorf("max half-thickness = %v, want ~1.2", best)
	}
	if bestXi < 0.28 || bestXi > 0.32 {
		t.Errorf("max thickness station = %v, want ~0.3", bestXi)
	}
}

func TestThicknessScaleIsLinear(t *testing.T) {
	base := Thickness(0.3, 20, 1)
	if got := Thickness(0.3, 20, 5); !scalar.EqualWithinAbs(got, 5*base, tol) {
		t.Errorf("scale 5 thickness = %v, want %v", got, 5*base)
	}
}

func TestGeneratePointCount(t *testing.T) {
	tests := []struct {
		stations int
		want     int
	}{
		{2, 3},
		{3, 5},
		{10, 19},
		{100, 199},
	}
	for _, tt := range tests {
		p, err := Generate(50, 5, tt.stations)
		if err != nil {
			t.Fatalf("Generate(%d) error = %v", tt.stations, err)
		}
		if len(p) != tt.want {
			t.Errorf("Generate(%d) returned %d points, want %d", tt.stations, len(p), tt.want)
		}
	}
}

func TestGenerateOrdering(t *testing.T) {
	const chord = 50.0
	p, err := Generate(chord, DefaultThicknessScale, DefaultStations)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	first, last := p[0], p[len(p)-1]
	if !scalar.EqualWithinAbs(first.X, chord/2, tol) || !scalar.EqualWithinAbs(first.Y, 0, tol) {
		t.Errorf("first point = %v, want (%v, 0)", first, chord/2)
	}
	if !scalar.EqualWithinAbs(first.X, last.X, tol) || !scalar.EqualWithinAbs(first.Y, last.Y, tol) {
		t.Errorf("first %v and last %v should coincide at the trailing edge", first, last)
	}

	le := p[DefaultStations-1]
	if !scalar.EqualWithinAbs(le.X, -chord/2, tol) || le.Y != 0 {
		t.Errorf("leading edge = %v, want (%v, 0)", le, -chord/2)
	}

	// Lower surface first (y <= 0, x decreasing), then upper (y >= 0, x increasing).
	for i := 1; i < DefaultStations; i++ {
		if p[i].X >= p[i-1].X {
			t.Fatalf("lower surface x not decreasing at %d: %v then %v", i, p[i-1], p[i])
		}
		if p[i].Y > 0 {
			t.Fatalf("lower surface point %d above chord: %v", i, p[i])
		}
	}
	for i := DefaultStations; i < len(p); i++ {
		if p[i].X <= p[i-1].X {
			t.Fatalf("upper surface x not increasing at %d", i)
		}
		if p[i].Y < 0 {
			t.Fatalf("upper surface point %d below chord: %v", i, p[i])
		}
	}
}

func TestGenerateSymmetric(t *testing.T) {
	const n = 25
	p, err := Generate(10, 1, n)
	if err != nil {
		t.Fatal(err)
	}
	// Station k appears at n-1+k on the upper surface and n-1-k on the lower.
	for k := 1; k < n; k++ {
		up := p[n-1+k]
		lo := p[n-1-k]
		if !scalar.EqualWithinAbs(up.X, lo.X, tol) || !scalar.EqualWithinAbs(up.Y, -lo.Y, tol) {
			t.Errorf("station %d: upper %v does not mirror lower %v", k, up, lo)
		}
	}
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name     string
		chord    float64
		scale    float64
		stations int
	}{
		{"zero chord", 0, 1, 10},
		{"negative chord", -5, 1, 10},
		{"nan chord", math.NaN(), 1, 10},
		{"zero scale", 10, 0, 10},
		{"one station", 10, 1, 1},
		{"no stations", 10, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Generate(tt.chord, tt.scale, tt.stations)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("error = %v, want ErrInvalidParameter", err)
			}
			if p != nil {
				t.Errorf("profile = %v, want nil", p)
			}
		})
	}
}

func TestBoundsAndMaxThickness(t *testing.T) {
	p, _ := Generate(100, DefaultThicknessScale, 201)
	min, max := p.Bounds()
	if !scalar.EqualWithinAbs(min.X, -50, tol) || !scalar.EqualWithinAbs(max.X, 50, tol) {
		t.Errorf("x extent = [%v, %v], want [-50, 50]", min.X, max.X)
	}
	if got := p.MaxThickness(); !scalar.EqualWithinAbs(got, 12, 0.05) {
		t.Errorf("MaxThickness = %v, want ~12", got)
	}
}
