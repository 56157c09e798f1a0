// Package span stacks airfoil sections along a blade span. Each section is
// tapered, twisted about the span axis and lifted to its span station, so
// the ordered result can be handed straight to a loft.
package span

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/spanloft/pkg/airfoil"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidParameter is returned by Validate and Build for parameter sets
// that would produce degenerate geometry.
var ErrInvalidParameter = errors.New("span: invalid parameter")

// DefaultChordScale is the uniform de-rating applied to every section's
// chord relative to the nominal root chord.
const DefaultChordScale = 0.75

// MinStations is the fewest chord stations a lofted section can use. Two
// stations give only the leading and trailing edges, a flat outline with
// no area.
const MinStations = 3

// Params describes a twisted, tapered blade span.
type Params struct {
	Base           r3.Vec  `yaml:"base"`            // root section centre
	RootChord      float64 `yaml:"root_chord"`      // nominal root chord, before ChordScale
	Height         float64 `yaml:"height"`          // span length along +Z
	TwistDeg       float64 `yaml:"twist"`           // tip twist relative to root, degrees
	TaperRatio     float64 `yaml:"taper_ratio"`     // tip chord / root chord, in (0, 1]
	ThicknessScale float64 `yaml:"thickness_scale"` // airfoil thickness amplification
	Sections       int     `yaml:"sections"`        // number of sections, >= 2
	Stations       int     `yaml:"stations"`        // chordwise stations per airfoil
	ChordScale     float64 `yaml:"chord_scale"`     // uniform chord de-rating
}

// DefaultParams returns the span used by the LPT blade part.
func DefaultParams() Params {
	return Params{
		RootChord:      50,
		Height:         160,
		TwistDeg:       45,
		TaperRatio:     0.7,
		ThicknessScale: airfoil.DefaultThicknessScale,
		Sections:       10,
		Stations:       airfoil.DefaultStations,
		ChordScale:     DefaultChordScale,
	}
}

// Validate reports the first parameter that would make Build fail or
// produce degenerate sections.
func (p Params) Validate() error {
	switch {
	case p.Sections < 2:
		return fmt.Errorf("%w: need at least 2 sections, got %d", ErrInvalidParameter, p.Sections)
	case !(p.RootChord > 0):
		return fmt.Errorf("%w: root chord %v must be positive", ErrInvalidParameter, p.RootChord)
	case !(p.Height > 0):
		return fmt.Errorf("%w: height %v must be positive", ErrInvalidParameter, p.Height)
	case !(p.TaperRatio > 0) || p.TaperRatio > 1:
		return fmt.Errorf("%w: taper ratio %v must be in (0, 1]", ErrInvalidParameter, p.TaperRatio)
	case !(p.ThicknessScale > 0):
		return fmt.Errorf("%w: thickness scale %v must be positive", ErrInvalidParameter, p.ThicknessScale)
	case p.Stations < MinStations:
		return fmt.Errorf("%w: need at least %d chord stations for a loftable outline, got %d",
			ErrInvalidParameter, MinStations, p.Stations)
	case !(p.ChordScale > 0):
		return fmt.Errorf("%w: chord scale %v must be positive", ErrInvalidParameter, p.ChordScale)
	case math.IsNaN(p.TwistDeg) || math.IsInf(p.TwistDeg, 0):
		return fmt.Errorf("%w: twist %v must be finite", ErrInvalidParameter, p.TwistDeg)
	}
	return nil
}

// fraction returns i/(M-1), the normalised span position of section i.
func (p Params) fraction(i int) float64 {
	return float64(i) / float64(p.Sections-1)
}

// TwistAt returns the twist of section i in radians. Twist grows linearly
// from zero at the root to TwistDeg at the tip.
func (p Params) TwistAt(i int) float64 {
	step := p.TwistDeg * math.Pi / 180 / float64(p.Sections-1)
	return step * float64(i)
}

// ChordAt returns the chord of section i.
func (p Params) ChordAt(i int) float64 {
	return p.RootChord * p.ChordScale * (1 - p.fraction(i)*(1-p.TaperRatio))
}

// ZAt returns the span station of section i.
func (p Params) ZAt(i int) float64 {
	return p.Base.Z + float64(i)*p.Height/float64(p.Sections-1)
}

// Section is one placed airfoil outline.
type Section struct {
	Index     int
	Z         float64  // span station
	Twist     float64  // radians
	Chord     float64  // after taper and de-rating
	Thickness float64  // profile thickness before twist
	Outline   []r3.Vec // closed loop, all points at Z
}

// Rotate turns p about the origin by theta radians.
func Rotate(p r2.Vec, theta float64) r2.Vec {
	sin, cos := math.Sincos(theta)
	return r2.Vec{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Build returns the span's sections ordered root to tip.
func Build(p Params) ([]Section, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sections := make([]Section, 0, p.Sections)
	for i := 0; i < p.Sections; i++ {
		chord := p.ChordAt(i)
		profile, err := airfoil.Generate(chord, p.ThicknessScale, p.Stations)
		if err != nil {
			return nil, fmt.Errorf("span: section %d: %w", i, err)
		}

		twist := p.TwistAt(i)
		z := p.ZAt(i)
		outline := make([]r3.Vec, len(profile))
		for j, pt := range profile {
			r := Rotate(pt, twist)
			outline[j] = r3.Vec{X: p.Base.X + r.X, Y: p.Base.Y + r.Y, Z: z}
		}

		sections = append(sections, Section{
			Index:     i,
			Z:         z,
			Twist:     twist,
			Chord:     chord,
			Thickness: profile.MaxThickness(),
			Outline:   outline,
		})
	}
	return sections, nil
}
