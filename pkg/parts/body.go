package parts

import (
	"fmt"
	"math"

	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCutoutNudge lifts each cutout square off its inclined face so the
// cut does not share a boundary with the face.
const DefaultCutoutNudge = 0.01

var (
	axisX = r3.Vec{X: 1}
	axisZ = r3.Vec{Z: 1}
)

// Flange is a rectangular plate fused onto the rotated body. It is centred
// on X and on the middle of the body's length along Y.
type Flange struct {
	Width     float64 `yaml:"width"`     // along X
	Depth     float64 `yaml:"depth"`     // along Y
	ZStart    float64 `yaml:"z_start"`   // bottom face
	Thickness float64 `yaml:"thickness"` // along +Z
}

// BodyParams describes the LPT root body: a trapezoid prism with square
// cutouts along both inclined faces, plus two flanges.
type BodyParams struct {
	BaseWidth      float64   `yaml:"base_width"`
	TopWidth       float64   `yaml:"top_width"`
	Height         float64   `yaml:"height"`
	Length         float64   `yaml:"length"` // extrusion length
	CutoutSide     float64   `yaml:"cutout_side"`
	CutoutStations []float64 `yaml:"cutout_stations"` // fractions from top edge to base edge
	CutoutNudge    float64   `yaml:"cutout_nudge"`
	FilletRadius   float64   `yaml:"fillet_radius"` // 0 disables the fillet
	LowerFlange    Flange    `yaml:"lower_flange"`
	UpperFlange    Flange    `yaml:"upper_flange"`
}

// DefaultBodyParams returns the root body of the LPT blade.
func DefaultBodyParams() BodyParams {
	const base, length = 40.0, 50.0
	return BodyParams{
		BaseWidth:      base,
		TopWidth:       20,
		Height:         30,
		Length:         length,
		CutoutSide:     3.5,
		CutoutStations: []float64{0.8, 0.55, 0.3},
		CutoutNudge:    DefaultCutoutNudge,
		FilletRadius:   1.0,
		LowerFlange:    Flange{Width: 0.5 * base, Depth: 0.7 * length, ZStart: 0, Thickness: 10},
		UpperFlange:    Flange{Width: base, Depth: length, ZStart: 10, Thickness: 5},
	}
}

// Validate checks the body dimensions.
func (p BodyParams) Validate() error {
	switch {
	case !(p.BaseWidth > 0) || !(p.TopWidth > 0) || !(p.Height > 0) || !(p.Length > 0):
		return fmt.Errorf("%w: body dimensions %vx%vx%vx%v must be positive",
			ErrInvalidParameter, p.BaseWidth, p.TopWidth, p.Height, p.Length)
	case p.TopWidth >= p.BaseWidth:
		return fmt.Errorf("%w: top width %v must be narrower than base width %v",
			ErrInvalidParameter, p.TopWidth, p.BaseWidth)
	case len(p.CutoutStations) > 0 && !(p.CutoutSide > 0):
		return fmt.Errorf("%w: cutout side %v must be positive", ErrInvalidParameter, p.CutoutSide)
	case p.FilletRadius < 0:
		return fmt.Errorf("%w: fillet radius %v must not be negative", ErrInvalidParameter, p.FilletRadius)
	}
	for i, s := range p.CutoutStations {
		if s < 0 || s > 1 {
			return fmt.Errorf("%w: cutout station %d = %v outside [0, 1]", ErrInvalidParameter, i, s)
		}
	}
	for _, f := range p.flanges() {
		if !(f.Width > 0) || !(f.Depth > 0) || !(f.Thickness > 0) {
			return fmt.Errorf("%w: %s flange %vx%vx%v must be positive",
				ErrInvalidParameter, f.name, f.Width, f.Depth, f.Thickness)
		}
	}
	return nil
}

type namedFlange struct {
	Flange
	name string
}

// flanges lists the flanges in the order they are fused.
func (p BodyParams) flanges() []namedFlange {
	return []namedFlange{{p.LowerFlange, "lower"}, {p.UpperFlange, "upper"}}
}

// slope returns the gradient of the left inclined face and its y-intercept.
func (p BodyParams) slope() (m, c float64) {
	m = p.Height / (p.BaseWidth/2 - p.TopWidth/2)
	c = p.Height - m*(-p.TopWidth/2)
	return m, c
}

// CutoutX maps a station fraction to the x position of a cutout on the left
// inclined face. Zero is the top edge and one is the base edge.
func (p BodyParams) CutoutX(station float64) float64 {
	return -(p.TopWidth/2 + station*(p.BaseWidth/2-p.TopWidth/2))
}

// prism builds a polygon at z=0 and extrudes it by length along +Z.
func prism(k kernel.Kernel, length float64, pts ...r3.Vec) (kernel.Solid, error) {
	f, err := k.Face(pts)
	if err != nil {
		return nil, err
	}
	return k.Extrude(f, r3.Vec{Z: length})
}

// cutout builds one square cut, tilted to the left face and lifted onto it.
func cutout(k kernel.Kernel, p BodyParams, station float64) (kernel.Solid, error) {
	s := p.CutoutSide
	sq, err := prism(k, p.Length,
		r3.Vec{}, r3.Vec{X: s}, r3.Vec{X: s, Y: -s}, r3.Vec{Y: -s})
	if err != nil {
		return nil, err
	}
	m, c := p.slope()
	tilt := math.Atan(m) * 180 / math.Pi
	sq = k.Rotate(sq, r3.Vec{}, axisZ, tilt)

	x := p.CutoutX(station)
	return k.Translate(sq, r3.Vec{X: x, Y: m*x + c + p.CutoutNudge}), nil
}

func flange(k kernel.Kernel, f Flange, centerY float64) (kernel.Solid, error) {
	w, d := f.Width/2, f.Depth/2
	face, err := k.Face([]r3.Vec{
		{X: -w, Y: centerY - d, Z: f.ZStart},
		{X: w, Y: centerY - d, Z: f.ZStart},
		{X: w, Y: centerY + d, Z: f.ZStart},
		{X: -w, Y: centerY + d, Z: f.ZStart},
	})
	if err != nil {
		return nil, err
	}
	return k.Extrude(face, r3.Vec{Z: f.Thickness})
}

// RootBody builds the LPT root body. The trapezoid is cut on both inclined
// faces, its Z edges are rounded if the kernel can do it, and it is turned
// -90° about X before the flanges are fused on.
func RootBody(k kernel.Kernel, p BodyParams, log zerolog.Logger) (kernel.Solid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b, t := p.BaseWidth/2, p.TopWidth/2
	body, err := prism(k, p.Length,
		r3.Vec{X: -b}, r3.Vec{X: b}, r3.Vec{X: t, Y: p.Height}, r3.Vec{X: -t, Y: p.Height})
	if err != nil {
		return nil, fmt.Errorf("parts: trapezoid: %w", err)
	}

	cuts := make([]kernel.Solid, 0, len(p.CutoutStations))
	for _, st := range p.CutoutStations {
		c, err := cutout(k, p, st)
		if err != nil {
			return nil, fmt.Errorf("parts: cutout at %v: %w", st, err)
		}
		if body, err = k.Difference(body, c); err != nil {
			return nil, fmt.Errorf("parts: cut at %v: %w", st, err)
		}
		cuts = append(cuts, c)
	}
	for i, c := range cuts {
		m, err := k.Mirror(c, r3.Vec{}, axisX)
		if err != nil {
			return nil, fmt.Errorf("parts: mirror cutout %d: %w", i, err)
		}
		if body, err = k.Difference(body, m); err != nil {
			return nil, fmt.Errorf("parts: mirrored cut %d: %w", i, err)
		}
	}
	log.Debug().Int("cutouts", 2*len(cuts)).Msg("root body cut")

	if p.FilletRadius > 0 {
		rounded, err := k.Fillet(body, p.FilletRadius, axisZ)
		if err != nil {
			log.Warn().Err(err).Float64("radius", p.FilletRadius).Msg("fillet failed, keeping sharp edges")
		} else {
			body = rounded
		}
	}

	body = k.Rotate(body, r3.Vec{}, axisX, -90)

	for _, f := range p.flanges() {
		fl, err := flange(k, f.Flange, p.Length/2)
		if err != nil {
			return nil, fmt.Errorf("parts: %s flange: %w", f.name, err)
		}
		if body, err = k.Union(body, fl); err != nil {
			return nil, fmt.Errorf("parts: fuse %s flange: %w", f.name, err)
		}
	}
	return body, nil
}
