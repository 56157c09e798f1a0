package parts

import (
	"fmt"
	"math"

	"github.com/chazu/spanloft/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEllipseSegments is the number of points used to trace an ellipse.
const DefaultEllipseSegments = 72

// Ellipse is an elliptical section in a plane parallel to XY, with its
// major axis along X.
type Ellipse struct {
	Center   r3.Vec  `yaml:"center"`
	Major    float64 `yaml:"major"` // semi-major radius
	Minor    float64 `yaml:"minor"` // semi-minor radius
	Segments int     `yaml:"segments"`
}

// Validate rejects non-positive radii and a minor radius larger than the
// major radius.
func (e Ellipse) Validate() error {
	switch {
	case !(e.Major > 0) || !(e.Minor > 0):
		return fmt.Errorf("%w: ellipse radii major=%v minor=%v must both be positive",
			ErrInvalidParameter, e.Major, e.Minor)
	case e.Minor > e.Major:
		return fmt.Errorf("%w: ellipse minor radius %v exceeds major radius %v",
			ErrInvalidParameter, e.Minor, e.Major)
	case e.Segments != 0 && e.Segments < 3:
		return fmt.Errorf("%w: ellipse needs at least 3 segments, got %d",
			ErrInvalidParameter, e.Segments)
	}
	return nil
}

// Points traces the ellipse counter-clockwise starting on the +X end of
// the major axis. A zero segment count uses DefaultEllipseSegments.
func (e Ellipse) Points() []r3.Vec {
	n := e.Segments
	if n == 0 {
		n = DefaultEllipseSegments
	}
	pts := make([]r3.Vec, n)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = r3.Vec{
			X: e.Center.X + e.Major*cos,
			Y: e.Center.Y + e.Minor*sin,
			Z: e.Center.Z,
		}
	}
	return pts
}

// EllipseLoftOptions is how elliptical sections are joined: an open,
// smooth skin with both ends left uncapped.
var EllipseLoftOptions = kernel.LoftOptions{Solid: false, Ruled: false}

// MinSectionGap is the smallest z distance allowed between consecutive loft
// sections.
const MinSectionGap = 1e-6

// ValidateStack checks that sections step strictly up or strictly down in
// z, each at least MinSectionGap from the one before.
func ValidateStack(sections []Ellipse) error {
	var dir float64
	for i := 1; i < len(sections); i++ {
		dz := sections[i].Center.Z - sections[i-1].Center.Z
		if math.Abs(dz) < MinSectionGap {
			return fmt.Errorf("%w: ellipse sections %d and %d share the plane z=%v",
				ErrInvalidParameter, i-1, i, sections[i].Center.Z)
		}
		if dir != 0 && (dz > 0) != (dir > 0) {
			return fmt.Errorf("%w: ellipse section %d at z=%v reverses the stacking direction",
				ErrInvalidParameter, i, sections[i].Center.Z)
		}
		dir = dz
	}
	return nil
}

// LoftEllipses validates every section, then lofts them in order. Nothing is
// handed to the kernel unless all sections are valid.
func LoftEllipses(k kernel.Kernel, sections []Ellipse, opts kernel.LoftOptions) (kernel.Solid, error) {
	if len(sections) < 2 {
		return nil, fmt.Errorf("%w: ellipse loft needs at least 2 sections, got %d",
			ErrInvalidParameter, len(sections))
	}
	for i, e := range sections {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("ellipse %d: %w", i, err)
		}
	}
	if err := ValidateStack(sections); err != nil {
		return nil, err
	}
	faces := make([]kernel.Face, len(sections))
	for i, e := range sections {
		f, err := k.Face(e.Points())
		if err != nil {
			return nil, fmt.Errorf("parts: ellipse %d: %w", i, err)
		}
		faces[i] = f
	}
	s, err := k.Loft(faces, opts)
	if err != nil {
		return nil, fmt.Errorf("parts: ellipse loft: %w", err)
	}
	return s, nil
}

// ReferenceEllipsePairs returns the two reference lofts: a 40x13 ellipse
// rising to a 28x13 ellipse 33 above it, and a 19x9 ellipse descending to a
// 14x9 ellipse 22 below it.
func ReferenceEllipsePairs() [][]Ellipse {
	return [][]Ellipse{
		{
			{Center: r3.Vec{}, Major: 40.0 / 2, Minor: 13.0 / 2},
			{Center: r3.Vec{Z: 33}, Major: 28.0 / 2, Minor: 13.0 / 2},
		},
		{
			{Center: r3.Vec{}, Major: 19.0 / 2, Minor: 9.0 / 2},
			{Center: r3.Vec{Z: -22}, Major: 14.0 / 2, Minor: 9.0 / 2},
		},
	}
}
