// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, polymesh) turn closed point loops into faces,
// loft and extrude them into solids and combine solids. The kernel
// abstraction allows swapping backends without changing the part recipes.
package kernel

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerateFace is returned when a wire has fewer than three
	// distinct points or encloses no area.
	ErrDegenerateFace = errors.New("kernel: degenerate face")
	// ErrNonPlanar is returned when a wire's points do not share a plane
	// the backend can represent.
	ErrNonPlanar = errors.New("kernel: non-planar face")
	// ErrTooFewSections is returned by Loft for fewer than two faces.
	ErrTooFewSections = errors.New("kernel: loft needs at least two sections")
	// ErrUnsupported is returned for operations a backend cannot perform.
	ErrUnsupported = errors.New("kernel: operation not supported by backend")
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Face is a planar region bounded by one closed wire.
type Face interface {
	// Wire returns the boundary loop, without a repeated closing point.
	Wire() []r3.Vec
}

// LoftOptions controls how Loft joins its sections. Lofts are always
// open-ended: the last section is never connected back to the first.
type LoftOptions struct {
	Solid bool // cap the end sections to make a closed solid
	Ruled bool // straight rulings between consecutive sections
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Faces and sweeps
	Face(points []r3.Vec) (Face, error)
	Loft(faces []Face, opts LoftOptions) (Solid, error)
	Extrude(f Face, dir r3.Vec) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, v r3.Vec) Solid
	Rotate(s Solid, origin, axis r3.Vec, degrees float64) Solid
	Mirror(s Solid, origin, normal r3.Vec) (Solid, error)

	// Fillet rounds the edges of s that run parallel to edgeAxis.
	Fillet(s Solid, radius float64, edgeAxis r3.Vec) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// TopCenter returns the centre of the solid's bounding box in X and Y at
// its maximum Z.
func TopCenter(s Solid) r3.Vec {
	b := Box(s)
	c := b.Center()
	c.Z = b.Max.Z
	return c
}

// Box converts a solid's bounding box to a gonum box.
func Box(s Solid) r3.Box {
	min, max := s.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: r3.Vec{X: max[0], Y: max[1], Z: max[2]},
	}
}

// OpenWire strips a trailing point equal to the first, so callers may pass
// either open or explicitly closed loops.
func OpenWire(points []r3.Vec) []r3.Vec {
	if n := len(points); n > 1 && points[0] == points[n-1] {
		return points[:n-1]
	}
	return points
}

// Distinct returns the number of distinct consecutive points in a loop,
// treating the loop as closed.
func Distinct(points []r3.Vec, eps float64) int {
	n := 0
	for i, p := range points {
		q := points[(i+1)%len(points)]
		if r3.Norm(r3.Sub(p, q)) > eps {
			n++
		}
	}
	return n
}

// Cardinal reports which coordinate axis v is parallel to: 0, 1 or 2 for
// X, Y or Z, or -1 if v is not axis-aligned.
func Cardinal(v r3.Vec) int {
	const eps = 1e-12
	nx, ny, nz := abs(v.X) > eps, abs(v.Y) > eps, abs(v.Z) > eps
	switch {
	case nx && !ny && !nz:
		return 0
	case !nx && ny && !nz:
		return 1
	case !nx && !ny && nz:
		return 2
	}
	return -1
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
