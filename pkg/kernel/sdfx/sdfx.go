// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Signed distance fields cannot represent open shells, so only solid lofts
// are supported. Faces must lie in a plane parallel to XY; lofts run along
// Z and extrusions run along ±Z. Extruded solids remember their 2D profile
// while they stay prisms, which is what makes Fillet possible.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// planeEps is the tolerance on z when checking that a face is XY-parallel.
const planeEps = 1e-9

// sdfxFace is a closed polygon in the plane z = const.
type sdfxFace struct {
	points []r3.Vec
	z      float64
	s      sdf.SDF2
}

func (f *sdfxFace) Wire() []r3.Vec { return f.points }

// prism records the 2D profile of a solid extruded along Z between z0 and z1.
type prism struct {
	profile sdf.SDF2
	z0, z1  float64
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s     sdf.SDF3
	prism *prism // nil once the solid is no longer a Z prism
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// IsPrism reports whether the solid is still a Z-extruded profile.
func (s *sdfxSolid) IsPrism() bool { return s.prism != nil }

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution along the longest axis.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: DefaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// MeshCells returns the configured marching cubes resolution.
func (k *SdfxKernel) MeshCells() int { return k.cells }

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok || ss == nil {
		return nil, fmt.Errorf("sdfx: foreign solid %T: %w", s, kernel.ErrUnsupported)
	}
	return ss, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) *sdfxSolid {
	return &sdfxSolid{s: s}
}

// extrude builds a prism solid from a profile between z0 and z1.
func extrude(profile sdf.SDF2, z0, z1 float64) *sdfxSolid {
	s := sdf.Extrude3D(profile, z1-z0)
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: (z0 + z1) / 2}))
	return &sdfxSolid{s: s, prism: &prism{profile: profile, z0: z0, z1: z1}}
}

// Face builds a polygon face from a closed loop of points in an XY-parallel
// plane.
func (k *SdfxKernel) Face(points []r3.Vec) (kernel.Face, error) {
	pts := kernel.OpenWire(points)
	if len(pts) < 3 || kernel.Distinct(pts, 1e-12) < 3 {
		return nil, fmt.Errorf("sdfx: %d distinct points: %w", kernel.Distinct(pts, 1e-12), kernel.ErrDegenerateFace)
	}
	z := pts[0].Z
	vs := make([]v2.Vec, len(pts))
	area := 0.0
	for i, p := range pts {
		if math.Abs(p.Z-z) > planeEps*(1+math.Abs(z)) {
			return nil, fmt.Errorf("sdfx: point %d at z=%g, face plane z=%g: %w", i, p.Z, z, kernel.ErrNonPlanar)
		}
		vs[i] = v2.Vec{X: p.X, Y: p.Y}
		q := pts[(i+1)%len(pts)]
		area += p.X*q.Y - q.X*p.Y
	}
	if math.Abs(area) < 1e-12 {
		return nil, fmt.Errorf("sdfx: zero-area wire: %w", kernel.ErrDegenerateFace)
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("sdfx: polygon: %w", err)
	}
	return &sdfxFace{points: pts, z: z, s: s}, nil
}

func asFaces(faces []kernel.Face) ([]*sdfxFace, error) {
	out := make([]*sdfxFace, len(faces))
	for i, f := range faces {
		sf, ok := f.(*sdfxFace)
		if !ok || sf == nil {
			return nil, fmt.Errorf("sdfx: face %d is %T: %w", i, f, kernel.ErrUnsupported)
		}
		out[i] = sf
	}
	return out, nil
}

// Loft joins the faces with piecewise-linear segments between consecutive
// sections. Section planes must be strictly monotonic in z; a descending
// sequence is lofted in reverse, which yields the same solid. Open lofts
// cannot be represented as a distance field.
func (k *SdfxKernel) Loft(faces []kernel.Face, opts kernel.LoftOptions) (kernel.Solid, error) {
	if len(faces) < 2 {
		return nil, kernel.ErrTooFewSections
	}
	if !opts.Solid {
		return nil, fmt.Errorf("sdfx: open loft: %w", kernel.ErrUnsupported)
	}
	fs, err := asFaces(faces)
	if err != nil {
		return nil, err
	}
	if fs[1].z < fs[0].z {
		rev := make([]*sdfxFace, len(fs))
		for i, f := range fs {
			rev[len(fs)-1-i] = f
		}
		fs = rev
	}

	segments := make([]sdf.SDF3, 0, len(fs)-1)
	for i := 1; i < len(fs); i++ {
		lo, hi := fs[i-1], fs[i]
		dz := hi.z - lo.z
		if dz <= planeEps {
			return nil, fmt.Errorf("sdfx: section %d at z=%g not above z=%g: %w", i, hi.z, lo.z, kernel.ErrUnsupported)
		}
		seg, err := sdf.Loft3D(lo.s, hi.s, dz, 0)
		if err != nil {
			return nil, fmt.Errorf("sdfx: loft segment %d: %w", i, err)
		}
		segments = append(segments, sdf.Transform3D(seg, sdf.Translate3d(v3.Vec{Z: (lo.z + hi.z) / 2})))
	}
	if len(segments) == 1 {
		return wrap(segments[0]), nil
	}
	return wrap(sdf.Union3D(segments...)), nil
}

// Extrude sweeps a face along dir, which must be parallel to Z.
func (k *SdfxKernel) Extrude(f kernel.Face, dir r3.Vec) (kernel.Solid, error) {
	fs, err := asFaces([]kernel.Face{f})
	if err != nil {
		return nil, err
	}
	if kernel.Cardinal(dir) != 2 {
		return nil, fmt.Errorf("sdfx: extrude direction %v: %w", dir, kernel.ErrUnsupported)
	}
	z0, z1 := fs[0].z, fs[0].z+dir.Z
	if z1 < z0 {
		z0, z1 = z1, z0
	}
	return extrude(fs[0].s, z0, z1), nil
}

// samePrism reports whether both solids are prisms over the same z range.
func samePrism(a, b *sdfxSolid) bool {
	return a.prism != nil && b.prism != nil &&
		math.Abs(a.prism.z0-b.prism.z0) < planeEps &&
		math.Abs(a.prism.z1-b.prism.z1) < planeEps
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	if samePrism(sa, sb) {
		return extrude(sdf.Union2D(sa.prism.profile, sb.prism.profile), sa.prism.z0, sa.prism.z1), nil
	}
	return wrap(sdf.Union3D(sa.s, sb.s)), nil
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	if samePrism(sa, sb) {
		return extrude(sdf.Difference2D(sa.prism.profile, sb.prism.profile), sa.prism.z0, sa.prism.z1), nil
	}
	return wrap(sdf.Difference3D(sa.s, sb.s)), nil
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	ss, err := unwrap(s)
	if err != nil {
		return s
	}
	if ss.prism != nil {
		p := sdf.Transform2D(ss.prism.profile, sdf.Translate2d(v2.Vec{X: v.X, Y: v.Y}))
		return extrude(p, ss.prism.z0+v.Z, ss.prism.z1+v.Z)
	}
	return wrap(sdf.Transform3D(ss.s, sdf.Translate3d(toV3(v))))
}

// Rotate rotates a solid by degrees about the axis through origin.
func (k *SdfxKernel) Rotate(s kernel.Solid, origin, axis r3.Vec, degrees float64) kernel.Solid {
	ss, err := unwrap(s)
	if err != nil {
		return s
	}
	rad := degrees * math.Pi / 180.0
	if ss.prism != nil && kernel.Cardinal(axis) == 2 {
		if axis.Z < 0 {
			rad = -rad
		}
		o := v2.Vec{X: origin.X, Y: origin.Y}
		m := sdf.Translate2d(o).Mul(sdf.Rotate2d(rad)).Mul(sdf.Translate2d(o.Neg()))
		return extrude(sdf.Transform2D(ss.prism.profile, m), ss.prism.z0, ss.prism.z1)
	}
	o := toV3(origin)
	m := sdf.Translate3d(o).Mul(sdf.Rotate3d(toV3(axis), rad)).Mul(sdf.Translate3d(o.Neg()))
	return wrap(sdf.Transform3D(ss.s, m))
}

// Mirror reflects a solid across the plane through origin with the given
// normal. Only axis-aligned normals are supported.
func (k *SdfxKernel) Mirror(s kernel.Solid, origin, normal r3.Vec) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	axis := kernel.Cardinal(normal)
	if ss.prism != nil && axis != 2 && axis != -1 {
		o := v2.Vec{X: origin.X, Y: origin.Y}
		flip := sdf.MirrorY() // reflect x
		if axis == 1 {
			flip = sdf.MirrorX() // reflect y
		}
		m := sdf.Translate2d(o).Mul(flip).Mul(sdf.Translate2d(o.Neg()))
		return extrude(sdf.Transform2D(ss.prism.profile, m), ss.prism.z0, ss.prism.z1), nil
	}

	var flip sdf.M44
	switch axis {
	case 0:
		flip = sdf.MirrorYZ()
	case 1:
		flip = sdf.MirrorXZ()
	case 2:
		flip = sdf.MirrorXY()
	default:
		return nil, fmt.Errorf("sdfx: mirror normal %v: %w", normal, kernel.ErrUnsupported)
	}
	o := toV3(origin)
	m := sdf.Translate3d(o).Mul(flip).Mul(sdf.Translate3d(o.Neg()))
	return wrap(sdf.Transform3D(ss.s, m)), nil
}

// Fillet rounds the vertical edges of a Z prism by offsetting its profile
// in and out. Both convex and concave corners are rounded.
func (k *SdfxKernel) Fillet(s kernel.Solid, radius float64, edgeAxis r3.Vec) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sdfx: fillet radius %g must be positive", radius)
	}
	if ss.prism == nil || kernel.Cardinal(edgeAxis) != 2 {
		return nil, fmt.Errorf("sdfx: fillet needs a Z prism and Z edges: %w", kernel.ErrUnsupported)
	}
	p := ss.prism.profile
	p = sdf.Offset2D(sdf.Offset2D(p, -radius), radius) // convex corners
	p = sdf.Offset2D(sdf.Offset2D(p, radius), -radius) // concave corners
	return extrude(p, ss.prism.z0, ss.prism.z1), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(ss.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

func toV3(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
