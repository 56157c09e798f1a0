// Package polymesh implements kernel.Kernel with explicit triangle meshes.
//
// It is the backend for open lofts, which a distance field cannot
// represent. Faces may lie in any plane. Lofts, extrusions and rigid
// transforms are exact on the polygon vertices; booleans and fillets are
// not available.
package polymesh

import (
	"fmt"
	"math"

	"github.com/chazu/spanloft/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*MeshKernel)(nil)

// DefaultSmoothSteps is the number of interpolated rings inserted between
// consecutive sections of a smooth loft.
const DefaultSmoothSteps = 4

// planarTol is the plane-distance tolerance relative to the face extent.
const planarTol = 1e-6

type meshFace struct {
	ring   []r3.Vec
	normal r3.Vec // unit Newell normal
}

func (f *meshFace) Wire() []r3.Vec { return f.ring }

// meshSolid is a triangle soup over shared vertices.
type meshSolid struct {
	verts  []r3.Vec
	tris   [][3]int
	closed bool
}

// BoundingBox returns the axis-aligned bounding box.
func (s *meshSolid) BoundingBox() (min, max [3]float64) {
	if len(s.verts) == 0 {
		return min, max
	}
	lo, hi := s.verts[0], s.verts[0]
	for _, v := range s.verts[1:] {
		lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// Closed reports whether the solid is capped at both ends.
func (s *meshSolid) Closed() bool { return s.closed }

// volume returns the signed enclosed volume. It is only meaningful for
// closed solids.
func (s *meshSolid) volume() float64 {
	v := 0.0
	for _, t := range s.tris {
		a, b, c := s.verts[t[0]], s.verts[t[1]], s.verts[t[2]]
		v += r3.Dot(a, r3.Cross(b, c))
	}
	return v / 6
}

func (s *meshSolid) flip() {
	for i := range s.tris {
		s.tris[i][1], s.tris[i][2] = s.tris[i][2], s.tris[i][1]
	}
}

func (s *meshSolid) mapVerts(fn func(r3.Vec) r3.Vec) *meshSolid {
	out := &meshSolid{
		verts:  make([]r3.Vec, len(s.verts)),
		tris:   make([][3]int, len(s.tris)),
		closed: s.closed,
	}
	for i, v := range s.verts {
		out.verts[i] = fn(v)
	}
	copy(out.tris, s.tris)
	return out
}

// MeshKernel implements kernel.Kernel on polyhedral meshes.
type MeshKernel struct {
	steps int
}

// Option configures a MeshKernel.
type Option func(*MeshKernel)

// WithSmoothSteps sets how many rings are interpolated between sections of
// a smooth loft. Zero makes every loft ruled.
func WithSmoothSteps(n int) Option {
	return func(k *MeshKernel) {
		if n >= 0 {
			k.steps = n
		}
	}
}

// New returns a new MeshKernel.
func New(opts ...Option) *MeshKernel {
	k := &MeshKernel{steps: DefaultSmoothSteps}
	for _, o := range opts {
		o(k)
	}
	return k
}

func unwrap(s kernel.Solid) (*meshSolid, error) {
	ms, ok := s.(*meshSolid)
	if !ok || ms == nil {
		return nil, fmt.Errorf("polymesh: foreign solid %T: %w", s, kernel.ErrUnsupported)
	}
	return ms, nil
}

// newell returns the (unnormalised) Newell normal of a closed ring.
func newell(ring []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

func centroid(ring []r3.Vec) r3.Vec {
	var c r3.Vec
	for _, p := range ring {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(ring)), c)
}

// Face builds a planar face from a closed loop of points.
func (k *MeshKernel) Face(points []r3.Vec) (kernel.Face, error) {
	ring := kernel.OpenWire(points)
	if len(ring) < 3 || kernel.Distinct(ring, 1e-12) < 3 {
		return nil, fmt.Errorf("polymesh: %d distinct points: %w", kernel.Distinct(ring, 1e-12), kernel.ErrDegenerateFace)
	}
	n := newell(ring)
	if r3.Norm(n) < 1e-12 {
		return nil, fmt.Errorf("polymesh: zero-area wire: %w", kernel.ErrDegenerateFace)
	}
	n = r3.Unit(n)

	c := centroid(ring)
	extent := 0.0
	for _, p := range ring {
		extent = math.Max(extent, r3.Norm(r3.Sub(p, c)))
	}
	for i, p := range ring {
		if d := math.Abs(r3.Dot(r3.Sub(p, c), n)); d > planarTol*extent {
			return nil, fmt.Errorf("polymesh: point %d is %g off the face plane: %w", i, d, kernel.ErrNonPlanar)
		}
	}
	out := make([]r3.Vec, len(ring))
	copy(out, ring)
	return &meshFace{ring: out, normal: n}, nil
}

// resample returns n points spaced evenly by arc length around a closed
// ring, starting at ring[0].
func resample(ring []r3.Vec, n int) []r3.Vec {
	if len(ring) == n {
		return ring
	}
	cum := make([]float64, len(ring)+1)
	for i, p := range ring {
		cum[i+1] = cum[i] + r3.Norm(r3.Sub(ring[(i+1)%len(ring)], p))
	}
	total := cum[len(ring)]
	out := make([]r3.Vec, n)
	seg := 0
	for j := 0; j < n; j++ {
		s := total * float64(j) / float64(n)
		for seg < len(ring)-1 && cum[seg+1] < s {
			seg++
		}
		l := cum[seg+1] - cum[seg]
		t := 0.0
		if l > 0 {
			t = (s - cum[seg]) / l
		}
		a, b := ring[seg], ring[(seg+1)%len(ring)]
		out[j] = r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
	}
	return out
}

// catmullRom interpolates between p1 and p2 at t in [0,1].
func catmullRom(p0, p1, p2, p3 r3.Vec, t float64) r3.Vec {
	t2, t3 := t*t, t*t*t
	v := r3.Scale(2, p1)
	v = r3.Add(v, r3.Scale(t, r3.Sub(p2, p0)))
	v = r3.Add(v, r3.Scale(t2, r3.Add(r3.Sub(r3.Scale(2, p0), r3.Scale(5, p1)), r3.Sub(r3.Scale(4, p2), p3))))
	v = r3.Add(v, r3.Scale(t3, r3.Add(r3.Sub(r3.Scale(3, p1), p0), r3.Sub(p3, r3.Scale(3, p2)))))
	return r3.Scale(0.5, v)
}

// smooth inserts steps interpolated rings between each pair of rings.
func smooth(rings [][]r3.Vec, steps int) [][]r3.Vec {
	last := len(rings) - 1
	out := make([][]r3.Vec, 0, len(rings)+last*steps)
	for i := 0; i < last; i++ {
		p0, p1, p2, p3 := rings[max(i-1, 0)], rings[i], rings[i+1], rings[min(i+2, last)]
		out = append(out, p1)
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps+1)
			ring := make([]r3.Vec, len(p1))
			for j := range ring {
				ring[j] = catmullRom(p0[j], p1[j], p2[j], p3[j], t)
			}
			out = append(out, ring)
		}
	}
	return append(out, rings[last])
}

// skin connects consecutive rings with quads and optionally caps the ends.
func skin(rings [][]r3.Vec, capped bool) *meshSolid {
	n := len(rings[0])
	s := &meshSolid{closed: capped}
	for _, r := range rings {
		s.verts = append(s.verts, r...)
	}
	for i := 0; i+1 < len(rings); i++ {
		lo, hi := i*n, (i+1)*n
		for j := 0; j < n; j++ {
			jn := (j + 1) % n
			s.tris = append(s.tris,
				[3]int{lo + j, lo + jn, hi + jn},
				[3]int{lo + j, hi + jn, hi + j},
			)
		}
	}
	if capped {
		first, lastRing := 0, (len(rings)-1)*n
		c0 := len(s.verts)
		s.verts = append(s.verts, centroid(rings[0]))
		c1 := len(s.verts)
		s.verts = append(s.verts, centroid(rings[len(rings)-1]))
		for j := 0; j < n; j++ {
			jn := (j + 1) % n
			s.tris = append(s.tris,
				[3]int{c0, first + jn, first + j},
				[3]int{c1, lastRing + j, lastRing + jn},
			)
		}
		if s.volume() < 0 {
			s.flip()
		}
	}
	return s
}

// Loft skins the faces in order. The first and last sections are never
// joined to each other.
func (k *MeshKernel) Loft(faces []kernel.Face, opts kernel.LoftOptions) (kernel.Solid, error) {
	if len(faces) < 2 {
		return nil, kernel.ErrTooFewSections
	}
	fs := make([]*meshFace, len(faces))
	n := 0
	for i, f := range faces {
		mf, ok := f.(*meshFace)
		if !ok || mf == nil {
			return nil, fmt.Errorf("polymesh: face %d is %T: %w", i, f, kernel.ErrUnsupported)
		}
		fs[i] = mf
		n = max(n, len(mf.ring))
	}

	rings := make([][]r3.Vec, len(fs))
	for i, f := range fs {
		ring := f.ring
		// Keep every ring wound like the first so the skin does not twist
		// through itself.
		if i > 0 && r3.Dot(f.normal, fs[0].normal) < 0 {
			ring = reverseKeepStart(ring)
		}
		rings[i] = resample(ring, n)
	}
	if !opts.Ruled && len(rings) >= 3 && k.steps > 0 {
		rings = smooth(rings, k.steps)
	}
	return skin(rings, opts.Solid), nil
}

func reverseKeepStart(ring []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(ring))
	out[0] = ring[0]
	for i := 1; i < len(ring); i++ {
		out[i] = ring[len(ring)-i]
	}
	return out
}

// Extrude sweeps a face along dir into a capped prism.
func (k *MeshKernel) Extrude(f kernel.Face, dir r3.Vec) (kernel.Solid, error) {
	mf, ok := f.(*meshFace)
	if !ok || mf == nil {
		return nil, fmt.Errorf("polymesh: face is %T: %w", f, kernel.ErrUnsupported)
	}
	if r3.Norm(dir) < 1e-12 {
		return nil, fmt.Errorf("polymesh: zero extrusion: %w", kernel.ErrDegenerateFace)
	}
	top := make([]r3.Vec, len(mf.ring))
	for i, p := range mf.ring {
		top[i] = r3.Add(p, dir)
	}
	return skin([][]r3.Vec{mf.ring, top}, true), nil
}

// Union is not supported on meshes.
func (k *MeshKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return nil, fmt.Errorf("polymesh: union: %w", kernel.ErrUnsupported)
}

// Difference is not supported on meshes.
func (k *MeshKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return nil, fmt.Errorf("polymesh: difference: %w", kernel.ErrUnsupported)
}

// Translate moves a solid by v.
func (k *MeshKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	ms, err := unwrap(s)
	if err != nil {
		return s
	}
	return ms.mapVerts(func(p r3.Vec) r3.Vec { return r3.Add(p, v) })
}

// Rotate rotates a solid by degrees about the axis through origin.
func (k *MeshKernel) Rotate(s kernel.Solid, origin, axis r3.Vec, degrees float64) kernel.Solid {
	ms, err := unwrap(s)
	if err != nil {
		return s
	}
	rot := r3.NewRotation(degrees*math.Pi/180, axis)
	return ms.mapVerts(func(p r3.Vec) r3.Vec {
		return r3.Add(origin, rot.Rotate(r3.Sub(p, origin)))
	})
}

// Mirror reflects a solid across the plane through origin with the given
// normal. Triangle winding is reversed so normals still point outward.
func (k *MeshKernel) Mirror(s kernel.Solid, origin, normal r3.Vec) (kernel.Solid, error) {
	ms, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if r3.Norm(normal) < 1e-12 {
		return nil, fmt.Errorf("polymesh: zero mirror normal: %w", kernel.ErrUnsupported)
	}
	n := r3.Unit(normal)
	out := ms.mapVerts(func(p r3.Vec) r3.Vec {
		d := r3.Dot(r3.Sub(p, origin), n)
		return r3.Sub(p, r3.Scale(2*d, n))
	})
	out.flip()
	return out, nil
}

// Fillet is not supported on meshes.
func (k *MeshKernel) Fillet(s kernel.Solid, radius float64, edgeAxis r3.Vec) (kernel.Solid, error) {
	return nil, fmt.Errorf("polymesh: fillet: %w", kernel.ErrUnsupported)
}

// ToMesh flattens the solid into a mesh with one face normal per triangle.
func (k *MeshKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	numVerts := len(ms.tris) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, t := range ms.tris {
		a, b, c := ms.verts[t[0]], ms.verts[t[1]], ms.verts[t[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm(n) > 0 {
			n = r3.Unit(n)
		}
		for j, v := range [3]r3.Vec{a, b, c} {
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			indices = append(indices, uint32(i*3+j))
		}
	}
	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
