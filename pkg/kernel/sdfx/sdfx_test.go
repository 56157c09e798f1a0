package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/spanloft/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// rect returns the corners of an axis-aligned rectangle at height z.
func rect(x0, y0, x1, y1, z float64) []r3.Vec {
	return []r3.Vec{
		{X: x0, Y: y0, Z: z},
		{X: x1, Y: y0, Z: z},
		{X: x1, Y: y1, Z: z},
		{X: x0, Y: y1, Z: z},
	}
}

func box(t *testing.T, k *SdfxKernel, x0, y0, x1, y1, z0, z1 float64) kernel.Solid {
	t.Helper()
	f, err := k.Face(rect(x0, y0, x1, y1, z0))
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	s, err := k.Extrude(f, r3.Vec{Z: z1 - z0})
	if err != nil {
		t.Fatalf("Extrude: %v", err)
	}
	return s
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], wantMax[i])
		}
	}
}

func TestFaceValidation(t *testing.T) {
	k := New()
	tests := []struct {
		name string
		pts  []r3.Vec
		want error
	}{
		{"two points", []r3.Vec{{}, {X: 1}}, kernel.ErrDegenerateFace},
		{"collinear", []r3.Vec{{}, {X: 1}, {X: 2}}, kernel.ErrDegenerateFace},
		{"repeated", []r3.Vec{{}, {}, {}, {}}, kernel.ErrDegenerateFace},
		{"tilted", []r3.Vec{{}, {X: 1}, {X: 1, Y: 1, Z: 1}}, kernel.ErrNonPlanar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Face(tt.pts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Face() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFaceDropsClosingPoint(t *testing.T) {
	k := New()
	pts := rect(0, 0, 1, 1, 3)
	f, err := k.Face(append(pts, pts[0]))
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if len(f.Wire()) != 4 {
		t.Errorf("wire has %d points, want 4", len(f.Wire()))
	}
}

func TestExtrude(t *testing.T) {
	k := New()
	s := box(t, k, 0, 0, 40, 30, 0, 50)
	checkBounds(t, s, [3]float64{0, 0, 0}, [3]float64{40, 30, 50}, 1e-6)
	if !s.(*sdfxSolid).IsPrism() {
		t.Error("extrusion should be a prism")
	}

	f, _ := k.Face(rect(0, 0, 1, 1, 5))
	down, err := k.Extrude(f, r3.Vec{Z: -5})
	if err != nil {
		t.Fatalf("Extrude down: %v", err)
	}
	checkBounds(t, down, [3]float64{0, 0, 0}, [3]float64{1, 1, 5}, 1e-6)

	if _, err := k.Extrude(f, r3.Vec{X: 1}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("Extrude along X error = %v, want ErrUnsupported", err)
	}
}

func TestLoft(t *testing.T) {
	k := New()
	f0, _ := k.Face(rect(-10, -10, 10, 10, 0))
	f1, _ := k.Face(rect(-5, -5, 5, 5, 20))
	f2, _ := k.Face(rect(-2, -2, 2, 2, 30))

	s, err := k.Loft([]kernel.Face{f0, f1, f2}, kernel.LoftOptions{Solid: true})
	if err != nil {
		t.Fatalf("Loft: %v", err)
	}
	checkBounds(t, s, [3]float64{-10, -10, 0}, [3]float64{10, 10, 30}, 1e-6)

	// Descending sections give the same solid.
	rev, err := k.Loft([]kernel.Face{f2, f1, f0}, kernel.LoftOptions{Solid: true})
	if err != nil {
		t.Fatalf("Loft descending: %v", err)
	}
	checkBounds(t, rev, [3]float64{-10, -10, 0}, [3]float64{10, 10, 30}, 1e-6)
}

func TestLoftErrors(t *testing.T) {
	k := New()
	f0, _ := k.Face(rect(0, 0, 1, 1, 0))
	f1, _ := k.Face(rect(0, 0, 1, 1, 10))
	same, _ := k.Face(rect(0, 0, 2, 2, 10))

	if _, err := k.Loft([]kernel.Face{f0}, kernel.LoftOptions{Solid: true}); !errors.Is(err, kernel.ErrTooFewSections) {
		t.Errorf("one section: error = %v, want ErrTooFewSections", err)
	}
	if _, err := k.Loft([]kernel.Face{f0, f1}, kernel.LoftOptions{}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("open loft: error = %v, want ErrUnsupported", err)
	}
	if _, err := k.Loft([]kernel.Face{f0, f1, same}, kernel.LoftOptions{Solid: true}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("coplanar sections: error = %v, want ErrUnsupported", err)
	}
}

func TestDifferenceKeepsPrism(t *testing.T) {
	k := New()
	a := box(t, k, 0, 0, 40, 30, 0, 50)
	b := box(t, k, 10, 10, 20, 20, 0, 50)
	d, err := k.Difference(a, b)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if !d.(*sdfxSolid).IsPrism() {
		t.Error("difference of equal-height prisms should stay a prism")
	}

	c := box(t, k, 10, 10, 20, 20, 10, 20)
	d2, err := k.Difference(a, c)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if d2.(*sdfxSolid).IsPrism() {
		t.Error("difference with a shorter prism should not be a prism")
	}
}

func TestUnion(t *testing.T) {
	k := New(WithMeshCells(40))
	a := box(t, k, 0, 0, 10, 10, 0, 10)
	b := box(t, k, 5, 0, 20, 10, 0, 15)
	u, err := k.Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkBounds(t, u, [3]float64{0, 0, 0}, [3]float64{20, 10, 15}, 1e-6)
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestFillet(t *testing.T) {
	k := New()
	a := box(t, k, 0, 0, 40, 30, 0, 50)
	f, err := k.Fillet(a, 1.0, r3.Vec{Z: 1})
	if err != nil {
		t.Fatalf("Fillet: %v", err)
	}
	if !f.(*sdfxSolid).IsPrism() {
		t.Error("filleted prism should stay a prism")
	}

	if _, err := k.Fillet(a, 1.0, r3.Vec{X: 1}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("X edges: error = %v, want ErrUnsupported", err)
	}
	rotated := k.Rotate(a, r3.Vec{}, r3.Vec{X: 1}, -90)
	if _, err := k.Fillet(rotated, 1.0, r3.Vec{Z: 1}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("non-prism: error = %v, want ErrUnsupported", err)
	}
	if _, err := k.Fillet(a, 0, r3.Vec{Z: 1}); err == nil {
		t.Error("zero radius: expected error")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	s := k.Translate(box(t, k, -5, -5, 5, 5, -5, 5), r3.Vec{X: 100, Y: 200, Z: 300})
	checkBounds(t, s, [3]float64{95, 195, 295}, [3]float64{105, 205, 305}, 1e-6)
}

func TestRotate(t *testing.T) {
	k := New()
	long := box(t, k, -50, -5, 50, 5, -5, 5)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(long, r3.Vec{}, r3.Vec{Z: 1}, 90)
	min, max := rotated.BoundingBox()

	const tol = 1e-6
	if math.Abs(max[0]-min[0]-10) > tol {
		t.Errorf("rotated X extent = %f, expected 10", max[0]-min[0])
	}
	if math.Abs(max[1]-min[1]-100) > tol {
		t.Errorf("rotated Y extent = %f, expected 100", max[1]-min[1])
	}

	// -90 about X maps +Z extrusion onto +Y.
	tall := box(t, k, 0, 0, 10, 30, 0, 50)
	r := k.Rotate(tall, r3.Vec{}, r3.Vec{X: 1}, -90)
	checkBounds(t, r, [3]float64{0, 0, -30}, [3]float64{10, 50, 0}, 1e-6)
}

func TestMirror(t *testing.T) {
	k := New()
	s := box(t, k, 2, 0, 5, 1, 0, 1)

	m, err := k.Mirror(s, r3.Vec{}, r3.Vec{X: 1})
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	checkBounds(t, m, [3]float64{-5, 0, 0}, [3]float64{-2, 1, 1}, 1e-6)

	m, err = k.Mirror(s, r3.Vec{Z: 2}, r3.Vec{Z: 1})
	if err != nil {
		t.Fatalf("Mirror XY: %v", err)
	}
	checkBounds(t, m, [3]float64{2, 0, 3}, [3]float64{5, 1, 4}, 1e-6)

	if _, err := k.Mirror(s, r3.Vec{}, r3.Vec{X: 1, Y: 1}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("diagonal mirror: error = %v, want ErrUnsupported", err)
	}
}

func TestToMesh(t *testing.T) {
	k := New(WithMeshCells(40))
	if k.MeshCells() != 40 {
		t.Fatalf("MeshCells() = %d, want 40", k.MeshCells())
	}
	s := box(t, k, 0, 0, 10, 10, 0, 10)
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestForeignSolid(t *testing.T) {
	k := New()
	if _, err := k.ToMesh(foreign{}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("ToMesh(foreign) error = %v, want ErrUnsupported", err)
	}
}

type foreign struct{}

func (foreign) BoundingBox() (min, max [3]float64) { return }
