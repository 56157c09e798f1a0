package tessellate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/spanloft/pkg/graph"
	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/chazu/spanloft/pkg/kernel/polymesh"
	"github.com/chazu/spanloft/pkg/kernel/sdfx"
	"github.com/chazu/spanloft/pkg/parts"
	"github.com/chazu/spanloft/pkg/span"
	"github.com/chazu/spanloft/pkg/tessellate"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// newKernel returns a fresh mesh kernel for testing.
func newKernel() kernel.Kernel {
	return polymesh.New()
}

// smallSpan keeps blade meshes small.
func smallSpan() span.Params {
	p := span.DefaultParams()
	p.Sections = 4
	p.Stations = 20
	return p
}

// makeBlade creates a blade part node with the given name.
func makeBlade(name string, p span.Params) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("blade/" + name),
		Kind: graph.NodePart,
		Name: name,
		Data: graph.BladeData{Span: p},
	}
}

// makePlace creates a transform node. Nil vectors are left unset.
func makePlace(name string, at, rot *r3.Vec, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("place/" + name),
		Kind:     graph.NodeTransform,
		Children: children,
		Data:     graph.TransformData{Translation: at, Rotation: rot},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("group/" + name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

// addDuct adds two elliptical sections and an open loft over them.
func addDuct(g *graph.DesignGraph, segments int) *graph.Node {
	in := &graph.Node{
		ID: graph.NewNodeID("section/in"), Kind: graph.NodeSection, Name: "in",
		Data: graph.EllipseData{Ellipse: parts.Ellipse{Major: 20, Minor: 6.5, Segments: segments}},
	}
	out := &graph.Node{
		ID: graph.NewNodeID("section/out"), Kind: graph.NodeSection, Name: "out",
		Data: graph.EllipseData{Ellipse: parts.Ellipse{
			Center: r3.Vec{Z: 33}, Major: 14, Minor: 6.5, Segments: segments,
		}},
	}
	duct := &graph.Node{
		ID: graph.NewNodeID("loft/duct"), Kind: graph.NodePart, Name: "duct",
		Children: []graph.NodeID{in.ID, out.ID},
		Data:     graph.LoftData{},
	}
	g.AddNode(in)
	g.AddNode(out)
	g.AddNode(duct)
	return duct
}

func tessellate1(t *testing.T, g *graph.DesignGraph, k kernel.Kernel) []*kernel.Mesh {
	t.Helper()
	meshes, err := tessellate.Tessellate(context.Background(), g, k, zerolog.Nop())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	return meshes
}

func TestNilGraph(t *testing.T) {
	meshes, err := tessellate.Tessellate(context.Background(), nil, newKernel(), zerolog.Nop())
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v; want nil, nil", meshes, err)
	}
}

func TestEmptyGraph(t *testing.T) {
	if meshes := tessellate1(t, graph.New(), newKernel()); len(meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestSingleBlade(t *testing.T) {
	g := graph.New()
	b := makeBlade("rotor", smallSpan())
	g.AddNode(b)
	g.AddRoot(b.ID)

	meshes := tessellate1(t, g, newKernel())
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if m.PartName != "rotor" {
		t.Errorf("PartName = %q, want rotor", m.PartName)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	min, max := m.Bounds()
	if !scalar.EqualWithinAbs(min[2], 0, 1e-4) || !scalar.EqualWithinAbs(max[2], 160, 1e-3) {
		t.Errorf("z range = [%f, %f], want [0, 160]", min[2], max[2])
	}
}

func TestPlacedBlade(t *testing.T) {
	g := graph.New()
	b := makeBlade("rotor", smallSpan())
	at, rot := r3.Vec{X: 100}, r3.Vec{Z: 180}
	p := makePlace("rotor", &at, &rot, b.ID)
	g.AddNode(b)
	g.AddNode(p)
	g.AddRoot(p.ID)

	meshes := tessellate1(t, g, newKernel())
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	min, max := meshes[0].Bounds()
	if min[0] < 50 || max[0] > 150 {
		t.Errorf("x range = [%f, %f], want around 100", min[0], max[0])
	}
}

func TestNestedTransformsApplyInnermostFirst(t *testing.T) {
	g := graph.New()
	b := makeBlade("rotor", smallSpan())
	lift := r3.Vec{Z: 10}
	inner := makePlace("inner", &lift, nil, b.ID)
	tip := r3.Vec{X: 90}
	outer := makePlace("outer", nil, &tip, inner.ID)
	for _, n := range []*graph.Node{b, inner, outer} {
		g.AddNode(n)
	}
	g.AddRoot(outer.ID)

	meshes := tessellate1(t, g, newKernel())
	// Lifted to z in [10, 170], then +90 about X sends z to -y.
	min, max := meshes[0].Bounds()
	if !scalar.EqualWithinAbs(max[1], -10, 1e-3) || !scalar.EqualWithinAbs(min[1], -170, 1e-3) {
		t.Errorf("y range = [%f, %f], want [-170, -10]", min[1], max[1])
	}
}

func TestGroupWithMultipleParts(t *testing.T) {
	g := graph.New()
	a := makeBlade("a", smallSpan())
	b := makeBlade("b", smallSpan())
	at := r3.Vec{Y: 200}
	pb := makePlace("b", &at, nil, b.ID)
	duct := addDuct(g, 16)
	grp := makeGroup("stage", a.ID, pb.ID, duct.ID)
	for _, n := range []*graph.Node{a, b, pb, grp} {
		g.AddNode(n)
	}
	g.AddRoot(grp.ID)

	meshes := tessellate1(t, g, newKernel())
	var names []string
	for _, m := range meshes {
		names = append(names, m.PartName)
	}
	if strings.Join(names, ",") != "a,b,duct" {
		t.Errorf("mesh names = %v, want [a b duct]", names)
	}
}

func TestEllipseLoftMesh(t *testing.T) {
	g := graph.New()
	duct := addDuct(g, 16)
	g.AddRoot(duct.ID)
	// A section reachable from a root still yields no mesh of its own.
	g.AddRoot(g.MustLookup("in").ID)

	meshes := tessellate1(t, g, newKernel())
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	// Two 16-point rings joined by 16 quads, ends open.
	if got := meshes[0].TriangleCount(); got != 32 {
		t.Errorf("TriangleCount() = %d, want 32", got)
	}
	min, max := meshes[0].Bounds()
	if !scalar.EqualWithinAbs(max[0], 20, 1e-4) || !scalar.EqualWithinAbs(max[2], 33, 1e-4) || min[2] != 0 {
		t.Errorf("bounds = %v %v", min, max)
	}
}

func TestAssemblyMeshes(t *testing.T) {
	g := graph.New()
	a := parts.DefaultAssembly()
	a.Blade.Stations = 20
	n := &graph.Node{
		ID: graph.NewNodeID("lpt/stage1"), Kind: graph.NodePart, Name: "stage1",
		Data: graph.AssemblyData{Assembly: a},
	}
	g.AddNode(n)
	g.AddRoot(n.ID)

	meshes := tessellate1(t, g, sdfx.New(sdfx.WithMeshCells(40)))
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].PartName != "stage1/body" || meshes[1].PartName != "stage1/blade" {
		t.Errorf("names = %q, %q", meshes[0].PartName, meshes[1].PartName)
	}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("%s: empty mesh", m.PartName)
		}
	}
}

func TestTessellateWithPicksPerPart(t *testing.T) {
	g := graph.New()
	b := makeBlade("rotor", smallSpan())
	g.AddNode(b)
	duct := addDuct(g, 12)
	g.AddRoot(b.ID)
	g.AddRoot(duct.ID)

	mesh := polymesh.New()
	var picked []string
	pick := func(n *graph.Node) kernel.Kernel {
		picked = append(picked, n.Name)
		return mesh
	}
	meshes, err := tessellate.TessellateWith(context.Background(), g, pick, zerolog.Nop())
	if err != nil {
		t.Fatalf("TessellateWith: %v", err)
	}
	if len(meshes) != 2 || strings.Join(picked, ",") != "rotor,duct" {
		t.Errorf("meshes=%d picked=%v", len(meshes), picked)
	}
}

func TestKernelErrorNamesPart(t *testing.T) {
	g := graph.New()
	duct := addDuct(g, 12)
	g.AddRoot(duct.ID)

	// sdfx cannot build an open skin.
	_, err := tessellate.Tessellate(context.Background(), g, sdfx.New(), zerolog.Nop())
	if !errors.Is(err, kernel.ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
	if !strings.Contains(err.Error(), "duct") {
		t.Errorf("error %q does not name the part", err)
	}
}

func TestCancelledContext(t *testing.T) {
	g := graph.New()
	b := makeBlade("rotor", smallSpan())
	g.AddNode(b)
	g.AddRoot(b.ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tessellate.Tessellate(ctx, g, newKernel(), zerolog.Nop()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTransformWithBadData(t *testing.T) {
	g := graph.New()
	b := makeBlade("rotor", smallSpan())
	bad := &graph.Node{
		ID: graph.NewNodeID("place/bad"), Kind: graph.NodeTransform,
		Children: []graph.NodeID{b.ID},
		Data:     graph.GroupData{},
	}
	g.AddNode(b)
	g.AddNode(bad)
	g.AddRoot(bad.ID)

	if _, err := tessellate.Tessellate(context.Background(), g, newKernel(), zerolog.Nop()); err == nil {
		t.Error("expected error for transform with group data")
	}
}
