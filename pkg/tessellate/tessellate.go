// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per part, two for an LPT
// blade assembly.
package tessellate

import (
	"context"
	"fmt"

	"github.com/chazu/spanloft/pkg/graph"
	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/chazu/spanloft/pkg/parts"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// KernelFunc picks the kernel that builds a part node.
type KernelFunc func(n *graph.Node) kernel.Kernel

// Only returns a KernelFunc that always picks k.
func Only(k kernel.Kernel) KernelFunc {
	return func(*graph.Node) kernel.Kernel { return k }
}

var euler = [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}

// frame is one placement: rotate about X, Y, Z (degrees), then translate.
type frame struct {
	rotation    r3.Vec
	translation r3.Vec
}

// transformStack accumulates spatial transforms during graph traversal.
type transformStack struct {
	frames []frame
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(f frame) {
	ts.frames = append(ts.frames, f)
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 0 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

// apply places s in world space. The innermost placement acts first.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.frames) - 1; i >= 0; i-- {
		f := ts.frames[i]
		for axis, deg := range [3]float64{f.rotation.X, f.rotation.Y, f.rotation.Z} {
			if deg != 0 {
				s = k.Rotate(s, r3.Vec{}, euler[axis], deg)
			}
		}
		if f.translation != (r3.Vec{}) {
			s = k.Translate(s, f.translation)
		}
	}
	return s
}

// walker carries the state of one Tessellate call.
type walker struct {
	ctx  context.Context
	g    *graph.DesignGraph
	pick KernelFunc
	log  zerolog.Logger
	ts   *transformStack
}

// Tessellate walks the design graph and produces triangle meshes for every
// part reachable from the roots using the provided geometry kernel. The
// tessellator is read-only and never mutates the graph.
func Tessellate(ctx context.Context, g *graph.DesignGraph, k kernel.Kernel, log zerolog.Logger) ([]*kernel.Mesh, error) {
	return TessellateWith(ctx, g, Only(k), log)
}

// TessellateWith is Tessellate with a kernel chosen per part.
func TessellateWith(ctx context.Context, g *graph.DesignGraph, pick KernelFunc, log zerolog.Logger) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	w := &walker{ctx: ctx, g: g, pick: pick, log: log, ts: newTransformStack()}
	var meshes []*kernel.Mesh
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := w.walk(root)
		if err != nil {
			return nil, fmt.Errorf("tessellate: root %s: %w", label(root), err)
		}
		meshes = append(meshes, collected...)
	}

	log.Info().Int("meshes", len(meshes)).Int("roots", len(g.Roots)).Msg("tessellated")
	return meshes, nil
}

// label names a node for meshes and errors: its Name, or its short ID.
func label(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// walk recursively traverses a node and its children, collecting meshes.
func (w *walker) walk(n *graph.Node) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodePart:
		return w.part(n)

	case graph.NodeTransform:
		return w.transform(n)

	case graph.NodeGroup:
		return w.children(n)

	case graph.NodeSection:
		// Sections only exist to be lofted.
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (w *walker) children(n *graph.Node) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range w.g.Children(n) {
		collected, err := w.walk(child)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// transform pushes the placement, recurses into children, then pops.
func (w *walker) transform(n *graph.Node) ([]*kernel.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	var f frame
	if td.Translation != nil {
		f.translation = *td.Translation
	}
	if td.Rotation != nil {
		f.rotation = *td.Rotation
	}
	w.ts.push(f)
	defer w.ts.pop()
	return w.children(n)
}

// named is a solid awaiting placement and meshing.
type named struct {
	name  string
	solid kernel.Solid
}

// part builds the geometry of a part node and meshes it in place.
func (w *walker) part(n *graph.Node) ([]*kernel.Mesh, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}
	k := w.pick(n)
	name := label(n)

	var solids []named
	switch d := n.Data.(type) {
	case graph.BladeData:
		s, _, err := parts.Blade(k, d.Span)
		if err != nil {
			return nil, fmt.Errorf("blade %s: %w", name, err)
		}
		solids = []named{{name, s}}

	case graph.AssemblyData:
		res, err := parts.Assembly(k, d.Assembly, w.log.With().Str("part", name).Logger())
		if err != nil {
			return nil, fmt.Errorf("lpt-blade %s: %w", name, err)
		}
		solids = []named{{name + "/body", res.Body}, {name + "/blade", res.Blade}}

	case graph.LoftData:
		ellipses := lo.FilterMap(w.g.Children(n), func(c *graph.Node, _ int) (parts.Ellipse, bool) {
			ed, ok := c.Data.(graph.EllipseData)
			return ed.Ellipse, ok
		})
		if len(ellipses) != len(n.Children) {
			return nil, fmt.Errorf("loft %s: %d of %d sections are not ellipses",
				name, len(n.Children)-len(ellipses), len(n.Children))
		}
		s, err := parts.LoftEllipses(k, ellipses, d.Options())
		if err != nil {
			return nil, fmt.Errorf("loft %s: %w", name, err)
		}
		solids = []named{{name, s}}

	default:
		return nil, fmt.Errorf("part node %s has unsupported data type %T", name, n.Data)
	}

	meshes := make([]*kernel.Mesh, 0, len(solids))
	for _, ns := range solids {
		mesh, err := k.ToMesh(w.ts.apply(k, ns.solid))
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", ns.name, err)
		}
		mesh.PartName = ns.name
		w.log.Debug().
			Str("part", ns.name).
			Int("triangles", mesh.TriangleCount()).
			Msg("meshed")
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}
