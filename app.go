package main

import (
	"context"
	"fmt"

	"github.com/chazu/spanloft/pkg/config"
	"github.com/chazu/spanloft/pkg/engine"
	"github.com/chazu/spanloft/pkg/graph"
	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/chazu/spanloft/pkg/kernel/polymesh"
	"github.com/chazu/spanloft/pkg/kernel/sdfx"
	"github.com/chazu/spanloft/pkg/parts"
	"github.com/chazu/spanloft/pkg/tessellate"
	"github.com/rs/zerolog"
)

// App ties the script engine to the geometry kernels. The CLI commands are
// thin wrappers around it.
type App struct {
	engine  *engine.Engine
	backend string
	sdfx    kernel.Kernel
	mesh    kernel.Kernel
	log     zerolog.Logger
}

// Result is the full outcome of evaluating a script.
type Result struct {
	Meshes   []*kernel.Mesh
	Errors   []engine.EvalError
	Warnings []engine.EvalWarning
}

// OK reports whether evaluation and tessellation both succeeded.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// NewApp creates an App with an engine and both kernels. An invalid
// backend is reported by kc's config.Validate, not here.
func NewApp(kc config.KernelConfig, log zerolog.Logger) *App {
	return &App{
		engine:  engine.NewEngine(),
		backend: kc.Backend,
		sdfx:    sdfx.New(sdfx.WithMeshCells(kc.MeshCells)),
		mesh:    polymesh.New(),
		log:     log,
	}
}

// kernelFor picks the kernel for a part. In auto mode open lofts go to the
// mesh kernel, which can skin them, and everything else goes to sdfx,
// which has the booleans the LPT body needs.
func (a *App) kernelFor(n *graph.Node) kernel.Kernel {
	switch a.backend {
	case config.BackendSdfx:
		return a.sdfx
	case config.BackendMesh:
		return a.mesh
	}
	if ld, ok := n.Data.(graph.LoftData); ok && !ld.Solid {
		return a.mesh
	}
	return a.sdfx
}

// Evaluate takes Lisp source and returns meshes plus any errors.
func (a *App) Evaluate(ctx context.Context, source string) Result {
	var result Result

	// Step 1: Evaluate the Lisp source into a design graph.
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		a.log.Error().Err(err).Msg("evaluate failed")
		result.Errors = append(result.Errors, engine.EvalError{Message: err.Error()})
		return result
	}
	result.Warnings = res.Warnings
	for _, w := range res.Warnings {
		a.log.Warn().Int("line", w.Line).Msg(w.Message)
	}
	if len(res.Errors) > 0 {
		result.Errors = res.Errors
		return result
	}

	// Step 2: Tessellate the design graph into triangle meshes.
	meshes, err := a.Tessellate(ctx, res.Graph)
	if err != nil {
		result.Errors = append(result.Errors, engine.EvalError{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	result.Meshes = meshes
	return result
}

// Tessellate meshes every root of g with the configured kernels.
func (a *App) Tessellate(ctx context.Context, g *graph.DesignGraph) ([]*kernel.Mesh, error) {
	return tessellate.TessellateWith(ctx, g, a.kernelFor, a.log)
}

// BuildAssembly meshes the LPT blade assembly described by cfg. It goes
// through a one-node design graph so that scripts and parameter files share
// the same validation and tessellation path.
func (a *App) BuildAssembly(ctx context.Context, name string, cfg config.Config) ([]*kernel.Mesh, error) {
	g := graph.New()
	n := &graph.Node{
		ID:   graph.NewNodeID("lpt-blade/" + name),
		Kind: graph.NodePart,
		Name: name,
		Data: graph.AssemblyData{Assembly: cfg.BladeAssembly()},
	}
	g.AddNode(n)
	g.AddRoot(n.ID)

	if res := graph.ValidateAll(g); len(res.Errors) > 0 {
		return nil, fmt.Errorf("%s: %s", name, res.Errors[0].Message)
	}
	return a.Tessellate(ctx, g)
}

// ReferenceDuctNames labels the loft of each parts.ReferenceEllipsePairs
// entry, in order.
var ReferenceDuctNames = []string{"large_duct", "small_duct"}

// BuildReferenceDucts meshes the reference ellipse lofts as open skins.
func (a *App) BuildReferenceDucts(ctx context.Context) ([]*kernel.Mesh, error) {
	g := graph.New()
	for i, pair := range parts.ReferenceEllipsePairs() {
		name := ReferenceDuctNames[i]
		loft := &graph.Node{
			ID:   graph.NewNodeID("loft/" + name),
			Kind: graph.NodePart,
			Name: name,
			Data: graph.NewLoftData(parts.EllipseLoftOptions),
		}
		for j, e := range pair {
			sec := &graph.Node{
				ID:   graph.NewNodeID(fmt.Sprintf("ellipse/%s/%d", name, j)),
				Kind: graph.NodeSection,
				Name: fmt.Sprintf("%s/%d", name, j),
				Data: graph.EllipseData{Ellipse: e},
			}
			g.AddNode(sec)
			loft.Children = append(loft.Children, sec.ID)
		}
		g.AddNode(loft)
		g.AddRoot(loft.ID)
	}

	if res := graph.ValidateAll(g); len(res.Errors) > 0 {
		return nil, fmt.Errorf("reference ducts: %s", res.Errors[0].Message)
	}
	return a.Tessellate(ctx, g)
}
