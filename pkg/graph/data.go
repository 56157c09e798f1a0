package graph

import (
	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/chazu/spanloft/pkg/parts"
	"github.com/chazu/spanloft/pkg/span"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Parts
// ---------------------------------------------------------------------------

// BladeData is a free-standing twisted blade loft.
// Created by the (blade ...) Lisp form.
type BladeData struct {
	Span span.Params `json:"span"`
}

func (BladeData) nodeData() {}

// AssemblyData is the LPT blade: root body plus placed blade.
// Created by the (lpt-blade ...) Lisp form.
type AssemblyData struct {
	Assembly parts.BladeAssembly `json:"assembly"`
}

func (AssemblyData) nodeData() {}

// LoftData joins the node's section children in order.
// Created by the (loft ...) Lisp form.
type LoftData struct {
	Solid bool `json:"solid"`
	Ruled bool `json:"ruled"`
}

func (LoftData) nodeData() {}

// NewLoftData copies kernel loft options into a loft node payload.
func NewLoftData(opts kernel.LoftOptions) LoftData {
	return LoftData{Solid: opts.Solid, Ruled: opts.Ruled}
}

// Options returns the kernel loft options for the node.
func (d LoftData) Options() kernel.LoftOptions {
	return kernel.LoftOptions{Solid: d.Solid, Ruled: d.Ruled}
}

// ---------------------------------------------------------------------------
// Sections
// ---------------------------------------------------------------------------

// EllipseData is an elliptical cross-section.
// Created by the (ellipse ...) Lisp form.
type EllipseData struct {
	Ellipse parts.Ellipse `json:"ellipse"`
}

func (EllipseData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) Lisp form. Rotation is applied before
// translation.
type TransformData struct {
	Translation *r3.Vec `json:"translation,omitempty"`
	Rotation    *r3.Vec `json:"rotation,omitempty"` // Euler angles in degrees, X then Y then Z
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly).
// Created by the (assembly ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
