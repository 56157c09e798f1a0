// Package parts builds the spanloft part recipes on top of an injected
// geometry kernel: the twisted blade loft, the LPT root body with its
// cutouts and flanges, the assembled LPT blade and elliptical lofts.
//
// Recipes never hold global state. Every shape they create is returned to
// the caller, and kernel failures propagate wrapped with the step that
// failed. The one exception is the root body's edge fillet, which is
// optional.
package parts

import (
	"errors"
	"fmt"

	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/chazu/spanloft/pkg/span"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidParameter is returned for part parameters that would produce
// degenerate geometry. It is checked before any kernel call.
var ErrInvalidParameter = errors.New("parts: invalid parameter")

// bladeLoft is how the blade sections are joined: a capped, smooth loft.
var bladeLoft = kernel.LoftOptions{Solid: true, Ruled: false}

// Blade lofts a twisted, tapered blade through the span's sections. The
// sections are returned alongside the solid for export and inspection.
func Blade(k kernel.Kernel, p span.Params) (kernel.Solid, []span.Section, error) {
	sections, err := span.Build(p)
	if err != nil {
		return nil, nil, err
	}
	faces := make([]kernel.Face, len(sections))
	for i, sec := range sections {
		f, err := k.Face(sec.Outline)
		if err != nil {
			return nil, nil, fmt.Errorf("parts: blade section %d: %w", sec.Index, err)
		}
		faces[i] = f
	}
	s, err := k.Loft(faces, bladeLoft)
	if err != nil {
		return nil, nil, fmt.Errorf("parts: blade loft: %w", err)
	}
	return s, sections, nil
}

// PlaceOn moves s so that its bounding-box centre in X and Y sits over
// anchor and its lowest point sits at anchor.Z.
func PlaceOn(k kernel.Kernel, s kernel.Solid, anchor r3.Vec) kernel.Solid {
	b := kernel.Box(s)
	c := b.Center()
	return k.Translate(s, r3.Vec{
		X: anchor.X - c.X,
		Y: anchor.Y - c.Y,
		Z: anchor.Z - b.Min.Z,
	})
}
