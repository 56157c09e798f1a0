package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/spanloft/pkg/span"
)

// svgMargin is the blank border around the drawing, in pixels.
const svgMargin = 10

// WriteSectionsSVG draws the plan view of every section outline on a square
// canvas of the given size. Root sections are drawn blue and tip sections
// red, so the twist reads at a glance.
func WriteSectionsSVG(w io.Writer, sections []span.Section, size int) error {
	if len(sections) == 0 {
		return ErrNoGeometry
	}
	if size <= 2*svgMargin {
		return fmt.Errorf("export: svg size %d too small", size)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range sections {
		for _, p := range s.Outline {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if !(extent > 0) {
		return ErrNoGeometry
	}
	scale := float64(size-2*svgMargin) / extent
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	half := float64(size) / 2

	canvas := svg.New(w)
	canvas.Start(size, size)
	canvas.Rect(0, 0, size, size, "fill:white")
	for i, s := range sections {
		xs := make([]int, 0, len(s.Outline))
		ys := make([]int, 0, len(s.Outline))
		for _, p := range s.Outline {
			xs = append(xs, int(math.Round(half+(p.X-cx)*scale)))
			// SVG y grows downward.
			ys = append(ys, int(math.Round(half-(p.Y-cy)*scale)))
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", ramp(i, len(sections))))
	}
	canvas.End()
	return nil
}

// ramp blends from blue to red across n sections.
func ramp(i, n int) string {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	return fmt.Sprintf("rgb(%d,0,%d)", int(math.Round(255*t)), int(math.Round(255*(1-t))))
}
