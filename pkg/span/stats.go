package span

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r2"
)

// SectionStats summarises a section outline in its own plane.
type SectionStats struct {
	Area     float64
	Centroid r2.Vec
}

// Stats computes the enclosed area and centroid of a section outline.
func Stats(s Section) SectionStats {
	if len(s.Outline) < 3 {
		return SectionStats{}
	}
	ring := make(orb.Ring, 0, len(s.Outline)+1)
	for _, v := range s.Outline {
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	c, area := planar.CentroidArea(ring)
	return SectionStats{
		Area:     math.Abs(area),
		Centroid: r2.Vec{X: c[0], Y: c[1]},
	}
}
