package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/chazu/spanloft/pkg/span"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Distribution is the chord and twist of each section against its height.
type Distribution struct {
	Z     []float64
	Chord []float64 // mm
	Twist []float64 // degrees
}

// NewDistribution samples p at every section without building outlines.
func NewDistribution(p span.Params) (Distribution, error) {
	if err := p.Validate(); err != nil {
		return Distribution{}, err
	}
	d := Distribution{
		Z:     make([]float64, p.Sections),
		Chord: make([]float64, p.Sections),
		Twist: make([]float64, p.Sections),
	}
	for i := 0; i < p.Sections; i++ {
		d.Z[i] = p.ZAt(i)
		d.Chord[i] = p.ChordAt(i)
		d.Twist[i] = p.TwistAt(i) * 180 / math.Pi
	}
	return d, nil
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}

// distributionPlot draws chord and twist against span height on one set of
// axes. Both are plain numbers in their own units.
func distributionPlot(p span.Params) (*plot.Plot, error) {
	d, err := NewDistribution(p)
	if err != nil {
		return nil, err
	}
	pl := plot.New()
	pl.Title.Text = "Span distribution"
	pl.X.Label.Text = "Span height (mm)"
	pl.Y.Label.Text = "Chord (mm) / Twist (deg)"
	pl.Add(plotter.NewGrid())

	series := []struct {
		name string
		y    []float64
		c    color.RGBA
	}{
		{"chord (mm)", d.Chord, color.RGBA{B: 200, A: 255}},
		{"twist (deg)", d.Twist, color.RGBA{R: 200, A: 255}},
	}
	for _, s := range series {
		line, points, err := plotter.NewLinePoints(xys(d.Z, s.y))
		if err != nil {
			return nil, fmt.Errorf("export: plot %s: %w", s.name, err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = s.c
		points.GlyphStyle.Color = s.c
		points.GlyphStyle.Radius = vg.Points(3)
		pl.Add(line, points)
		pl.Legend.Add(s.name, line, points)
	}
	pl.Legend.Top = true
	return pl, nil
}

// SaveDistributionPlot renders the chord and twist distribution to path.
// The image format follows the extension (.png, .svg, .pdf).
func SaveDistributionPlot(path string, p span.Params) error {
	pl, err := distributionPlot(p)
	if err != nil {
		return err
	}
	if err := pl.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("export: save plot %s: %w", path, err)
	}
	return nil
}

// WriteDistributionPlot renders the plot to w in the given format, such as
// "png" or "svg".
func WriteDistributionPlot(w io.Writer, p span.Params, format string) error {
	pl, err := distributionPlot(p)
	if err != nil {
		return err
	}
	wt, err := pl.WriterTo(8*vg.Inch, 5*vg.Inch, strings.TrimPrefix(format, "."))
	if err != nil {
		return fmt.Errorf("export: plot format %q: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("export: write plot: %w", err)
	}
	return nil
}
