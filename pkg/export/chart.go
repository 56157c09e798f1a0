package export

import (
	"strings"

	"github.com/chazu/spanloft/pkg/span"
	"github.com/guptarohit/asciigraph"
)

// ChartHeight is the row count of each ASCII chart.
const ChartHeight = 8

// DistributionChart renders chord and twist by section index as two ASCII
// charts, one above the other.
func DistributionChart(p span.Params) (string, error) {
	d, err := NewDistribution(p)
	if err != nil {
		return "", err
	}
	chord := asciigraph.Plot(d.Chord,
		asciigraph.Height(ChartHeight),
		asciigraph.Precision(2),
		asciigraph.Caption("chord (mm) by section"))
	twist := asciigraph.Plot(d.Twist,
		asciigraph.Height(ChartHeight),
		asciigraph.Precision(1),
		asciigraph.Caption("twist (deg) by section"))
	return strings.Join([]string{chord, twist}, "\n\n"), nil
}
