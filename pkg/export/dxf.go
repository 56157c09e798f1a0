package export

import (
	"fmt"

	"github.com/chazu/spanloft/pkg/span"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// layerColors cycles through the basic ACI colours, one per section.
var layerColors = []color.ColorNumber{
	color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta,
}

// SectionLayer names the DXF layer that holds section i.
func SectionLayer(i int) string {
	return fmt.Sprintf("SECTION_%02d", i)
}

// SaveSectionsDXF writes every section outline as closed 3D line loops, one
// layer per section, at its true span height.
func SaveSectionsDXF(path string, sections []span.Section) error {
	if len(sections) == 0 {
		return ErrNoGeometry
	}
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	for _, s := range sections {
		layer := SectionLayer(s.Index)
		if _, err := d.AddLayer(layer, layerColors[s.Index%len(layerColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("export: dxf layer %s: %w", layer, err)
		}
		pts := s.Outline
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if a == b {
				continue
			}
			if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
				return fmt.Errorf("export: dxf section %d: %w", s.Index, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: save dxf %s: %w", path, err)
	}
	return nil
}
