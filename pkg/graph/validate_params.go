package graph

import "github.com/chazu/spanloft/pkg/parts"

// validateParams checks every node's payload: part parameters must build,
// lofts need at least two sections stacked in distinct planes, placements
// wrap exactly one node. It runs before any kernel call so bad input never
// reaches geometry construction.
func validateParams(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, errorf(n.ID, format, args...))
	}

	for _, id := range g.ids() {
		n := g.Nodes[id]
		switch d := n.Data.(type) {
		case BladeData:
			if err := d.Span.Validate(); err != nil {
				bad(n, "blade %q: %v", n.Name, err)
			}
		case AssemblyData:
			if err := d.Assembly.Validate(); err != nil {
				bad(n, "lpt-blade %q: %v", n.Name, err)
			}
		case EllipseData:
			if err := d.Ellipse.Validate(); err != nil {
				bad(n, "ellipse %q: %v", n.Name, err)
			}
		case LoftData:
			if len(n.Children) < 2 {
				bad(n, "loft %q needs at least 2 sections, has %d", n.Name, len(n.Children))
			}
			ellipses := make([]parts.Ellipse, 0, len(n.Children))
			for _, c := range g.Children(n) {
				if ed, ok := c.Data.(EllipseData); ok {
					ellipses = append(ellipses, ed.Ellipse)
				}
			}
			if len(ellipses) >= 2 && len(ellipses) == len(n.Children) {
				if err := parts.ValidateStack(ellipses); err != nil {
					bad(n, "loft %q: %v", n.Name, err)
				}
			}
		case TransformData:
			if len(n.Children) != 1 {
				bad(n, "placement must wrap exactly one node, has %d", len(n.Children))
			}
		case nil:
			bad(n, "node has no data")
		}

		switch n.Data.(type) {
		case BladeData, AssemblyData, LoftData:
			if n.Kind != NodePart {
				bad(n, "%T on a %s node", n.Data, n.Kind)
			}
		case EllipseData:
			if n.Kind != NodeSection {
				bad(n, "%T on a %s node", n.Data, n.Kind)
			}
		}
	}
	return errs
}
