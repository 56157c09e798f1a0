package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePart      NodeKind = iota // buildable solid (blade, lpt-blade, loft)
	NodeSection                   // cross-section consumed by a loft (ellipse)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodePart:
		return "part"
	case NodeSection:
		return "section"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
