package graph

import "github.com/google/uuid"

// nodeNamespace seeds the name-based node IDs so that equal paths always
// give equal IDs across runs.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/spanloft/graph"))

// NodeID is a deterministic identifier for graph nodes: a version 5 UUID
// over the node's path.
type NodeID uuid.UUID

// ZeroID is the zero NodeID, used for "no node".
var ZeroID NodeID

// NewNodeID derives the ID for a node path such as "part/blade".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(nodeNamespace, []byte(path)))
}

// IsZero reports whether id is the zero ID.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for messages.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// MarshalText lets NodeID serve as a JSON map key.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses the canonical UUID form.
func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
