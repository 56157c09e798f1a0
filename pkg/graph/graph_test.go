package graph

import (
	"encoding/json"
	"testing"

	"github.com/chazu/spanloft/pkg/parts"
	"github.com/chazu/spanloft/pkg/span"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Defaults.Units != "mm" {
		t.Errorf("default units = %q, want %q", g.Defaults.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("part/rotor")
	node := &Node{
		ID:   id,
		Kind: NodePart,
		Name: "rotor",
		Data: BladeData{Span: span.DefaultParams()},
	}
	g.AddNode(node)
	g.AddRoot(id)
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}

	// Lookup by name
	found := g.Lookup("rotor")
	if found == nil {
		t.Fatal("Lookup('rotor') returned nil")
	}
	if found.ID != id {
		t.Errorf("lookup returned wrong node")
	}

	// MustLookup
	must := g.MustLookup("rotor")
	if must.ID != id {
		t.Errorf("MustLookup returned wrong node")
	}

	// Lookup miss
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}

	// Get by ID
	got := g.Get(id)
	if got == nil || got.Name != "rotor" {
		t.Errorf("Get by ID failed")
	}

	// Roots are not duplicated.
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id.Short())
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestPartsAndSectionsInOrder(t *testing.T) {
	g := buildEllipseLoft()
	g.AddNode(&Node{
		ID: NewNodeID("part/rotor"), Kind: NodePart, Name: "rotor",
		Data: BladeData{Span: span.DefaultParams()},
	})

	ps := g.Parts()
	if len(ps) != 2 || ps[0].Name != "duct" || ps[1].Name != "rotor" {
		t.Errorf("Parts() = %v, want [duct rotor]", names(ps))
	}
	ss := g.Sections()
	if len(ss) != 2 || ss[0].Name != "inlet" || ss[1].Name != "outlet" {
		t.Errorf("Sections() = %v, want [inlet outlet]", names(ss))
	}
}

func TestChildren(t *testing.T) {
	g := buildEllipseLoft()
	children := g.Children(g.MustLookup("duct"))
	if len(children) != 2 {
		t.Fatalf("Children count = %d, want 2", len(children))
	}
	if children[0].Name != "inlet" {
		t.Errorf("child name = %q, want %q", children[0].Name, "inlet")
	}
}

func TestPromoteUnreferenced(t *testing.T) {
	g := buildEllipseLoft()
	g.Roots = nil

	bladeID := NewNodeID("part/rotor")
	placeID := NewNodeID("place/rotor/1")
	g.AddNode(&Node{ID: bladeID, Kind: NodePart, Name: "rotor", Data: BladeData{Span: span.DefaultParams()}})
	g.AddNode(&Node{ID: placeID, Kind: NodeTransform, Children: []NodeID{bladeID}, Data: TransformData{}})
	g.AddNode(&Node{ID: NewNodeID("section/spare"), Kind: NodeSection, Name: "spare",
		Data: EllipseData{Ellipse: parts.Ellipse{Major: 2, Minor: 1}}})

	g.PromoteUnreferenced()

	want := []NodeID{g.MustLookup("duct").ID, placeID}
	if len(g.Roots) != len(want) {
		t.Fatalf("roots = %d, want %d", len(g.Roots), len(want))
	}
	for i := range want {
		if g.Roots[i] != want[i] {
			t.Errorf("root %d = %s, want %s", i, g.Roots[i].Short(), want[i].Short())
		}
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("part/rotor")
	b := NewNodeID("part/rotor")
	if a != b {
		t.Error("same path should produce same NodeID")
	}

	c := NewNodeID("part/stator")
	if a == c {
		t.Error("different paths should produce different NodeIDs")
	}
}

func TestNodeIDZero(t *testing.T) {
	var id NodeID
	if !id.IsZero() {
		t.Error("zero-value NodeID should be zero")
	}
	id = NewNodeID("something")
	if id.IsZero() {
		t.Error("non-zero NodeID should not be zero")
	}
}

func TestNodeIDText(t *testing.T) {
	id := NewNodeID("part/rotor")
	if len(id.Short()) != 8 {
		t.Errorf("Short() len = %d, want 8", len(id.Short()))
	}
	b, err := json.Marshal(map[NodeID]string{id: "rotor"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[NodeID]string
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back[id] != "rotor" {
		t.Errorf("round trip lost the key: %s", b)
	}
}

func TestNodeDataInterface(t *testing.T) {
	// Verify all concrete types implement NodeData at compile time.
	var _ NodeData = BladeData{}
	var _ NodeData = AssemblyData{}
	var _ NodeData = LoftData{}
	var _ NodeData = EllipseData{}
	var _ NodeData = TransformData{}
	var _ NodeData = GroupData{}
}

func TestLoftDataOptions(t *testing.T) {
	d := NewLoftData(parts.EllipseLoftOptions)
	if d.Solid || d.Ruled {
		t.Errorf("ellipse loft default = %+v, want open and smooth", d)
	}
	ruled := LoftData{Solid: true, Ruled: true}.Options()
	if !ruled.Solid || !ruled.Ruled {
		t.Errorf("Options() = %+v", ruled)
	}
	if NewLoftData(ruled) != (LoftData{Solid: true, Ruled: true}) {
		t.Error("NewLoftData should round trip Options")
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		k    NodeKind
		want string
	}{
		{NodePart, "part"},
		{NodeSection, "section"},
		{NodeTransform, "transform"},
		{NodeGroup, "group"},
		{NodeKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

// buildEllipseLoft returns a graph with two ellipse sections lofted by a
// root part named "duct".
func buildEllipseLoft() *DesignGraph {
	g := New()
	inID := NewNodeID("section/inlet")
	outID := NewNodeID("section/outlet")
	loftID := NewNodeID("part/duct")

	g.AddNode(&Node{
		ID: inID, Kind: NodeSection, Name: "inlet",
		Data: EllipseData{Ellipse: parts.Ellipse{Major: 20, Minor: 6.5}},
	})
	g.AddNode(&Node{
		ID: outID, Kind: NodeSection, Name: "outlet",
		Data: EllipseData{Ellipse: parts.Ellipse{Center: r3.Vec{Z: 33}, Major: 14, Minor: 6.5}},
	})
	g.AddNode(&Node{
		ID: loftID, Kind: NodePart, Name: "duct",
		Children: []NodeID{inID, outID},
		Data:     LoftData{},
	})
	g.AddRoot(loftID)
	return g
}

func names(ns []*Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Name
	}
	return out
}
