package graph

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationSeverity says whether a finding blocks tessellation.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // reported, not fatal
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("ValidationSeverity(%d)", int(s))
}

// ValidationError is one finding. NodeID is zero for graph-level problems
// such as a stale name index entry.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning is a finding that does not block tessellation.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult splits findings from both tiers into errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

func errorf(id NodeID, format string, args ...any) ValidationError {
	return ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(id NodeID, format string, args ...any) ValidationError {
	return ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// Validate runs the structural checks: acyclicity, child references and
// section wiring, name uniqueness, and root reachability. It never mutates g.
func Validate(g *DesignGraph) []ValidationError {
	var out []ValidationError
	for _, check := range []func(*DesignGraph) []ValidationError{
		validateDAG,
		validateReferences,
		validateNames,
		validateRoots,
	} {
		out = append(out, check(g)...)
	}
	return out
}

// ValidateAll runs Validate and, if it found no errors, the part parameter
// checks of validateParams.
func ValidateAll(g *DesignGraph) ValidationResult {
	var res ValidationResult
	for _, f := range Validate(g) {
		if f.Severity == SeverityWarning {
			res.Warnings = append(res.Warnings, ValidationWarning{NodeID: f.NodeID, Message: f.Message})
			continue
		}
		res.Errors = append(res.Errors, f)
	}
	if len(res.Errors) == 0 {
		res.Errors = validateParams(g)
	}
	return res
}

// validateDAG reports the first cycle it finds, naming every node on it.
func validateDAG(g *DesignGraph) []ValidationError {
	done := make(map[NodeID]bool)
	onPath := make(map[NodeID]int) // index into path
	var path []NodeID
	var cycle []NodeID

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		if done[id] {
			return false
		}
		if at, ok := onPath[id]; ok {
			cycle = append(append(cycle, path[at:]...), id)
			return true
		}
		n, ok := g.Nodes[id]
		if !ok {
			return false // dangling, reported by validateReferences
		}
		onPath[id] = len(path)
		path = append(path, id)
		for _, c := range n.Children {
			if visit(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		delete(onPath, id)
		done[id] = true
		return false
	}

	for _, id := range g.ids() {
		if visit(id) {
			names := make([]string, len(cycle))
			for i, c := range cycle {
				names[i] = label(g.Nodes[c])
			}
			return []ValidationError{errorf(cycle[0], "cycle detected: %s", strings.Join(names, " -> "))}
		}
	}
	return nil
}

// validateReferences checks every child edge: the target must exist, a
// loft may only reference sections, and a section may only be referenced
// by a loft. Sections are leaves.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, errorf(n.ID, format, args...))
	}

	for _, id := range g.ids() {
		n := g.Nodes[id]
		_, isLoft := n.Data.(LoftData)
		if n.Kind == NodeSection && len(n.Children) > 0 {
			bad(n, "section %q has %d children; sections are leaves", n.Name, len(n.Children))
		}
		for i, childID := range n.Children {
			c, ok := g.Nodes[childID]
			switch {
			case !ok:
				bad(n, "child reference %s does not exist", childID.Short())
			case isLoft && c.Kind != NodeSection:
				bad(n, "loft %q section %d is a %s, not a section", n.Name, i, c.Kind)
			case !isLoft && c.Kind == NodeSection:
				bad(n, "%s %q references section %q; sections are only used by lofts",
					n.Kind, label(n), c.Name)
			}
		}
	}
	return errs
}

// label names a node in messages: its name, else its short ID.
func label(n *Node) string {
	if n == nil {
		return "?"
	}
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// validateNames checks that NameIndex only points at live nodes and that no
// two nodes carry the same name.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	var stale []string
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	for _, name := range stale {
		errs = append(errs, errorf(NodeID{}, "name index entry %q references non-existent node %s",
			name, g.NameIndex[name].Short()))
	}

	// g.ids only covers Order; nodes slipped into the map directly count too.
	owners := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Name != "" {
			owners[n.Name]++
		}
	}
	var dups []string
	for name, count := range owners {
		if count > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	for _, name := range dups {
		errs = append(errs, errorf(NodeID{}, "duplicate name %q assigned to %d nodes", name, owners[name]))
	}
	return errs
}

// reachable returns every node reachable from the live roots.
func reachable(g *DesignGraph) map[NodeID]bool {
	seen := make(map[NodeID]bool, len(g.Nodes))
	stack := make([]NodeID, 0, len(g.Roots))
	for _, r := range g.Roots {
		if _, ok := g.Nodes[r]; ok {
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if n := g.Nodes[id]; n != nil {
			stack = append(stack, n.Children...)
		}
	}
	return seen
}

// validateRoots rejects roots that name missing nodes and warns about
// nodes no root reaches.
func validateRoots(g *DesignGraph) []ValidationError {
	var out []ValidationError
	for _, r := range g.Roots {
		if _, ok := g.Nodes[r]; !ok {
			out = append(out, errorf(NodeID{}, "root reference %s does not exist", r.Short()))
		}
	}

	live := reachable(g)
	for _, id := range g.ids() {
		if !live[id] {
			out = append(out, warnf(id, "node %q is not reachable from any root (orphan)", label(g.Nodes[id])))
		}
	}
	return out
}
