package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/spanloft/pkg/graph"
	"github.com/chazu/spanloft/pkg/parts"
	"github.com/chazu/spanloft/pkg/span"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknown returns the keywords not in allowed, sorted.
func (a kwArgs) unknown(allowed []string) []string {
	bad := lo.Filter(lo.Keys(a.kw), func(k string, _ int) bool {
		return !lo.Contains(allowed, k)
	})
	sort.Strings(bad)
	return bad
}

// checkKeywords rejects keywords the form does not take.
func (a kwArgs) checkKeywords(form string, allowed []string) error {
	if bad := a.unknown(allowed); len(bad) > 0 {
		return fmt.Errorf("%s: unknown keyword :%s", form, strings.Join(bad, ", :"))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer. Floats are accepted only when whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// refs flattens positional node references. A list or array argument is
// spliced in place, so (loft "d" (list a b)) and (loft "d" a b) agree.
func refs(args []zygo.Sexp) ([]graph.NodeID, error) {
	var out []graph.NodeID
	for i, a := range args {
		if _, ok := a.(*sexpNodeRef); !ok {
			if items, err := sexpListToSlice(a); err == nil {
				inner, err := refs(items)
				if err != nil {
					return nil, err
				}
				out = append(out, inner...)
				continue
			}
		}
		id, err := toNodeRef(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Keyword tables
// ---------------------------------------------------------------------------

// spanKeys lists the keywords shared by blade and lpt-blade, in the order
// they are applied.
var spanKeys = []string{
	"chord", "height", "twist", "taper", "thickness",
	"sections", "stations", "chord-scale", "base",
}

// applySpan overwrites p with any span keywords present in a.
func applySpan(form string, a kwArgs, p *span.Params) error {
	floats := map[string]*float64{
		"chord":       &p.RootChord,
		"height":      &p.Height,
		"twist":       &p.TwistDeg,
		"taper":       &p.TaperRatio,
		"thickness":   &p.ThicknessScale,
		"chord-scale": &p.ChordScale,
	}
	ints := map[string]*int{
		"sections": &p.Sections,
		"stations": &p.Stations,
	}
	for _, key := range spanKeys {
		v, ok := a.kw[key]
		if !ok {
			continue
		}
		var err error
		switch {
		case floats[key] != nil:
			*floats[key], err = toFloat64(v)
		case ints[key] != nil:
			*ints[key], err = toInt(v)
		case key == "base":
			p.Base, err = toVec3(v)
		}
		if err != nil {
			return fmt.Errorf("%s: %s: %w", form, key, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

// builder populates one DesignGraph during one evaluation. Anonymous node
// suffixes count from zero per evaluation so repeated runs of the same
// source produce the same IDs.
type builder struct {
	g    *graph.DesignGraph
	anon int
}

func (b *builder) nextSuffix() string {
	b.anon++
	return fmt.Sprintf("%d", b.anon)
}

// addNamed adds a user-named node, rejecting a name already in use.
func (b *builder) addNamed(form string, n *graph.Node) (zygo.Sexp, error) {
	if n.Name == "" {
		return zygo.SexpNull, fmt.Errorf("%s: name must not be empty", form)
	}
	if prev := b.g.Lookup(n.Name); prev != nil {
		return zygo.SexpNull, fmt.Errorf("%s: name %q already used by a %s", form, n.Name, prev.Kind)
	}
	n.ID = graph.NewNodeID(form + "/" + n.Name)
	b.g.AddNode(n)
	return &sexpNodeRef{id: n.ID, name: n.Name}, nil
}

// formName reads the leading name argument of a form.
func formName(form string, pa kwArgs) (string, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", form)
	}
	s, err := toString(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", form, err)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all spanloft DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	b := &builder{g: g}

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no node named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: r3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (blade "rotor" :chord 50 :height 160 :twist 45 :taper 0.7 :sections 10)
	// -----------------------------------------------------------------------
	env.AddFunction("blade", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		const form = "blade"
		pa := parseArgs(args)
		if err := pa.checkKeywords(form, spanKeys); err != nil {
			return zygo.SexpNull, err
		}
		n, err := formName(form, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p := span.DefaultParams()
		if err := applySpan(form, pa, &p); err != nil {
			return zygo.SexpNull, err
		}
		if err := p.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("blade %q: %w", n, err)
		}
		return b.addNamed(form, &graph.Node{
			Kind: graph.NodePart,
			Name: n,
			Data: graph.BladeData{Span: p},
		})
	})

	// -----------------------------------------------------------------------
	// (lpt-blade "stage1" :twist 30 :yaw 90 :fillet 1.0)
	//
	// Registered as "lpt_blade"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("lpt_blade", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		const form = "lpt-blade"
		pa := parseArgs(args)
		allowed := append([]string{"yaw", "fillet", "cutout-nudge"}, spanKeys...)
		if err := pa.checkKeywords(form, allowed); err != nil {
			return zygo.SexpNull, err
		}
		n, err := formName(form, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		a := parts.DefaultAssembly()
		if err := applySpan(form, pa, &a.Blade); err != nil {
			return zygo.SexpNull, err
		}
		body := map[string]*float64{
			"yaw":          &a.Yaw,
			"fillet":       &a.Body.FilletRadius,
			"cutout-nudge": &a.Body.CutoutNudge,
		}
		for _, key := range []string{"yaw", "fillet", "cutout-nudge"} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			if *body[key], err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %s: %w", form, key, err)
			}
		}
		if err := a.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("lpt-blade %q: %w", n, err)
		}
		return b.addNamed(form, &graph.Node{
			Kind: graph.NodePart,
			Name: n,
			Data: graph.AssemblyData{Assembly: a},
		})
	})

	// -----------------------------------------------------------------------
	// (ellipse "inlet" :center (vec3 0 0 33) :major 14 :minor 6.5)
	// -----------------------------------------------------------------------
	env.AddFunction("ellipse", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		const form = "ellipse"
		pa := parseArgs(args)
		if err := pa.checkKeywords(form, []string{"center", "major", "minor", "segments"}); err != nil {
			return zygo.SexpNull, err
		}
		n, err := formName(form, pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		var e parts.Ellipse
		if v, ok := pa.kw["center"]; ok {
			if e.Center, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipse: center: %w", err)
			}
		}
		if v, ok := pa.kw["major"]; ok {
			if e.Major, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipse: major: %w", err)
			}
		}
		if v, ok := pa.kw["minor"]; ok {
			if e.Minor, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipse: minor: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			if e.Segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipse: segments: %w", err)
			}
		}
		if err := e.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("ellipse %q: %w", n, err)
		}
		return b.addNamed(form, &graph.Node{
			Kind: graph.NodeSection,
			Name: n,
			Data: graph.EllipseData{Ellipse: e},
		})
	})

	// -----------------------------------------------------------------------
	// (loft "duct" inlet outlet :solid false :ruled false)
	// -----------------------------------------------------------------------
	env.AddFunction("loft", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		const form = "loft"
		pa := parseArgs(args)
		if err := pa.checkKeywords(form, []string{"solid", "ruled"}); err != nil {
			return zygo.SexpNull, err
		}
		n, err := formName(form, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		sections, err := refs(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft %q: %w", n, err)
		}
		if len(sections) < 2 {
			return zygo.SexpNull, fmt.Errorf("loft %q needs at least 2 sections, got %d", n, len(sections))
		}
		for i, id := range sections {
			if s := g.Get(id); s == nil || s.Kind != graph.NodeSection {
				return zygo.SexpNull, fmt.Errorf("loft %q: argument %d is not a section", n, i+1)
			}
		}

		ld := graph.NewLoftData(parts.EllipseLoftOptions)
		if v, ok := pa.kw["solid"]; ok {
			if ld.Solid, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("loft: solid: %w", err)
			}
		}
		if v, ok := pa.kw["ruled"]; ok {
			if ld.Ruled, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("loft: ruled: %w", err)
			}
		}
		return b.addNamed(form, &graph.Node{
			Kind:     graph.NodePart,
			Name:     n,
			Children: sections,
			Data:     ld,
		})
	})

	// -----------------------------------------------------------------------
	// (place rotor :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.checkKeywords("place", []string{"at", "rotate"}); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one node reference, got %d arguments", len(pa.positional))
		}

		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		child := g.Get(childID)
		if child == nil {
			return zygo.SexpNull, fmt.Errorf("place: reference %s does not exist", childID.Short())
		}
		if child.Kind == graph.NodeSection {
			return zygo.SexpNull, fmt.Errorf("place: %q is a section; place the loft instead", child.Name)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		// IDs derive from the child so edits elsewhere in the script keep them.
		label := child.Name
		if label == "" {
			label = child.ID.Short()
		}
		id := graph.NewNodeID("place/" + label + "/" + b.nextSuffix())
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "stage" (place ...) (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		const form = "assembly"
		pa := parseArgs(args)
		if err := pa.checkKeywords(form, []string{"description"}); err != nil {
			return zygo.SexpNull, err
		}
		n, err := formName(form, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		children, err := refs(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly %q: %w", n, err)
		}
		var gd graph.GroupData
		if v, ok := pa.kw["description"]; ok {
			if gd.Description, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: description: %w", err)
			}
		}

		ref, err := b.addNamed(form, &graph.Node{
			Kind:     graph.NodeGroup,
			Name:     n,
			Children: lo.Uniq(children),
			Data:     gd,
		})
		if err != nil {
			return ref, err
		}
		g.AddRoot(ref.(*sexpNodeRef).id)
		return ref, nil
	})
}
