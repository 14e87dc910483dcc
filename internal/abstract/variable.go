package abstract

// Binding is one possible value of a Variable at a program point, tagged
// with its origin for diagnostics (GLOSSARY "Binding"). Origin is a free-
// form label supplied by the caller (e.g. "arg:x" or "call#42"); the
// matcher never inspects it, only carries it through to error reports —
// reporting source locations is explicitly out of scope.
type Binding struct {
	Value  Value
	Origin string
}

// Variable is a program-wide object carrying every Binding observed for it.
// Variables are mutated in place by pasting new bindings onto them (§5
// "Resource policy"): callers that need isolation must not share a Variable
// they expect to remain unchanged.
type Variable struct {
	Bindings []*Binding
}

// NewVariable constructs a Variable from one or more values, each becoming
// its own binding with the given origin label. This stands in for the
// external Program.NewVariable service (§6) when the matcher itself needs
// to materialize a fresh variable, e.g. when binding a TypeParameter for
// the first time.
func NewVariable(origin string, values ...Value) *Variable {
	v := &Variable{Bindings: make([]*Binding, 0, len(values))}
	for _, val := range values {
		v.Bindings = append(v.Bindings, &Binding{Value: val, Origin: origin})
	}
	return v
}

// Paste appends other's bindings onto v, deduplicating by pointer identity
// of the Value so repeated merges of the same binding are idempotent. This
// is the "set union over bindings" operation used by merge_substs (§4.5).
func (v *Variable) Paste(other *Variable) {
	if other == nil {
		return
	}
	seen := make(map[Value]bool, len(v.Bindings))
	for _, b := range v.Bindings {
		seen[b.Value] = true
	}
	for _, b := range other.Bindings {
		if !seen[b.Value] {
			v.Bindings = append(v.Bindings, b)
			seen[b.Value] = true
		}
	}
}

// Clone returns a Variable with the same bindings but an independent
// backing slice, so pasting onto the clone never mutates v.
func (v *Variable) Clone() *Variable {
	c := &Variable{Bindings: make([]*Binding, len(v.Bindings))}
	copy(c.Bindings, v.Bindings)
	return c
}

// Values returns the Value of every binding, in binding order; duplicates
// are not removed.
func (v *Variable) Values() []Value {
	out := make([]Value, len(v.Bindings))
	for i, b := range v.Bindings {
		out[i] = b.Value
	}
	return out
}

// View is a choice of exactly one Binding per Variable under consideration
// (GLOSSARY "View"): a specific world in which matching is evaluated.
type View struct {
	choices map[*Variable]*Binding
}

// NewView creates an empty view.
func NewView() *View {
	return &View{choices: make(map[*Variable]*Binding)}
}

// With returns a new View extending v with var bound to binding. v is left
// unmodified (views are immutable snapshots, like substitutions).
func (v *View) With(vr *Variable, b *Binding) *View {
	out := &View{choices: make(map[*Variable]*Binding, len(v.choices)+1)}
	for k, val := range v.choices {
		out.choices[k] = val
	}
	out.choices[vr] = b
	return out
}

// Binding returns the binding v has chosen for vr, if any.
func (v *View) Binding(vr *Variable) (*Binding, bool) {
	b, ok := v.choices[vr]
	return b, ok
}
