// Package subst implements the matcher's Substitution data structure: a
// finite, copy-on-write map from type-parameter name to the Variable
// accumulating its candidate bindings, plus a union-find alias map for
// type parameters that get renamed as matching walks up a class hierarchy.
//
// General annotation substitution-application over an arbitrary type tree
// is an external service (AnnotationUtils.sub_one_annotation, §6 of the
// matcher's spec) and is not implemented here — only the Subst data
// structure itself (merge, alias resolution) is in scope.
package subst

import "github.com/typeforge-lang/typeforge/internal/abstract"

// Subst is the substitution map described in §3: once built it is treated
// as an immutable snapshot — every operation here returns a new Subst,
// mirroring the teacher's Unify/bind copy-on-write discipline.
type Subst struct {
	bindings map[string]*abstract.Variable
	// aliases implements a union-find over renamed type-parameter names:
	// aliases[a] = b means "a" has been identified with "b" by class
	// parameter renaming along an MRO walk. Find follows the chain to the
	// representative name before any lookup or bind.
	aliases map[string]string
}

// New returns an empty substitution.
func New() *Subst {
	return &Subst{
		bindings: make(map[string]*abstract.Variable),
		aliases:  make(map[string]string),
	}
}

// clone returns a Subst with independent backing maps, cheap enough for
// the small domains this matcher deals with (a handful of type parameters
// per call).
func (s *Subst) clone() *Subst {
	out := &Subst{
		bindings: make(map[string]*abstract.Variable, len(s.bindings)),
		aliases:  make(map[string]string, len(s.aliases)),
	}
	for k, v := range s.bindings {
		out.bindings[k] = v
	}
	for k, v := range s.aliases {
		out.aliases[k] = v
	}
	return out
}

// find follows the alias chain for name to its representative.
func (s *Subst) find(name string) string {
	seen := map[string]bool{}
	for {
		if seen[name] {
			return name // defensive: broken cycle, should not happen
		}
		seen[name] = true
		next, ok := s.aliases[name]
		if !ok {
			return name
		}
		name = next
	}
}

// Get returns the Variable bound to name (after alias resolution), if any.
func (s *Subst) Get(name string) (*abstract.Variable, bool) {
	v, ok := s.bindings[s.find(name)]
	return v, ok
}

// Bindings returns a copy of the name -> Variable map, used to render a
// partial substitution into an ErrorDetails record at the point of
// failure (§4.1, §4.6).
func (s *Subst) Bindings() map[string]*abstract.Variable {
	out := make(map[string]*abstract.Variable, len(s.bindings))
	for k, v := range s.bindings {
		out[k] = v
	}
	return out
}

// Domain returns every resolved name currently bound, satisfying invariant
// 1: the domain is always a subset of the type parameters seen so far.
func (s *Subst) Domain() []string {
	out := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		out = append(out, k)
	}
	return out
}

// Bind returns a new Subst with name bound to value, merging with any
// existing binding for that name rather than replacing it (invariant 2:
// once bound, further matches merge or fail — the caller is responsible
// for having already decided the merge is compatible via policy checks).
func (s *Subst) Bind(name string, value abstract.Value, origin string) *Subst {
	out := s.clone()
	key := out.find(name)
	if existing, ok := out.bindings[key]; ok {
		merged := existing.Clone()
		merged.Paste(abstract.NewVariable(origin, value))
		out.bindings[key] = merged
	} else {
		out.bindings[key] = abstract.NewVariable(origin, value)
	}
	return out
}

// BindEmpty records name as present in the domain with no bindings yet —
// used when a union match fills in every type parameter mentioned by a
// union so downstream code sees a fully-defined domain (§4.2 step 8).
func (s *Subst) BindEmpty(name string) *Subst {
	out := s.clone()
	key := out.find(name)
	if _, ok := out.bindings[key]; !ok {
		out.bindings[key] = &abstract.Variable{}
	}
	return out
}

// Alias unifies `from` with `to` in the alias map, so future Get/Bind calls
// against `from` resolve to `to`'s variable. ComputeSubst uses it to seed a
// substitution from its aliasMap argument.
func (s *Subst) Alias(from, to string) *Subst {
	out := s.clone()
	out.aliases[from] = to
	return out
}

// Merge implements merge_substs (§4.5): copy base (s), then for each
// incoming substitution, for each bound name, paste its bindings onto the
// corresponding entry (creating it if absent). Alias maps are merged too,
// incoming taking precedence on conflict.
func Merge(base *Subst, incoming ...*Subst) *Subst {
	out := base.clone()
	for _, in := range incoming {
		if in == nil {
			continue
		}
		for from, to := range in.aliases {
			out.aliases[from] = to
		}
		for name, v := range in.bindings {
			key := out.find(name)
			if existing, ok := out.bindings[key]; ok {
				merged := existing.Clone()
				merged.Paste(v)
				out.bindings[key] = merged
			} else {
				out.bindings[key] = v.Clone()
			}
		}
	}
	return out
}

// IsEmpty reports whether s binds no names at all.
func (s *Subst) IsEmpty() bool {
	return len(s.bindings) == 0
}
