package matcher

import (
	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/policy"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

// FormalArg is one (name, formal-type) pair of a call site's declared
// signature, the unit compute_subst iterates over (§4.1).
type FormalArg struct {
	Name   string
	Formal abstract.Value
}

// ComputeSubst implements compute_subst (§4.1): given named formal
// arguments and a concrete binding Variable per name, produce a
// substitution consistent with every argument, or report the first
// argument that fails. aliasMap seeds the returned substitution's
// renamed-parameter union-find (e.g. from an enclosing generic class).
func (m *Matcher) ComputeSubst(node services.CFGNode, formalArgs []FormalArg, argDict map[string]*abstract.Variable, view *abstract.View, aliasMap map[string]string) (*subst.Subst, string, *ErrorDetails) {
	m.resetCaches()
	s := subst.New()
	for from, to := range aliasMap {
		s = s.Alias(from, to)
	}
	if len(formalArgs) == 0 {
		return s, "", nil
	}

	for _, arg := range formalArgs {
		variable, ok := argDict[arg.Name]
		if !ok || variable == nil {
			continue
		}
		result, errs := m.MatchAllBindings(node, view, variable, arg.Formal, s)
		if errs != nil {
			expected := arg.Formal
			if m.Annots != nil {
				expected = m.Annots.SubOneAnnotation(node, arg.Formal, s.Bindings())
			}
			m.errorDetails.ErrorSubstDomain = s.Bindings()
			_ = expected
			return nil, arg.Name, m.errorDetails
		}
		if arg.Name == "self" {
			// Type parameters produced by self represent user-declared
			// class parameters and must be propagated as-is, not widened
			// to union with later arguments (§4.1).
			s = propagateSelfTypeArgs(variable, result)
		} else {
			s = result
		}
	}
	return s, "", nil
}

// propagateSelfTypeArgs installs self's own instance type arguments
// directly into the substitution built so far, overwriting rather than
// merging: self's parameters are already fully resolved and must not be
// widened by later bindings.
func propagateSelfTypeArgs(selfVar *abstract.Variable, built *subst.Subst) *subst.Subst {
	out := built
	if len(selfVar.Bindings) == 0 {
		return out
	}
	inst, ok := selfVar.Bindings[0].Value.(*abstract.Instance)
	if !ok {
		return out
	}
	for name, v := range inst.TypeArgs {
		for _, b := range v.Bindings {
			out = out.Bind(name, b.Value, "self:"+name)
		}
	}
	return out
}

// MatchAllBindings tries every binding of v against formal, merging
// successful substitutions and collecting the union of failures rather
// than stopping at the first binding that happens to succeed (see
// SPEC_FULL.md §3, grounded on pytype's _match_all_bindings). A variable
// with several candidate bindings is only sound for a call site if every
// one of them satisfies the formal.
func (m *Matcher) MatchAllBindings(node services.CFGNode, view *abstract.View, v *abstract.Variable, formal abstract.Value, s *subst.Subst) (*subst.Subst, []Error) {
	if len(v.Bindings) == 0 {
		return s, nil
	}
	current := s
	var allErrs []Error
	for _, b := range v.Bindings {
		result, errs := m.MatchValueAgainstType(node, b.Value, v, formal, current, view)
		if errs != nil {
			allErrs = append(allErrs, errs...)
			continue
		}
		current = subst.Merge(current, result)
	}
	if allErrs != nil {
		return nil, allErrs
	}
	return current, nil
}

// BadMatchEntry is one failing (view, error) pair returned by BadMatches.
type BadMatchEntry struct {
	View    *abstract.View
	Details *ErrorDetails
}

// BadMatches implements bad_matches (§4.1): enumerate views of var,
// returning those for which matching fails and the failed view is
// reachable in the control-flow graph. Short-circuits when either side is
// Unsolvable. The view iterator skips sibling bindings whose type key
// already produced the same (successful) outcome, but enumerates every
// sibling after a failure so all errors are collected.
func (m *Matcher) BadMatches(node services.CFGNode, v *abstract.Variable, other abstract.Value, view *abstract.View) []BadMatchEntry {
	m.resetCaches()

	if formalAmb, ok := other.(*abstract.Ambiguous); ok && formalAmb.IsTop() {
		return nil
	}
	allUnsolvable := len(v.Bindings) > 0
	for _, b := range v.Bindings {
		if amb, ok := b.Value.(*abstract.Ambiguous); !ok || !amb.IsTop() {
			allUnsolvable = false
			break
		}
	}
	if allUnsolvable {
		return nil
	}

	var out []BadMatchEntry
	seenSuccessKeys := map[string]bool{}
	for _, b := range v.Bindings {
		key := policy.TypeKey(b.Value)
		if seenSuccessKeys[key] {
			continue // skip hint: sibling already known to succeed identically
		}
		if m.ControlFlow != nil && !m.ControlFlow.HasCombination([]*abstract.Binding{b}) {
			continue
		}
		candidateView := view.With(v, b)
		m.errorDetails = &ErrorDetails{}
		_, errs := m.MatchValueAgainstType(node, b.Value, v, other, subst.New(), candidateView)
		if errs == nil {
			seenSuccessKeys[key] = true
			continue
		}
		out = append(out, BadMatchEntry{View: candidateView, Details: m.errorDetails})
	}
	return out
}
