package matcher

import (
	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/policy"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

// matchTypeParameterInstanceLeft implements §4.2 step 4: a
// TypeParameterInstance on the left is attached to a callable class or
// signature. Against a bare TypeParameter formal it delegates to
// type-parameter-vs-type-parameter matching; otherwise it either flips
// operands (contravariance, when it sits on the argument side) or
// instantiates to the parameter's upper bound (when it sits on the return
// side) and recurses.
func (m *Matcher) matchTypeParameterInstanceLeft(node services.CFGNode, tpi *abstract.TypeParameterInstance, leftVar *abstract.Variable, formal abstract.Value, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	if formalTP, ok := formal.(*abstract.TypeParameter); ok {
		return m.matchTypeParamVsTypeParam(tpi.Param, formalTP, s)
	}
	if tpi.InstanceVar != nil {
		// The owning instance already has a concrete binding for this
		// parameter (e.g. a resolved generic field); match every binding
		// of that variable instead of the bare symbolic parameter.
		var allErrs []Error
		current := s
		matched := false
		for _, b := range tpi.InstanceVar.Bindings {
			result, errs := m.MatchValueAgainstType(node, b.Value, tpi.InstanceVar, formal, current, view)
			if errs == nil {
				current = result
				matched = true
			} else {
				allErrs = append(allErrs, errs...)
			}
		}
		if matched {
			return current, nil
		}
		return nil, allErrs
	}
	switch tpi.Side {
	case abstract.SideArg:
		// Contravariance: flip operands and recurse.
		return m.MatchValueAgainstType(node, formal, nil, tpi.Param, s, view)
	default: // SideReturn
		bound := tpi.Param.Bound
		if bound == nil {
			bound = &abstract.Ambiguous{Kind: abstract.Unknown}
		}
		return m.MatchValueAgainstType(node, bound, nil, formal, s, view)
	}
}

// matchAgainstTypeParameter implements §4.2 step 5: the substitution-
// building core. leftVar, if non-nil, is the Variable left came from, used
// to fold in sibling bindings producing an identical match.
func (m *Matcher) matchAgainstTypeParameter(node services.CFGNode, left abstract.Value, leftVar *abstract.Variable, tp *abstract.TypeParameter, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	if len(tp.Constraints) > 0 {
		satisfied := false
		for _, c := range tp.Constraints {
			if _, errs := m.MatchValueAgainstType(node, left, leftVar, c, s, view); errs == nil {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return nil, []Error{ConstraintViolationError{Left: left, Constraints: tp.Constraints}}
		}
	}

	if tp.Bound != nil {
		if _, errs := m.MatchValueAgainstType(node, left, leftVar, tp.Bound, s, view); errs != nil {
			m.errorDetails.ErrorSubstDomain = s.Bindings()
			return nil, []Error{BoundViolationError{Left: left, Bound: tp.Bound}}
		}
	}

	newValue := maybeAbstractInstance(left)
	candidates := []abstract.Value{newValue}

	existing, hadExisting := s.Get(tp.Name)
	if hadExisting {
		// Fold in sibling bindings of the same source variable that
		// produce an identical match (§4.2 step 5 "fold in any other
		// binding of the source variable whose type key equals left's
		// type key").
		if leftVar != nil {
			key := policy.TypeKey(left)
			for _, b := range leftVar.Bindings {
				if b.Value != left && policy.TypeKey(b.Value) == key {
					candidates = append(candidates, maybeAbstractInstance(b.Value))
				}
			}
		}
		candidates = append(candidates, existing.Values()...)
	}

	checked := policy.DiscardAmbiguousValues(candidates)
	var ok bool
	if len(tp.Constraints) > 0 {
		ok = policy.SingleTypePolicy(checked)
	} else {
		ok = policy.CommonSuperclassPolicy(checked) ||
			policy.SatisfiesProtocolSuperclass(checked, newValue, m.protocolMatchesStructurally)
	}
	if !hadExisting || len(checked) <= 1 {
		ok = true
	}
	if !ok {
		return nil, []Error{CannotMatchError{Left: left, Formal: tp}}
	}

	return s.Bind(tp.Name, newValue, "type-param:"+tp.Name), nil
}

// maybeAbstractInstance collapses concrete literals into their class
// instance form before they're stored in a substitution, matching
// pytype's "maybe-abstract instance" conversion: a literal int used to
// satisfy an unconstrained TypeVar should widen to plain int, not stay
// pinned to the literal value.
func maybeAbstractInstance(v abstract.Value) abstract.Value {
	if c, ok := v.(*abstract.ConcreteValue); ok && c.Class != nil {
		return &abstract.Instance{Class: c.Class}
	}
	return v
}

// matchTypeParamVsTypeParam implements the type-parameter-vs-type-
// parameter rule of §4.5: the formal (right) parameter may have
// constraints or a bound, never both. If it has constraints, the left
// parameter must also have constraints forming a subset. If it has a
// bound, the left's bound (if any) must match it, or every one of the
// left's constraints must match it.
func (m *Matcher) matchTypeParamVsTypeParam(left, right *abstract.TypeParameter, s *subst.Subst) (*subst.Subst, []Error) {
	if len(right.Constraints) > 0 {
		if len(left.Constraints) == 0 {
			return nil, []Error{CannotMatchError{Left: left, Formal: right}}
		}
		rightSet := map[string]bool{}
		for _, c := range right.Constraints {
			rightSet[policy.TypeKey(c)] = true
		}
		for _, c := range left.Constraints {
			if !rightSet[policy.TypeKey(c)] {
				return nil, []Error{CannotMatchError{Left: left, Formal: right}}
			}
		}
		return s, nil
	}
	if right.Bound != nil {
		matchesBound := func(v abstract.Value) bool {
			_, errs := m.MatchValueAgainstType(nil, v, nil, right.Bound, s, abstract.NewView())
			return errs == nil
		}
		if left.Bound != nil {
			if !matchesBound(left.Bound) {
				return nil, []Error{BoundViolationError{Left: left, Bound: right.Bound}}
			}
			return s, nil
		}
		if len(left.Constraints) == 0 {
			return nil, []Error{BoundViolationError{Left: left, Bound: right.Bound}}
		}
		for _, c := range left.Constraints {
			if !matchesBound(c) {
				return nil, []Error{BoundViolationError{Left: left, Bound: right.Bound}}
			}
		}
		return s, nil
	}
	return s, nil
}

func valuesEqual(a, b abstract.Value) bool {
	return policy.TypeKey(a) == policy.TypeKey(b)
}

// protocolMatchesStructurally is the matchesStructurally callback policy's
// SatisfiesProtocolSuperclass needs: try a protocol match, discard subst
// and errors, report only success.
func (m *Matcher) protocolMatchesStructurally(v abstract.Value, protocolClass *abstract.Class) bool {
	inst, ok := v.(*abstract.Instance)
	if !ok {
		return false
	}
	_, errs := m.MatchProtocol(nil, inst, protocolClass, subst.New())
	return errs == nil
}
