package matcher

import (
	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

// MatchValueAgainstType is the Value/Type dispatcher (§4.2): given a
// concrete left value and a formal type, it produces an updated
// substitution on success or nil plus the errors that caused failure.
//
// leftVar, when non-nil, is the Variable left was drawn from during view
// iteration; it lets the type-parameter-binding step (§4.2 step 5) fold in
// sibling bindings that produce an identical match without the driver
// having to re-derive that relationship.
func (m *Matcher) MatchValueAgainstType(node services.CFGNode, left abstract.Value, leftVar *abstract.Variable, formal abstract.Value, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	// Step 1: unwrap Final on both sides.
	left = abstract.UnwrapFinal(left)
	formal = abstract.UnwrapFinal(formal)

	// Step 2: recursion break. A (left, formal) pair seen earlier in this
	// same top-level call means we've looped back into a recursive
	// annotation chain; succeed without changing subst so the outer call
	// can keep unwinding (§9 "Cyclic references"). Only recorded when
	// formal is itself a recursive annotation — recording every
	// (left, formal) pair unconditionally would short-circuit a legitimate
	// second match against an ordinary, non-cyclic type.
	rk := recursionKey{left: left, formal: formal}
	if m.recursiveAnnotsCache.Contains(rk) {
		return s, nil
	}
	if abstract.IsRecursiveAnnotation(formal) {
		m.recursiveAnnotsCache.Add(rk)
	}

	// Step 3: formal-left rewrite (invariant 3). A value containing
	// unresolved type parameters must never reach a leaf match as a
	// left-hand operand.
	if abstract.IsFormalValue(left) {
		rewritten := m.rewriteFormalValue(left)
		return m.MatchValueAgainstType(node, rewritten, leftVar, formal, s, view)
	}

	// Step 4: TypeParameterInstance on the left.
	if tpi, ok := left.(*abstract.TypeParameterInstance); ok {
		return m.matchTypeParameterInstanceLeft(node, tpi, leftVar, formal, s, view)
	}

	// Step 5: TypeParameter on the right — this is where substitution
	// entries get built.
	if tp, ok := formal.(*abstract.TypeParameter); ok {
		return m.matchAgainstTypeParameter(node, left, leftVar, tp, s, view)
	}

	// Step 6: NoReturn on either side matches only itself or an ambiguous.
	leftNoReturn, formalNoReturn := isNoReturn(left), isNoReturn(formal)
	if formalNoReturn {
		if leftNoReturn || isAmbiguous(left) {
			return s, nil
		}
		return nil, []Error{CannotMatchError{Left: left, Formal: formal, ErrorSubst: m.errorDetails.ErrorSubstDomain}}
	}
	if leftNoReturn {
		if isAmbiguous(formal) {
			return s, nil
		}
		return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
	}

	// Step 9/10: ambiguous handling, checked before the class/union
	// dispatch so an ambiguous left value is a universal top regardless of
	// the formal's shape. Empty on the formal side is stricter than the
	// general top/bottom escape hatch: only an Empty left satisfies it.
	if formalAmb, ok := formal.(*abstract.Ambiguous); ok {
		if formalAmb.Kind == abstract.Empty {
			if leftAmb, ok := left.(*abstract.Ambiguous); ok && leftAmb.Kind == abstract.Empty {
				return s, nil
			}
			return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
		}
		return s, nil // Unknown/Unsolvable formal: universal top
	}
	if isAmbiguous(left) {
		return s, nil
	}

	// Step 7: Class on the right — delegate to the instance/class matcher.
	if formalClass, ok := formal.(*abstract.ClassValue); ok {
		if inst, ok := left.(*abstract.Instance); ok {
			return m.MatchInstanceAgainstType(node, inst, formalClass, s, view)
		}
		return m.MatchTypeAgainstType(node, left, formalClass, s, view)
	}

	// Step 8: Union on the right.
	if formalUnion, ok := formal.(*abstract.Union); ok {
		return m.matchAgainstUnion(node, left, leftVar, formalUnion, s, view)
	}

	// Fallthrough: remaining Value kinds (Module, ConcreteValue,
	// FieldInstance, functions compared directly, etc.) that weren't
	// routed to the class matcher because the formal isn't class-shaped.
	return m.matchFallback(left, formal, s)
}

func isAmbiguous(v abstract.Value) bool {
	a, ok := v.(*abstract.Ambiguous)
	return ok && a != nil
}

func isNoReturn(v abstract.Value) bool {
	switch t := v.(type) {
	case *abstract.ClassValue:
		return t.Class != nil && t.Class.Name == "NoReturn"
	case *abstract.Instance:
		return t.Class != nil && t.Class.Name == "NoReturn"
	default:
		return false
	}
}

// rewriteFormalValue implements invariant 3's rewrite: every embedded type
// parameter in left's type arguments is replaced with the top
// object-instance before re-dispatch, so a value that is itself doing
// runtime type manipulation can't masquerade as a concrete value.
func (m *Matcher) rewriteFormalValue(left abstract.Value) abstract.Value {
	inst, ok := left.(*abstract.Instance)
	if !ok {
		// A formal TypeParameter is itself an embedded type parameter, so
		// it becomes the top instance outright.
		if _, ok := left.(*abstract.TypeParameter); ok {
			return m.objectInstance()
		}
		// A Union rewrites each formal option independently.
		if u, ok := left.(*abstract.Union); ok {
			opts := make([]abstract.Value, len(u.Options))
			for i, o := range u.Options {
				if abstract.IsFormalValue(o) {
					opts[i] = m.rewriteFormalValue(o)
				} else {
					opts[i] = o
				}
			}
			return &abstract.Union{Options: opts}
		}
		return left
	}
	objInstance := m.objectInstance()
	rewrittenArgs := make(map[string]*abstract.Variable, len(inst.TypeArgs))
	for name, v := range inst.TypeArgs {
		hasParam := false
		for _, b := range v.Bindings {
			switch b.Value.(type) {
			case *abstract.TypeParameter, *abstract.TypeParameterInstance:
				hasParam = true
			}
		}
		if hasParam {
			rewrittenArgs[name] = abstract.NewVariable("formal-rewrite", objInstance)
		} else {
			rewrittenArgs[name] = v
		}
	}
	return &abstract.Instance{Class: inst.Class, TypeArgs: rewrittenArgs, Formal: false}
}

// objectInstance returns an Instance of the matcher's configured top
// class, used by the formal-left rewrite. With no ObjectClass configured it
// returns an Unknown ambiguous value instead.
func (m *Matcher) objectInstance() abstract.Value {
	if m.ObjectClass == nil {
		return &abstract.Ambiguous{Kind: abstract.Unknown}
	}
	return &abstract.Instance{Class: m.ObjectClass}
}

// matchFallback handles the Value kinds that aren't class-shaped formals:
// direct structural comparisons for modules, concrete literals used as
// formals (rare, but valid e.g. Literal-vs-Literal without going through a
// Class), and a final failure otherwise.
func (m *Matcher) matchFallback(left, formal abstract.Value, s *subst.Subst) (*subst.Subst, []Error) {
	switch f := formal.(type) {
	case *abstract.Module:
		if l, ok := left.(*abstract.Module); ok && l.Name == f.Name {
			return s, nil
		}
	case *abstract.ConcreteValue:
		if l, ok := left.(*abstract.ConcreteValue); ok && l.PyVal == f.PyVal {
			return s, nil
		}
	}
	return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
}

// matchAgainstUnion implements §4.2 step 8: try each option, non-formal
// options first. The first matching non-formal option short-circuits —
// formal options are not subsequently tried — but the substitution is
// still filled in with empty bindings for every type parameter the union
// mentions, so downstream code sees a fully-defined domain. Ambiguous or
// formal left values keep accumulating matches across every option
// instead of stopping at the first.
func (m *Matcher) matchAgainstUnion(node services.CFGNode, left abstract.Value, leftVar *abstract.Variable, formal *abstract.Union, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	nonFormal := make([]abstract.Value, 0, len(formal.Options))
	isFormal := make([]abstract.Value, 0, len(formal.Options))
	for _, opt := range formal.Options {
		if abstract.IsFormalValue(opt) {
			isFormal = append(isFormal, opt)
		} else {
			nonFormal = append(nonFormal, opt)
		}
	}
	ordered := append(append([]abstract.Value{}, nonFormal...), isFormal...)

	keepAccumulating := isAmbiguous(left) || abstract.IsFormalValue(left)

	var allErrs []Error
	current := s
	matchedAny := false
	for i, opt := range ordered {
		isNonFormalOpt := i < len(nonFormal)
		result, errs := m.MatchValueAgainstType(node, left, leftVar, opt, current, view)
		if errs == nil {
			matchedAny = true
			current = result
			if isNonFormalOpt && !keepAccumulating {
				// Fill every type parameter the union mentions with an
				// empty binding so the domain stays fully defined, then
				// stop — formal options are not subsequently tried.
				for _, name := range m.unionTypeParamNames(formal) {
					current = current.BindEmpty(name)
				}
				return current, nil
			}
			continue
		}
		allErrs = append(allErrs, errs...)
	}
	if matchedAny {
		for _, name := range m.unionTypeParamNames(formal) {
			current = current.BindEmpty(name)
		}
		return current, nil
	}
	return nil, allErrs
}

// unionTypeParamNames collects the names of every TypeParameter any option
// of u mentions directly (a shallow scan sufficient for the "fill the
// domain" contract of step 8; nested annotation walking is the external
// AnnotationUtils.GetTypeParameters service's job).
func (m *Matcher) unionTypeParamNames(u *abstract.Union) []string {
	var names []string
	for _, opt := range u.Options {
		if tp, ok := opt.(*abstract.TypeParameter); ok {
			names = append(names, tp.Name)
		}
		if m.Annots != nil {
			for _, tp := range m.Annots.GetTypeParameters(opt) {
				names = append(names, tp.Name)
			}
		}
	}
	return names
}
