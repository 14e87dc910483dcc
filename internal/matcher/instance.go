package matcher

import (
	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

// literalFormalNames are the bare class names that any class-left value
// satisfies unconditionally (§4.3 "A class-left against the literal
// formals object, type, Callable (unparameterized), Hashable: success").
var literalFormalNames = map[string]bool{
	"object":   true,
	"type":     true,
	"Callable": true,
	"Hashable": true,
}

// MatchTypeAgainstType implements §4.3's match_type_against_type: left is
// itself a class-like entity (a class, module, function, super-proxy,
// class/static-method, union, field instance with a default, or a simple
// concrete value) rather than an Instance.
func (m *Matcher) MatchTypeAgainstType(node services.CFGNode, left abstract.Value, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	// Callable is parameterized via CallSig, not TypeArgs (§3): an
	// unparameterized Callable has CallSig == nil.
	unparameterized := len(formal.TypeArgs) == 0 && formal.Class.CallSig == nil
	if literalFormalNames[formal.Class.Name] && unparameterized {
		return s, nil
	}

	switch l := left.(type) {
	case *abstract.ClassValue:
		if formal.Class.Name == "type" && len(formal.TypeArgs) > 0 {
			// type[T]: instantiate T and recurse.
			for name, v := range formal.TypeArgs {
				_ = name
				for _, b := range v.Bindings {
					return m.MatchValueAgainstType(node, left, nil, b.Value, s, view)
				}
			}
		}
		if formal.Class.IsProtocol && containsStr(formal.Class.RequiredAttrs, "__call__") {
			return m.matchClassAgainstCallbackProtocol(node, l, formal, s, view)
		}
		return m.matchClassHierarchy(l.Class, formal.Class, s)

	case *abstract.Function:
		return m.matchFunctionAgainstCallable(node, l, formal, s, view)

	case *abstract.Union:
		var allErrs []Error
		for _, opt := range l.Options {
			result, errs := m.MatchValueAgainstType(node, opt, nil, formal, s, view)
			if errs == nil {
				return result, nil
			}
			allErrs = append(allErrs, errs...)
		}
		return nil, allErrs

	case *abstract.TypeParameterInstance:
		if l.InstanceVar == nil || len(l.InstanceVar.Bindings) == 0 {
			return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
		}
		var allErrs []Error
		current := s
		matched := false
		for _, b := range l.InstanceVar.Bindings {
			result, errs := m.MatchValueAgainstType(node, b.Value, l.InstanceVar, formal, current, view)
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

	case *abstract.Module, *abstract.ConcreteValue, *abstract.FieldInstance:
		return m.matchFallback(left, formal, s)
	}

	return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
}

func containsStr(items []string, s string) bool {
	for _, i := range items {
		if i == s {
			return true
		}
	}
	return false
}

// matchClassAgainstCallbackProtocol implements "Class against callback
// protocol" (§4.3): look up the protocol's __call__, drop its self
// parameter, convert it to a parameterized callable class, and recurse
// with the original left.
func (m *Matcher) matchClassAgainstCallbackProtocol(node services.CFGNode, left *abstract.ClassValue, protocol *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	callVar, ok := m.Attrs.GetAttribute(node, protocol, "__call__", nil)
	if !ok || len(callVar.Bindings) == 0 {
		return nil, []Error{ProtocolMissingAttributesError{LeftClass: left.Class, Protocol: protocol.Class, Missing: []string{"__call__"}}}
	}
	fn, ok := callVar.Bindings[0].Value.(*abstract.Function)
	if !ok || len(fn.Signatures) == 0 {
		return nil, []Error{CannotMatchError{Left: left, Formal: protocol}}
	}
	sig := dropSelf(fn.Signatures[0])
	callableClass := m.Convert.SignatureToCallableClass(sig)
	return m.MatchValueAgainstType(node, left, nil, &abstract.ClassValue{Class: callableClass}, s, view)
}

func dropSelf(sig *abstract.Signature) *abstract.Signature {
	if len(sig.Params) == 0 {
		return sig
	}
	out := *sig
	out.Params = sig.Params[1:]
	if out.Mandatory > 0 {
		out.Mandatory--
	}
	return &out
}

// matchFunctionAgainstCallable implements "Function-like left against
// Callable[...]" (§4.3): try every overload signature, merging every
// successful substitution's bindings.
func (m *Matcher) matchFunctionAgainstCallable(node services.CFGNode, fn *abstract.Function, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	if formal.Class.CallSig == nil {
		return s, nil // unparameterized Callable
	}
	var allErrs []Error
	merged := s
	matchedAny := false
	for _, sig := range fn.Signatures {
		result, errs := m.MatchSignatureAgainstCallable(node, sig, formal.Class, s, view)
		if errs == nil {
			merged = subst.Merge(merged, result)
			matchedAny = true
		} else {
			allErrs = append(allErrs, errs...)
		}
	}
	if matchedAny {
		return merged, nil
	}
	return nil, allErrs
}

// matchClassHierarchy implements match_instance_against_type's MRO walk
// (§4.3 step 4) applied to a bare class (no instance wrapper): used when
// a class value itself (not an instance of it) is being matched against
// another class, e.g. matching a subclass against its parameterized base.
func (m *Matcher) matchClassHierarchy(left, formal *abstract.Class, s *subst.Subst) (*subst.Subst, []Error) {
	for _, ancestor := range append([]*abstract.Class{left}, left.MRO...) {
		if ancestor.FullName() == formal.FullName() || abstract.IsCompatibleBuiltin(ancestor.FullName(), formal.FullName()) {
			return s, nil
		}
	}
	return nil, []Error{CannotMatchError{Left: &abstract.ClassValue{Class: left}, Formal: &abstract.ClassValue{Class: formal}}}
}

// MatchInstanceAgainstType implements match_instance_against_type (§4.3):
// left is a concrete Instance.
func (m *Matcher) MatchInstanceAgainstType(node services.CFGNode, left *abstract.Instance, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	// Step 1: literal class on the right.
	if formal.Class.Kind == abstract.ClassLiteral {
		return m.matchInstanceAgainstLiteral(left, formal, s)
	}

	// Step 2: typed-dict class on the right.
	if formal.Class.Kind == abstract.ClassTypedDict {
		return m.MatchTypedDict(left, formal.Class, s)
	}

	// Step 3: non-iterable-str guard.
	if err := m.checkNonIterableStr(left, formal); err != nil {
		m.errorDetails.record(*err)
		return nil, []Error{*err}
	}

	// Step 4: MRO walk.
	if subst2, errs, hit := m.matchFromMRO(node, left, formal, s, view); hit {
		return subst2, errs
	}

	// Step 5: no MRO hit and formal is a protocol.
	if formal.Class.IsProtocol {
		if len(formal.Class.RequiredAttrs) == 0 {
			return s, nil // step 6: empty protocol
		}
		return m.MatchProtocol(node, left, formal.Class, s)
	}

	return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
}

func (m *Matcher) matchInstanceAgainstLiteral(left *abstract.Instance, formal *abstract.ClassValue, s *subst.Subst) (*subst.Subst, []Error) {
	// Neither Class nor Instance carries a pyval or an enum-member name, so
	// a literal class is matched by class identity alone: the instance
	// matches when its class has the literal class's full name. No pyval
	// or enum-member comparison is made.
	if left.Class != nil && left.Class.FullName() == formal.Class.FullName() {
		return s, nil
	}
	return nil, []Error{CannotMatchError{Left: left, Formal: formal}}
}

// checkNonIterableStr implements §4.3 step 3: reject str/unicode against
// Iterable[str]/Sequence[str]/Collection[str]/Container[str], but allow an
// unparameterized Iterable. The closed list is intentional (Open Question
// 1 in §9): it is not extended to user-defined iterables of str.
var nonIterableStrGuardedNames = map[string]bool{
	"Iterable":   true,
	"Sequence":   true,
	"Collection": true,
	"Container":  true,
}

func (m *Matcher) checkNonIterableStr(left *abstract.Instance, formal *abstract.ClassValue) *NonIterableStrError {
	if left.Class == nil || (left.Class.Name != "str" && left.Class.Name != "unicode") {
		return nil
	}
	if !nonIterableStrGuardedNames[formal.Class.Name] {
		return nil
	}
	if len(formal.TypeArgs) == 0 {
		return nil // unparameterized Iterable is allowed
	}
	for _, v := range formal.TypeArgs {
		for _, b := range v.Bindings {
			// Formal-side type arguments are normally ClassValues; an
			// Instance element is accepted as well.
			var elem *abstract.Class
			switch e := b.Value.(type) {
			case *abstract.Instance:
				elem = e.Class
			case *abstract.ClassValue:
				elem = e.Class
			}
			if elem != nil && (elem.Name == "str" || elem.Name == "unicode") {
				return &NonIterableStrError{Left: left, Other: formal}
			}
		}
	}
	return nil
}

// MatchFromMRO is match_from_mro (§6): the one piece of the instance
// matcher's internals the matcher exposes to its consumers, alongside
// ComputeSubst and BadMatches. allowCompatible mirrors §4.5's "supports a
// flag to allow matches via the compatible-builtin pair list"; when false,
// only exact MRO membership counts as a hit.
func (m *Matcher) MatchFromMRO(node services.CFGNode, left *abstract.Instance, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View, allowCompatible bool) (*subst.Subst, []Error, bool) {
	if !allowCompatible {
		if left.Class == nil {
			return nil, nil, false
		}
		chain := append([]*abstract.Class{left.Class}, left.Class.MRO...)
		for _, ancestor := range chain {
			if ancestor.FullName() == formal.Class.FullName() {
				return m.matchFromMRO(node, left, formal, s, view)
			}
		}
		return nil, nil, false
	}
	return m.matchFromMRO(node, left, formal, s, view)
}

// matchFromMRO implements match_from_mro (§4.3 step 4, §4.5): iterate
// left's MRO, looking for an entry equal to formal's base class (after
// stripping parameterization) or a compatible-builtin pair. MRO entries are
// plain classes compared by full name; there is no wildcard (ambiguous)
// entry. Returns hit=false when nothing in the MRO
// matches, letting the caller fall through to protocol matching.
func (m *Matcher) matchFromMRO(node services.CFGNode, left *abstract.Instance, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error, bool) {
	if left.Class == nil {
		return nil, nil, false
	}
	chain := append([]*abstract.Class{left.Class}, left.Class.MRO...)
	for _, ancestor := range chain {
		if ancestor.FullName() != formal.Class.FullName() && !abstract.IsCompatibleBuiltin(ancestor.FullName(), formal.Class.FullName()) {
			continue
		}

		if formal.Class.Kind == abstract.ClassTuple || ancestor.Kind == abstract.ClassTuple {
			return m.matchTupleSpecialization(node, left, formal, s, view)
		}
		if formal.Class.Kind == abstract.ClassCallable {
			return m.matchCallableSpecialization(node, left, formal, s, view)
		}

		resultSubst, errs := m.matchParameterizedClass(node, left, ancestor, formal, s, view)
		return resultSubst, errs, true
	}
	return nil, nil, false
}

// matchTupleSpecialization implements the heterogeneous-tuple handling of
// §4.3 step 4: pairwise match fixed elements, or reduce to tuple[T, ...]
// by matching each element against the parameter T.
func (m *Matcher) matchTupleSpecialization(node services.CFGNode, left *abstract.Instance, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error, bool) {
	if left.Class.Kind == abstract.ClassTuple && formal.Class.Kind == abstract.ClassTuple {
		if len(left.Class.TupleElems) != len(formal.Class.TupleElems) {
			return nil, []Error{CannotMatchError{Left: left, Formal: formal}}, true
		}
		current := s
		for i, elem := range left.Class.TupleElems {
			result, errs := m.MatchValueAgainstType(node, elem, nil, formal.Class.TupleElems[i], current, view)
			if errs != nil {
				return nil, errs, true
			}
			current = result
		}
		return current, nil, true
	}
	// Reduce to tuple[T, ...]: match every element against the single
	// formal type parameter T.
	var paramVar *abstract.Variable
	for _, v := range formal.TypeArgs {
		paramVar = v
		break
	}
	if paramVar == nil || len(paramVar.Bindings) == 0 {
		return s, nil, true
	}
	elemFormal := paramVar.Bindings[0].Value
	current := s
	elems := left.Class.TupleElems
	for _, elem := range elems {
		result, errs := m.MatchValueAgainstType(node, elem, nil, elemFormal, current, view)
		if errs != nil {
			return nil, errs, true
		}
		current = result
	}
	return current, nil, true
}

// matchCallableSpecialization implements §4.3 step 4's callable
// specialization: match return types, then arg counts (exact), then
// pairwise arg types under contravariance.
func (m *Matcher) matchCallableSpecialization(node services.CFGNode, left *abstract.Instance, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error, bool) {
	leftSig := left.Class.CallSig
	formalSig := formal.Class.CallSig
	if leftSig == nil || formalSig == nil {
		return s, nil, true
	}
	current, errs := m.MatchValueAgainstType(node, leftSig.Return, nil, formalSig.Return, s, view)
	if errs != nil {
		return nil, errs, true
	}
	if len(leftSig.Params) != len(formalSig.Params) {
		return nil, []Error{ArityMismatchError{Expected: len(formalSig.Params), Maximum: len(formalSig.Params), Got: len(leftSig.Params)}}, true
	}
	for i := range leftSig.Params {
		// Contravariance: flip operands.
		result, errs := m.MatchValueAgainstType(node, formalSig.Params[i], nil, leftSig.Params[i], current, view)
		if errs != nil {
			return nil, errs, true
		}
		current = result
	}
	return current, nil, true
}

// matchParameterizedClass implements the general case of §4.3 step 4:
// walk the template, for each formal type parameter extract the
// instance's corresponding parameter-variable and recurse, handling
// parameter renaming via the class's alias map.
func (m *Matcher) matchParameterizedClass(node services.CFGNode, left *abstract.Instance, ancestor *abstract.Class, formal *abstract.ClassValue, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	current := s
	for _, tp := range ancestor.TypeParams {
		formalVar, ok := formal.TypeArgs[tp.Name]
		if !ok {
			continue
		}
		sourceName := tp.Name
		if renamed, ok := ancestor.AliasMap[tp.Name]; ok {
			sourceName = renamed
		}
		leftVar, ok := left.TypeArgs[sourceName]
		if !ok {
			continue
		}
		for _, b := range formalVar.Bindings {
			for _, lb := range leftVar.Bindings {
				result, errs := m.MatchValueAgainstType(node, lb.Value, leftVar, b.Value, current, view)
				if errs != nil {
					return nil, errs
				}
				current = result
			}
		}
	}
	return current, nil
}
