package matcher

import (
	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

// MatchProtocol implements the protocol-matching component of §4.4: given
// an instance-left and a protocol-right, check every required attribute
// structurally.
func (m *Matcher) MatchProtocol(node services.CFGNode, left *abstract.Instance, protocol *abstract.Class, s *subst.Subst) (*subst.Subst, []Error) {
	if left.Class == nil {
		return s, nil // an ambiguous/unknown class succeeds
	}
	if left.Class.IsDynamic {
		current := s
		for _, tp := range protocol.TypeParams {
			current = current.BindEmpty(tp.Name)
		}
		return current, nil
	}

	key := protocolKey{leftClass: left.Class, protocol: protocol}
	if m.protocolCache.Contains(key) {
		return s, nil // cycle already being chased; succeed to let it unwind
	}

	// Attribute existence is decided by the AttributeHandler service, not by
	// any static list on the concrete class — a class's RequiredAttrs field
	// only has meaning when the class is itself a protocol. __getitem__
	// stands in for __iter__ when the latter is absent (sequence-protocol
	// emulation, §4.4).
	var missing []string
	attrVars := make(map[string]*abstract.Variable, len(protocol.RequiredAttrs))
	for _, required := range protocol.RequiredAttrs {
		v, ok := m.Attrs.GetAttribute(node, left, required, left)
		if !ok && required == "__iter__" {
			v, ok = m.Attrs.GetAttribute(node, left, "__getitem__", left)
		}
		if !ok {
			missing = append(missing, required)
			continue
		}
		attrVars[required] = v
	}
	if len(missing) > 0 {
		err := ProtocolMissingAttributesError{LeftClass: left.Class, Protocol: protocol, Missing: missing}
		m.errorDetails.record(err)
		return nil, []Error{err}
	}

	snap := m.snapshotProtocolCache()
	m.protocolCache.Add(key)
	defer m.restoreProtocolCache(snap)

	view := abstract.NewView()
	current := s
	for _, attrName := range protocol.RequiredAttrs {
		leftVar := attrVars[attrName]
		protoSelf := &abstract.Instance{Class: protocol}
		rightVar, ok := m.Attrs.GetAttribute(node, protoSelf, attrName, protoSelf)
		if !ok || len(rightVar.Bindings) == 0 {
			continue
		}

		matchedAttr := false
		var attrErrs []Error
		for _, lb := range leftVar.Bindings {
			leftAttrValue := m.convertAttrForMatching(lb.Value, false)
			for _, rb := range rightVar.Bindings {
				rightAttrValue := m.convertAttrForMatching(rb.Value, true)
				result, errs := m.MatchValueAgainstType(node, leftAttrValue, leftVar, rightAttrValue, current, view)
				if errs == nil {
					current = result
					matchedAttr = true
					break
				}
				attrErrs = append(attrErrs, errs...)
			}
			if matchedAttr {
				break
			}
		}
		if !matchedAttr {
			var actual, expected abstract.Value = abstract.Value(&abstract.Ambiguous{Kind: abstract.Unknown}), abstract.Value(&abstract.Ambiguous{Kind: abstract.Unknown})
			if len(leftVar.Bindings) > 0 {
				actual = leftVar.Bindings[0].Value
			}
			if len(rightVar.Bindings) > 0 {
				expected = rightVar.Bindings[0].Value
			}
			err := ProtocolTypeError{LeftClass: left.Class, Protocol: protocol, Attr: attrName, Actual: actual, Expected: expected}
			m.errorDetails.record(err)
			return nil, []Error{err}
		}
	}
	return current, nil
}

// convertAttrForMatching converts a protocol callable attribute to a
// reified callable class so it can be matched as an ordinary Value, leaving
// non-callable attributes untouched. asFormal selects which side of a
// match the result plays: the left (concrete) side needs an Instance of
// the callable class so it routes through the instance/class matcher's MRO
// walk into matchCallableSpecialization; the formal (right) side needs the
// bare ClassValue matchFromMRO expects as a formal.
func (m *Matcher) convertAttrForMatching(v abstract.Value, asFormal bool) abstract.Value {
	fn, ok := v.(*abstract.Function)
	if !ok || len(fn.Signatures) == 0 {
		return v
	}
	cls := m.Convert.SignatureToCallableClass(fn.Signatures[0])
	if asFormal {
		return &abstract.ClassValue{Class: cls}
	}
	return &abstract.Instance{Class: cls}
}

// MatchSignatureAgainstCallable implements match_signature_against_callable
// (§4.4): a function signature matched against a parameterized callable or
// its unparameterized form.
func (m *Matcher) MatchSignatureAgainstCallable(node services.CFGNode, sig *abstract.Signature, callable *abstract.Class, s *subst.Subst, view *abstract.View) (*subst.Subst, []Error) {
	if callable.CallSig == nil {
		return s, nil // unparameterized Callable: success
	}

	current := s
	if shortCircuit, newSubst := m.singleTypeVarShortCircuit(sig, callable.CallSig, s); shortCircuit {
		current = newSubst
	} else {
		result, errs := m.MatchValueAgainstType(node, sig.Return, nil, callable.CallSig.Return, current, view)
		if errs != nil {
			return nil, errs
		}
		current = result
	}

	n := len(callable.CallSig.Params)
	if n < sig.Mandatory || n > len(sig.Params) {
		return nil, []Error{ArityMismatchError{Expected: sig.Mandatory, Maximum: len(sig.Params), Got: n}}
	}

	for i := 0; i < n; i++ {
		// Contravariance: flip operands.
		result, errs := m.MatchValueAgainstType(node, callable.CallSig.Params[i], nil, sig.Params[i], current, view)
		if errs != nil {
			return nil, errs
		}
		current = result
	}
	return current, nil
}

// singleTypeVarShortCircuit implements §4.4's single-TypeVar short
// circuit: if both the signature's return and the callable's return are
// bare, unbounded, unconstrained type variables, and the callable's
// variable occurs exactly once in the callable's signature as counted by
// countTypeVarOccurrences (that is, in the return position and in no
// parameter), simply record the name as bound with an empty placeholder
// and succeed. This
// preserves the intended reading of `g(f: Callable[[T], Any], x: T)`.
func (m *Matcher) singleTypeVarShortCircuit(sig *abstract.Signature, callableSig *abstract.Signature, s *subst.Subst) (bool, *subst.Subst) {
	sigTP, sigOK := sig.Return.(*abstract.TypeParameter)
	calleeTP, calleeOK := callableSig.Return.(*abstract.TypeParameter)
	if !sigOK || !calleeOK {
		return false, nil
	}
	if sigTP.Bound != nil || len(sigTP.Constraints) > 0 || calleeTP.Bound != nil || len(calleeTP.Constraints) > 0 {
		return false, nil
	}
	occurrences := countTypeVarOccurrences(calleeTP.Name, callableSig)
	if occurrences != 1 {
		return false, nil
	}
	return true, s.BindEmpty(calleeTP.Name)
}

// countTypeVarOccurrences counts the positions in sig.Params and sig.Return
// that are a bare TypeParameter named name. It is a plain per-position
// scan: Signature has no pseudo-Args slot that unions all arguments, so
// nothing is subtracted for one.
func countTypeVarOccurrences(name string, sig *abstract.Signature) int {
	count := 0
	for _, p := range sig.Params {
		if tp, ok := p.(*abstract.TypeParameter); ok && tp.Name == name {
			count++
		}
	}
	if tp, ok := sig.Return.(*abstract.TypeParameter); ok && tp.Name == name {
		count++
	}
	return count
}

// MatchTypedDict implements the typed-dict matcher of §4.4: compute
// missing required keys, extra undeclared keys, and per-present-key bad
// matches; succeed iff all three are empty.
func (m *Matcher) MatchTypedDict(left *abstract.Instance, typedDict *abstract.Class, s *subst.Subst) (*subst.Subst, []Error) {
	present := map[string]abstract.Value{}
	if left.TypeArgs != nil {
		for name, v := range left.TypeArgs {
			if len(v.Bindings) > 0 {
				present[name] = v.Bindings[0].Value
			}
		}
	}

	declared := map[string]abstract.TypedDictField{}
	for _, f := range typedDict.Fields {
		declared[f.Name] = f
	}

	missing := map[string]bool{}
	for _, f := range typedDict.Fields {
		if f.Required {
			if _, ok := present[f.Name]; !ok {
				missing[f.Name] = true
			}
		}
	}

	extra := map[string]bool{}
	for name := range present {
		if _, ok := declared[name]; !ok {
			extra[name] = true
		}
	}

	var bad []BadKeyMatch
	view := abstract.NewView()
	current := s
	for name, value := range present {
		field, ok := declared[name]
		if !ok {
			continue
		}
		result, errs := m.MatchValueAgainstType(nil, value, nil, field.Type, current, view)
		if errs != nil {
			bad = append(bad, BadKeyMatch{Key: name, Actual: value, Expected: field.Type, Errors: errs})
			continue
		}
		current = result
	}

	if len(bad) == 0 && len(extra) == 0 && len(missing) == 0 {
		return current, nil
	}
	err := TypedDictError{Bad: bad, Extra: extra, Missing: missing}
	m.errorDetails.record(err)
	return nil, []Error{err}
}
