// Package policy implements the type-parameter binding policies of §4.5:
// deciding whether a newly accumulated set of concrete values bound to one
// parameter name is consistent, either because they're all literally the
// same class (single-type policy, used under a TypeVar's constraint set)
// or because they share a meaningful common ancestor (common-superclass
// policy, used otherwise).
package policy

import "github.com/typeforge-lang/typeforge/internal/abstract"

// TypeKey is a coarse identity for a value's "type", used to tell whether
// two bindings of the same variable produce identical matches (§4.2 step 5
// "fold in any other binding... whose type key equals left's type key").
func TypeKey(v abstract.Value) string {
	switch t := v.(type) {
	case *abstract.Instance:
		if t.Class != nil {
			return "instance:" + t.Class.Name
		}
		return "instance:?"
	case *abstract.ClassValue:
		return "class:" + t.Class.Name
	case *abstract.ConcreteValue:
		if t.Class != nil {
			return "literal:" + t.Class.Name
		}
		return "literal:?"
	case *abstract.Ambiguous:
		return "ambiguous:" + t.Kind.String()
	case *abstract.Union:
		s := "union:"
		for _, o := range t.Options {
			s += TypeKey(o) + ","
		}
		return s
	default:
		return "other"
	}
}

// DiscardAmbiguousValues filters out values whose type is ambiguous
// (Unknown/Unsolvable/Empty), TypeParameterInstances, and Unions (§4.5
// "Discard-ambiguous"), supplemented from pytype's
// _discard_ambiguous_values so a single unresolved branch cannot poison an
// otherwise-consistent policy check (see SPEC_FULL.md §3).
func DiscardAmbiguousValues(values []abstract.Value) []abstract.Value {
	out := make([]abstract.Value, 0, len(values))
	for _, v := range values {
		switch v.(type) {
		case *abstract.Ambiguous, *abstract.TypeParameterInstance, *abstract.Union:
			continue
		default:
			out = append(out, v)
		}
	}
	return out
}

// classNameOf extracts the class name a concrete value is an instance of,
// normalized through the compatible-builtin pairing so e.g. int and float
// count as one class for the single-type policy.
func classNameOf(v abstract.Value) (string, bool) {
	var name string
	switch t := v.(type) {
	case *abstract.Instance:
		if t.Class == nil {
			return "", false
		}
		name = t.Class.Name
	case *abstract.ConcreteValue:
		if t.Class == nil {
			return "", false
		}
		name = t.Class.Name
	default:
		return "", false
	}
	// Normalize compatible-builtin pairs to their first member so that,
	// say, both "int" and "float" collapse to the same representative.
	for _, pair := range abstract.CompatibleBuiltinPairs {
		if name == pair[1] {
			return pair[0], true
		}
	}
	return name, true
}

// SingleTypePolicy implements §4.5 "Single-type policy": the domain after
// compatible-builtin normalization must be a singleton. Ambiguous values
// must already have been discarded by the caller.
func SingleTypePolicy(values []abstract.Value) bool {
	seen := map[string]bool{}
	for _, v := range values {
		name, ok := classNameOf(v)
		if !ok {
			// A non-class-shaped value (e.g. a protocol instance checked
			// structurally) can't participate in single-type identity;
			// conservatively treat it as its own singleton class so it
			// doesn't silently pass alongside an unrelated concrete class.
			name = v.String()
		}
		seen[name] = true
		if len(seen) > 1 {
			return false
		}
	}
	return true
}

// CommonSuperclassPolicy implements §4.5 "Common-superclass policy": the
// intersection of MRO full names across all remaining concrete values,
// minus the universal roots, must be non-empty. If object itself was one
// of the values, the universal-root filtering is skipped (an explicit
// match against object is always consistent).
func CommonSuperclassPolicy(values []abstract.Value) bool {
	var mroSets [][]string
	sawObject := false
	for _, v := range values {
		inst, ok := v.(*abstract.Instance)
		if !ok || inst.Class == nil {
			continue
		}
		if inst.Class.Name == "object" {
			sawObject = true
		}
		// MRO excludes the class itself (prelude.go, MROFullNames); prepend
		// it here the same way matchFromMRO/matchClassHierarchy do before
		// walking, so two values of the same class always share at least
		// their own name.
		own := append([]string{inst.Class.FullName()}, inst.Class.MROFullNames()...)
		mroSets = append(mroSets, own)
	}
	if len(mroSets) == 0 {
		return true
	}
	intersection := map[string]int{}
	for _, name := range mroSets[0] {
		intersection[name] = 1
	}
	for _, mro := range mroSets[1:] {
		present := map[string]bool{}
		for _, name := range mro {
			present[name] = true
		}
		for name := range intersection {
			if !present[name] {
				delete(intersection, name)
			}
		}
	}
	for name := range intersection {
		if sawObject {
			return true
		}
		if !abstract.UniversalRoots[name] {
			return true
		}
	}
	return false
}

// SatisfiesProtocolSuperclass implements the "also allow a protocol
// superclass" clause of §4.2 step 5: accept if the existing values include
// a protocol class and newValue matches it structurally. matchesStructurally
// is supplied by the caller (the matcher package), since it requires the
// full protocol-matching machinery this package must not depend on.
func SatisfiesProtocolSuperclass(existing []abstract.Value, newValue abstract.Value, matchesStructurally func(abstract.Value, *abstract.Class) bool) bool {
	for _, v := range existing {
		inst, ok := v.(*abstract.Instance)
		if !ok || inst.Class == nil || !inst.Class.IsProtocol {
			continue
		}
		if matchesStructurally(newValue, inst.Class) {
			return true
		}
	}
	return false
}
