// Package prelude builds the small fixed set of builtin classes the CLI's
// demo commands and the matcher's test suite match against: object, the
// numeric tower, str, list/tuple, and a couple of illustrative protocols.
// Mirrors the teacher's own prelude-loading step that seeds a checker's
// global scope before any real analysis runs.
package prelude

import "github.com/typeforge-lang/typeforge/internal/abstract"

// Object is the universal root class every other class's MRO ends in.
func Object() *abstract.Class {
	return &abstract.Class{Name: "object"}
}

func leaf(name string, mro ...*abstract.Class) *abstract.Class {
	return &abstract.Class{Name: name, MRO: mro}
}

// Int, Float, Str, Bytes, Bool are the builtin scalar classes, wired
// together through CompatibleBuiltinPairs rather than MRO for the
// int/float/complex and bytes/bytearray relationships (§4.3, §4.5).
func Int() *abstract.Class   { return leaf("int", Object()) }
func Float() *abstract.Class { return leaf("float", Object()) }
func Str() *abstract.Class   { return leaf("str", Object()) }
func Bytes() *abstract.Class { return leaf("bytes", Object()) }
func Bool() *abstract.Class  { return leaf("bool", Int(), Object()) }

// List returns a one-parameter generic list class, `T` the element
// parameter name used by TypeArgs lookups.
func List() *abstract.Class {
	return &abstract.Class{
		Name:       "list",
		MRO:        []*abstract.Class{Object()},
		TypeParams: []*abstract.TypeParam{{Name: "T"}},
	}
}

// Tuple returns the fixed-arity heterogeneous tuple class shape (§3, §4.3).
func Tuple(elems ...abstract.Value) *abstract.Class {
	return &abstract.Class{
		Name:       "tuple",
		MRO:        []*abstract.Class{Object()},
		Kind:       abstract.ClassTuple,
		TupleElems: elems,
	}
}

// Iterable returns the single-parameter Iterable protocol, required
// attribute `__iter__` only.
func Iterable() *abstract.Class {
	return &abstract.Class{
		Name:          "Iterable",
		IsProtocol:    true,
		RequiredAttrs: []string{"__iter__"},
		TypeParams:    []*abstract.TypeParam{{Name: "T"}},
	}
}

// Sequence is Iterable plus __getitem__/__len__, the shape the
// non-iterable-str guard also watches for.
func Sequence() *abstract.Class {
	return &abstract.Class{
		Name:          "Sequence",
		IsProtocol:    true,
		RequiredAttrs: []string{"__iter__", "__getitem__", "__len__"},
		TypeParams:    []*abstract.TypeParam{{Name: "T"}},
	}
}

// Callable returns the bare, unparameterized Callable class (matches any
// callable-shaped left value per the literal-formals rule, §4.3).
func Callable() *abstract.Class {
	return &abstract.Class{Name: "Callable", Kind: abstract.ClassCallable}
}
