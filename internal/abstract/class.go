package abstract

// ClassKind distinguishes the class-shapes §3 calls out by name: ordinary
// parameterized classes plus the four specialized shapes the instance/class
// matcher and protocol matcher give extra treatment.
type ClassKind int

const (
	ClassPlain ClassKind = iota
	ClassTuple
	ClassCallable
	ClassLiteral
	ClassTypedDict
	ClassProtocol
)

// TypedDictField is one declared field of a typed-dict class.
type TypedDictField struct {
	Name     string
	Type     Value
	Required bool
}

// Signature is a callable shape: a parameter list (by declared type, not by
// name — the dispatcher only needs arity and per-position types), a return
// type, and how many leading parameters are mandatory. A function's
// Signatures slice holds one entry per overload.
type Signature struct {
	Name      string
	Params    []Value
	Mandatory int // Params[:Mandatory] have no default
	Return    Value
	// TypeParams are the signature's own type parameters. The
	// single-TypeVar short-circuit (§4.4) does not read this list; it
	// scans Params and Return directly.
	TypeParams []*TypeParameter
}

// Class is a type definition: the carrier both for Instance.Class and for
// the Class-as-value variant. Kind selects which of the specialized fields
// below apply.
type Class struct {
	Name       string
	TypeParams []*TypeParam
	MRO        []*Class // linearized ancestors, most-derived first, ending in object
	Kind       ClassKind

	// IsProtocol marks a class matched structurally rather than nominally.
	// RequiredAttrs names every attribute (possibly inherited) a
	// satisfying instance must provide.
	IsProtocol    bool
	RequiredAttrs []string
	// IsDynamic marks an opaque "duck typed" class: matching it against a
	// protocol always succeeds (§4.4).
	IsDynamic bool

	// ClassTuple: fixed heterogeneous element types.
	TupleElems []Value

	// ClassCallable: the class's own call signature (e.g. a
	// Callable[[int], str] reified as a class).
	CallSig *Signature

	// ClassTypedDict: declared fields.
	Fields []TypedDictField

	// AliasMap handles type-parameter renaming during the MRO walk (§4.3).
	// It is read off the ancestor class being matched: a key is one of that
	// class's own type-parameter names, and its value is the key under
	// which the left instance's TypeArgs holds the corresponding argument.
	AliasMap map[string]string

	// IsRecursiveAnnotation marks a class defined through a self-referential
	// type alias (e.g. JSON = Union[int, str, List["JSON"], Dict[str,
	// "JSON"]]). Only such classes gate the dispatcher's recursion-break
	// cache (§4.2 step 2, §9 "Cyclic references").
	IsRecursiveAnnotation bool
}

// TypeParam is a class- or signature-declared type parameter slot (as
// opposed to abstract.TypeParameter, which is the Value a matched argument
// binds against). Kept distinct because a class's formal parameter list
// needs a name plus a declaration-site default without being itself a
// matchable Value.
type TypeParam struct {
	Name       string
	Constraint Value
	Default    Value
}

// CompatibleBuiltinPairs lists the builtin class-name pairs for which
// matching the first against the second succeeds even though neither is in
// the other's MRO (§4.3 step 4, §4.5 "Match-from-MRO with compatibility").
// Grounded in pytype's pep484.COMPAT_ITEMS table referenced by matcher.py.
var CompatibleBuiltinPairs = [][2]string{
	{"int", "float"},
	{"int", "complex"},
	{"float", "complex"},
	{"bytes", "bytearray"},
}

// IsCompatibleBuiltin reports whether a value of class `from` is allowed to
// satisfy a formal of class `to` via the compatible-builtin rule.
func IsCompatibleBuiltin(from, to string) bool {
	for _, pair := range CompatibleBuiltinPairs {
		if pair[0] == from && pair[1] == to {
			return true
		}
	}
	return false
}

// FullName returns the MRO lookup key for c: just its declared Name, since
// this matcher does not model multiple packages sharing a short name.
func (c *Class) FullName() string {
	return c.Name
}

// MROFullNames returns the full names of every class in c's MRO, used by
// the common-superclass policy to intersect ancestor sets.
func (c *Class) MROFullNames() []string {
	names := make([]string, len(c.MRO))
	for i, m := range c.MRO {
		names[i] = m.FullName()
	}
	return names
}

// UniversalRoots are the class names the common-superclass policy ignores
// when deciding whether a set of values shares a meaningful ancestor (§4.5).
var UniversalRoots = map[string]bool{
	"object":   true,
	"Generic":  true,
	"Protocol": true,
}
