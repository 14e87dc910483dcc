// Package abstract defines the value model the matcher operates on: the
// tagged union of things that can appear on the left (concrete, as-analyzed)
// side of a match, plus the Variable/Binding/View plumbing used to pick a
// single world out of many possible analysis-time values.
package abstract

// Value is the universe of things the matcher can match against a formal
// type. It is a closed tagged union: every concrete case is listed in this
// package and dispatched on via type assertion, never via open interface
// method dispatch, mirroring how the dispatcher itself is organized.
type Value interface {
	isValue()
	String() string
}

// AmbiguousKind distinguishes the three "ambiguous" tokens from §3: Unknown
// and Unsolvable both act as a universal top (they match anything and are
// matched by anything); Empty is the bottom type: as a left value it matches
// anything, but as a formal it is satisfied only by Empty.
type AmbiguousKind int

const (
	Unknown AmbiguousKind = iota
	Unsolvable
	Empty
)

func (k AmbiguousKind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Unsolvable:
		return "Any"
	case Empty:
		return "Empty"
	default:
		return "<invalid ambiguous kind>"
	}
}

// Ambiguous is a top or bottom token. Unknown/Unsolvable are interchangeable
// for matching purposes; Empty is kept distinct since an Empty formal is
// satisfied only by an Empty left value (§4.2 step 10).
type Ambiguous struct {
	Kind AmbiguousKind
}

func (*Ambiguous) isValue()          {}
func (a *Ambiguous) String() string  { return a.Kind.String() }
func (a *Ambiguous) IsTop() bool     { return a.Kind == Unknown || a.Kind == Unsolvable }

// Instance is a value known to be an instance of Class, with a binding of
// that class's type parameters to Variables (§3 "Instance").
type Instance struct {
	Class    *Class
	TypeArgs map[string]*Variable
	// Formal marks a value that itself contains unresolved type parameters
	// embedded in TypeArgs. Per invariant 3 such a value must never reach
	// the leaf match unrewritten.
	Formal bool
}

func (*Instance) isValue() {}
func (i *Instance) String() string {
	if i.Class == nil {
		return "<instance of ?>"
	}
	return "instance of " + i.Class.Name
}

// ClassValue is a class used as a value in its own right (passing the class
// object, not an instance of it) — the left-hand operand in things like
// `match(list, type[Sequence])`.
type ClassValue struct {
	Class    *Class
	TypeArgs map[string]*Variable
}

func (*ClassValue) isValue()         {}
func (c *ClassValue) String() string { return "class " + c.Class.Name }

// FunctionKind distinguishes the function-like Value variants of §3.
type FunctionKind int

const (
	FnInterpreted FunctionKind = iota
	FnNative
	FnBoundMethod
	FnClassMethod
	FnStaticMethod
	FnProperty
	FnSuperProxy
)

// Function is every callable-ish Value variant. Signatures is non-empty for
// overloaded functions; bound methods/properties carry Self.
type Function struct {
	Kind       FunctionKind
	Name       string
	Signatures []*Signature
	Self       Value // non-nil for FnBoundMethod, FnClassMethod, FnProperty
	// ProxyClass is the class a FnSuperProxy resolves attribute lookups
	// against, skipping the subclass that created the proxy.
	ProxyClass *Class
}

func (*Function) isValue() {}
func (f *Function) String() string {
	return "function " + f.Name
}

// TypeParameter is a symbolic, unbound type variable on the formal side
// (§3). Constraints, if present, form a finite closed set the value must
// match at least one of; Bound, if present, is a single upper bound.
type TypeParameter struct {
	Name        string // fully-qualified
	Bound       Value
	Constraints []Value
	Formal      bool
}

func (*TypeParameter) isValue() {}
func (p *TypeParameter) String() string { return p.Name }

// ParamSide says whether a TypeParameterInstance sits on the argument side
// (contravariant) or the return side (covariant) of its owning callable.
type ParamSide int

const (
	SideArg ParamSide = iota
	SideReturn
)

// TypeParameterInstance is a TypeParameter bound to a specific owning
// container: a callable class, a function signature, or a class instance
// (§3). Matching against one consults the owner's current binding rather
// than the bare parameter.
type TypeParameterInstance struct {
	Param *TypeParameter
	Owner Value
	Side  ParamSide
	// InstanceVar is set when Owner is an Instance: the owner's binding for
	// this parameter name, already resolved by the caller.
	InstanceVar *Variable
}

func (*TypeParameterInstance) isValue() {}
func (p *TypeParameterInstance) String() string {
	return p.Param.Name + "@" + p.Owner.String()
}

// Union is a set of alternative values (§3). It is Formal iff any option is.
type Union struct {
	Options []Value
}

func (*Union) isValue() {}
func (u *Union) String() string {
	s := "Union["
	for i, o := range u.Options {
		if i > 0 {
			s += ", "
		}
		s += o.String()
	}
	return s + "]"
}

func (u *Union) IsFormal() bool {
	for _, o := range u.Options {
		if IsFormalValue(o) {
			return true
		}
	}
	return false
}

// IsFormalValue reports whether matching v as a left-hand operand must go
// through the formal-left rewrite of invariant 3.
func IsFormalValue(v Value) bool {
	switch t := v.(type) {
	case *Instance:
		return t.Formal
	case *Union:
		return t.IsFormal()
	case *TypeParameter:
		return t.Formal
	default:
		return false
	}
}

// IsRecursiveAnnotation reports whether formal is (or contains, via a
// Union) a class marked Class.IsRecursiveAnnotation — the predicate that
// gates the dispatcher's recursion-break cache (§4.2 step 2). Plain,
// non-self-referential classes must never be recorded there: only a type
// that can loop back into itself needs the break.
func IsRecursiveAnnotation(v Value) bool {
	switch t := v.(type) {
	case *ClassValue:
		return t.Class != nil && t.Class.IsRecursiveAnnotation
	case *Instance:
		return t.Class != nil && t.Class.IsRecursiveAnnotation
	case *Union:
		for _, opt := range t.Options {
			if IsRecursiveAnnotation(opt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Module is an imported module treated as an opaque value; it only matches
// Module-shaped formals or ambiguous ones.
type Module struct {
	Name string
}

func (*Module) isValue()         {}
func (m *Module) String() string { return "module " + m.Name }

// FinalAnnotation wraps a value declared `Final[T]`, either as a type
// annotation or as an instance of the sentinel Final class holding T as a
// type parameter. §4.2 step 1 strips this on both sides before dispatch.
type FinalAnnotation struct {
	Inner Value
}

func (*FinalAnnotation) isValue()         {}
func (f *FinalAnnotation) String() string { return "Final[" + f.Inner.String() + "]" }

// ConcreteValue is a literal constant (used both as a left-hand operand and
// to represent the pyval carried by a literal Class).
type ConcreteValue struct {
	PyVal any
	Class *Class
}

func (*ConcreteValue) isValue() {}
func (c *ConcreteValue) String() string {
	return "literal"
}

// FieldInstance wraps a dataclass-field-like value: a declared field Type
// plus an optional Default value.
type FieldInstance struct {
	Type    Value
	Default Value // nil if no default
}

func (*FieldInstance) isValue()         {}
func (f *FieldInstance) String() string { return "field:" + f.Type.String() }

// UnwrapFinal strips FinalAnnotation wrappers, however deeply nested. Used
// on both operands at the top of dispatch (§4.2 step 1). An Instance of a
// class named Final is not unwrapped, here or by the dispatcher.
func UnwrapFinal(v Value) Value {
	if f, ok := v.(*FinalAnnotation); ok {
		return UnwrapFinal(f.Inner)
	}
	return v
}
