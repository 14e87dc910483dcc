// Package services declares the narrow interfaces the matcher consumes
// from the enclosing analyzer (§6 of the matcher's design): attribute
// lookup, value/variable construction, annotation substitution, control-
// flow reachability, VM bindings, and structured error emission. The
// matcher treats every one of these as an opaque collaborator — it never
// constructs values, looks up attributes, or walks the control-flow graph
// itself.
package services

import "github.com/typeforge-lang/typeforge/internal/abstract"

// ControlFlowNode answers reachability questions used by bad_matches to
// discard views that cannot jointly occur at a program point.
type ControlFlowNode interface {
	// HasCombination reports whether the given bindings (one per
	// variable) are jointly reachable from this node.
	HasCombination(bindings []*abstract.Binding) bool
}

// AttributeHandler resolves attribute lookups against a value, used by the
// protocol matcher to fetch both sides of each required attribute.
type AttributeHandler interface {
	// GetAttribute looks up name on value, optionally binding the
	// descriptor against valself (used to resolve properties). A nil
	// Variable with ok=false means the attribute does not exist.
	GetAttribute(node CFGNode, value abstract.Value, name string, valself abstract.Value) (*abstract.Variable, bool)
}

// ConvertService builds and converts values: instantiating primitive
// classes, wrapping concrete values into variables, reifying a Signature
// as a callable class, and merging values produced along different
// branches.
type ConvertService interface {
	// InstanceOf builds an Instance of cls with the given type-parameter
	// bindings.
	InstanceOf(cls *abstract.Class, typeArgs map[string]*abstract.Variable) *abstract.Instance
	// VariableOf wraps a concrete value into a single-binding Variable.
	VariableOf(v abstract.Value, origin string) *abstract.Variable
	// SignatureToCallableClass reifies a function Signature as a
	// parameterized callable Class, used when a protocol's __call__
	// attribute needs to be matched as a value.
	SignatureToCallableClass(sig *abstract.Signature) *abstract.Class
	// Merge combines two values observed along different branches into
	// one (e.g. widening to a Union).
	Merge(a, b abstract.Value) abstract.Value
}

// AnnotationUtils exposes the two capabilities the matcher needs from the
// annotation-substitution subsystem without owning it.
type AnnotationUtils interface {
	// GetTypeParameters returns every TypeParameter a formal type
	// mentions, used to fill in BindEmpty entries for union matches.
	GetTypeParameters(formal abstract.Value) []*abstract.TypeParameter
	// SubOneAnnotation applies a substitution to a formal type, producing
	// the concrete type it denotes — used to render the "expected type"
	// in a failure report.
	SubOneAnnotation(node CFGNode, formal abstract.Value, substDomain map[string]*abstract.Variable) abstract.Value
}

// VM exposes the handful of bytecode-VM capabilities bound-method
// resolution and super-proxy matching need.
type VM interface {
	BindMethod(node CFGNode, fn *abstract.Function, self *abstract.Variable) *abstract.Function
	StoreSubscr(node CFGNode, obj, key, value abstract.Value) bool
	CallFunction(node CFGNode, fn abstract.Value, args []abstract.Value) (*abstract.Variable, bool)
	ImportModule(name string) (*abstract.Module, bool)
	Frames() []CFGNode
}

// Program exposes variable construction scoped to the enclosing analyzer's
// notion of a program point and source node.
type Program interface {
	NewVariable(values []abstract.Value, sources []CFGNode, node CFGNode) *abstract.Variable
}

// ErrorLog is the structured error emitter consulted for diagnostics that
// fall outside the matcher's own return-value error taxonomy (invalid
// supercall, invalid argument count at a call site, reveal-type, etc).
type ErrorLog interface {
	InvalidArgCount(node CFGNode, expected, got int)
	InvalidSupercall(node CFGNode, msg string)
	RevealType(node CFGNode, v abstract.Value)
}

// CFGNode is an opaque control-flow graph position. The matcher never
// inspects its contents; it only threads it through to the services above.
// Reporting source locations is explicitly out of scope, so this is
// intentionally not tied to any span/line representation.
type CFGNode interface {
	ID() string
}
