package services

import "github.com/typeforge-lang/typeforge/internal/abstract"

// SimpleNode is a trivial CFGNode used by the in-memory fakes and by
// tests: just a label, no position information.
type SimpleNode struct {
	Label string
}

func (n SimpleNode) ID() string { return n.Label }

// AlwaysReachable is a ControlFlowNode fake that treats every combination
// of bindings as jointly reachable. Suitable for tests and for the CLI's
// standalone "match" command, which has no real control-flow graph to
// consult.
type AlwaysReachable struct{}

func (AlwaysReachable) HasCombination(bindings []*abstract.Binding) bool { return true }

// AttrTable is an in-memory AttributeHandler fake keyed by (class name,
// attribute name); it looks up attributes declared on a value's class or,
// failing that, on the classes of its MRO in order (no descriptor
// resolution), enough to drive protocol-matching
// tests and the CLI's demo mode without a real attribute-lookup service.
type AttrTable struct {
	byClass map[string]map[string]abstract.Value
}

func NewAttrTable() *AttrTable {
	return &AttrTable{byClass: make(map[string]map[string]abstract.Value)}
}

// Declare registers attribute name on className with the given value.
func (t *AttrTable) Declare(className, name string, v abstract.Value) *AttrTable {
	m, ok := t.byClass[className]
	if !ok {
		m = make(map[string]abstract.Value)
		t.byClass[className] = m
	}
	m[name] = v
	return t
}

func (t *AttrTable) GetAttribute(node CFGNode, value abstract.Value, name string, valself abstract.Value) (*abstract.Variable, bool) {
	inst, ok := value.(*abstract.Instance)
	if !ok || inst.Class == nil {
		return nil, false
	}
	for _, cls := range append([]*abstract.Class{inst.Class}, inst.Class.MRO...) {
		if m, ok := t.byClass[cls.Name]; ok {
			if v, ok := m[name]; ok {
				return abstract.NewVariable("attr:"+name, v), true
			}
		}
	}
	return nil, false
}

// BasicConvert is a ConvertService fake sufficient for tests: it builds
// instances and variables directly and merges values into a Union rather
// than consulting any real widening heuristic.
type BasicConvert struct{}

func (BasicConvert) InstanceOf(cls *abstract.Class, typeArgs map[string]*abstract.Variable) *abstract.Instance {
	return &abstract.Instance{Class: cls, TypeArgs: typeArgs}
}

func (BasicConvert) VariableOf(v abstract.Value, origin string) *abstract.Variable {
	return abstract.NewVariable(origin, v)
}

func (BasicConvert) SignatureToCallableClass(sig *abstract.Signature) *abstract.Class {
	return &abstract.Class{
		Name:    "Callable",
		Kind:    abstract.ClassCallable,
		CallSig: sig,
	}
}

func (BasicConvert) Merge(a, b abstract.Value) abstract.Value {
	if a == b {
		return a
	}
	return &abstract.Union{Options: []abstract.Value{a, b}}
}
