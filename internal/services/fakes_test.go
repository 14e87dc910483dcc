package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeforge-lang/typeforge/internal/abstract"
)

func TestSimpleNodeID(t *testing.T) {
	assert.Equal(t, "demo", SimpleNode{Label: "demo"}.ID())
}

func TestAlwaysReachableAcceptsAnyCombination(t *testing.T) {
	var cf AlwaysReachable
	b := &abstract.Binding{Value: &abstract.Ambiguous{Kind: abstract.Unknown}}
	assert.True(t, cf.HasCombination([]*abstract.Binding{b}))
	assert.True(t, cf.HasCombination(nil))
}

func TestAttrTableLooksUpDirectlyDeclaredAttribute(t *testing.T) {
	table := NewAttrTable()
	intVal := &abstract.Instance{Class: &abstract.Class{Name: "int"}}
	table.Declare("str", "upper", intVal)

	left := &abstract.Instance{Class: &abstract.Class{Name: "str"}}
	v, ok := table.GetAttribute(SimpleNode{Label: "n"}, left, "upper", left)
	require.True(t, ok)
	require.Len(t, v.Bindings, 1)
	assert.Same(t, intVal, v.Bindings[0].Value)
}

func TestAttrTableWalksMRO(t *testing.T) {
	table := NewAttrTable()
	method := &abstract.Instance{Class: &abstract.Class{Name: "int"}}
	table.Declare("Animal", "speak", method)

	animal := &abstract.Class{Name: "Animal"}
	dog := &abstract.Class{Name: "Dog", MRO: []*abstract.Class{animal}}
	left := &abstract.Instance{Class: dog}

	v, ok := table.GetAttribute(SimpleNode{Label: "n"}, left, "speak", left)
	require.True(t, ok)
	assert.Same(t, method, v.Bindings[0].Value)
}

func TestAttrTableMissingAttributeOrNonInstance(t *testing.T) {
	table := NewAttrTable()
	_, ok := table.GetAttribute(SimpleNode{Label: "n"}, &abstract.Instance{Class: &abstract.Class{Name: "str"}}, "missing", nil)
	assert.False(t, ok)

	_, ok = table.GetAttribute(SimpleNode{Label: "n"}, &abstract.Ambiguous{Kind: abstract.Unknown}, "anything", nil)
	assert.False(t, ok, "only Instances are looked up")
}

func TestBasicConvertInstanceOfAndVariableOf(t *testing.T) {
	var c BasicConvert
	cls := &abstract.Class{Name: "list"}
	args := map[string]*abstract.Variable{"T": abstract.NewVariable("elem", &abstract.Ambiguous{Kind: abstract.Unknown})}

	inst := c.InstanceOf(cls, args)
	assert.Same(t, cls, inst.Class)
	assert.Same(t, args["T"], inst.TypeArgs["T"])

	val := &abstract.Ambiguous{Kind: abstract.Unsolvable}
	variable := c.VariableOf(val, "origin")
	require.Len(t, variable.Bindings, 1)
	assert.Same(t, val, variable.Bindings[0].Value)
	assert.Equal(t, "origin", variable.Bindings[0].Origin)
}

func TestBasicConvertSignatureToCallableClass(t *testing.T) {
	var c BasicConvert
	sig := &abstract.Signature{Name: "f"}
	cls := c.SignatureToCallableClass(sig)
	assert.Equal(t, "Callable", cls.Name)
	assert.Equal(t, abstract.ClassCallable, cls.Kind)
	assert.Same(t, sig, cls.CallSig)
}

func TestBasicConvertMerge(t *testing.T) {
	var c BasicConvert
	shared := &abstract.Ambiguous{Kind: abstract.Unknown}
	assert.Same(t, shared, c.Merge(shared, shared))

	a := &abstract.Instance{Class: &abstract.Class{Name: "int"}}
	b := &abstract.Instance{Class: &abstract.Class{Name: "str"}}
	merged := c.Merge(a, b)
	union, ok := merged.(*abstract.Union)
	require.True(t, ok)
	assert.Equal(t, []abstract.Value{a, b}, union.Options)
}
