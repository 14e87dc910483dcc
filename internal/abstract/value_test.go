package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmbiguousKindString(t *testing.T) {
	assert.Equal(t, "Unknown", Unknown.String())
	assert.Equal(t, "Any", Unsolvable.String())
	assert.Equal(t, "Empty", Empty.String())
}

func TestAmbiguousIsTop(t *testing.T) {
	assert.True(t, (&Ambiguous{Kind: Unknown}).IsTop())
	assert.True(t, (&Ambiguous{Kind: Unsolvable}).IsTop())
	assert.False(t, (&Ambiguous{Kind: Empty}).IsTop())
}

func TestIsFormalValue(t *testing.T) {
	formalTP := &TypeParameter{Name: "T", Formal: true}
	plainTP := &TypeParameter{Name: "U"}

	assert.True(t, IsFormalValue(&Instance{Formal: true}))
	assert.False(t, IsFormalValue(&Instance{Formal: false}))
	assert.True(t, IsFormalValue(formalTP))
	assert.False(t, IsFormalValue(plainTP))
	assert.False(t, IsFormalValue(&Ambiguous{Kind: Unknown}))

	assert.True(t, IsFormalValue(&Union{Options: []Value{plainTP, formalTP}}))
	assert.False(t, IsFormalValue(&Union{Options: []Value{plainTP}}))
}

func TestUnionIsFormal(t *testing.T) {
	u := &Union{Options: []Value{&Instance{}, &TypeParameter{Name: "T", Formal: true}}}
	assert.True(t, u.IsFormal())

	u2 := &Union{Options: []Value{&Instance{}, &TypeParameter{Name: "T"}}}
	assert.False(t, u2.IsFormal())
}

func TestUnwrapFinalStripsNestedWrappers(t *testing.T) {
	inner := &Instance{Class: &Class{Name: "int"}}
	wrapped := &FinalAnnotation{Inner: &FinalAnnotation{Inner: inner}}
	assert.Same(t, inner, UnwrapFinal(wrapped))
	assert.Same(t, inner, UnwrapFinal(inner))
}

func TestValueStringers(t *testing.T) {
	cls := &Class{Name: "int"}
	assert.Equal(t, "instance of int", (&Instance{Class: cls}).String())
	assert.Equal(t, "<instance of ?>", (&Instance{}).String())
	assert.Equal(t, "class int", (&ClassValue{Class: cls}).String())
	assert.Equal(t, "module os", (&Module{Name: "os"}).String())
	assert.Equal(t, "T", (&TypeParameter{Name: "T"}).String())
	assert.Equal(t, "Union[instance of int, T]", (&Union{Options: []Value{&Instance{Class: cls}, &TypeParameter{Name: "T"}}}).String())
}
