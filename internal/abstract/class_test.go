package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullNameAndMROFullNames(t *testing.T) {
	object := &Class{Name: "object"}
	animal := &Class{Name: "Animal", MRO: []*Class{object}}
	dog := &Class{Name: "Dog", MRO: []*Class{animal, object}}

	assert.Equal(t, "Dog", dog.FullName())
	assert.Equal(t, []string{"Animal", "object"}, dog.MROFullNames())
}

func TestIsCompatibleBuiltin(t *testing.T) {
	assert.True(t, IsCompatibleBuiltin("int", "float"))
	assert.True(t, IsCompatibleBuiltin("int", "complex"))
	assert.True(t, IsCompatibleBuiltin("bytes", "bytearray"))
	assert.False(t, IsCompatibleBuiltin("float", "int"), "the pairing is directional")
	assert.False(t, IsCompatibleBuiltin("str", "int"))
}

func TestUniversalRoots(t *testing.T) {
	assert.True(t, UniversalRoots["object"])
	assert.True(t, UniversalRoots["Generic"])
	assert.True(t, UniversalRoots["Protocol"])
	assert.False(t, UniversalRoots["Animal"])
}
