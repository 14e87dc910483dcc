package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/prelude"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

func newTestMatcher(attrs services.AttributeHandler) *Matcher {
	if attrs == nil {
		attrs = services.NewAttrTable()
	}
	m := New(services.AlwaysReachable{}, attrs, services.BasicConvert{}, nil, nil)
	m.ObjectClass = prelude.Object()
	return m
}

func node() services.CFGNode { return services.SimpleNode{Label: "t"} }

// Scenario 1: match(instance_of(list[int]), list[int]) -> success, empty subst.
func TestScenarioListOfIntMatchesListOfInt(t *testing.T) {
	m := newTestMatcher(nil)
	// Concrete type arguments are Instances; formal type arguments (the
	// positions a parameterized class's own TypeParams get matched against)
	// are ClassValues, matching how matchParameterizedClass recurses.
	leftElemVar := abstract.NewVariable("elem", &abstract.Instance{Class: prelude.Int()})
	formalElemVar := abstract.NewVariable("elem-formal", &abstract.ClassValue{Class: prelude.Int()})
	left := &abstract.Instance{Class: prelude.List(), TypeArgs: map[string]*abstract.Variable{"T": leftElemVar}}
	formal := &abstract.ClassValue{Class: prelude.List(), TypeArgs: map[string]*abstract.Variable{"T": formalElemVar}}

	result, errs := m.MatchInstanceAgainstType(node(), left, formal, subst.New(), abstract.NewView())
	require.Nil(t, errs)
	assert.True(t, result.IsEmpty())
}

// Scenario 2: match(instance_of(int), float) -> success via compatible-builtin rule.
func TestScenarioIntMatchesFloatViaCompatibleBuiltin(t *testing.T) {
	m := newTestMatcher(nil)
	left := &abstract.Instance{Class: prelude.Int()}
	formal := &abstract.ClassValue{Class: prelude.Float()}

	_, errs := m.MatchInstanceAgainstType(node(), left, formal, subst.New(), abstract.NewView())
	assert.Nil(t, errs)
}

// Scenario 3: match(instance_of(str), Iterable[str]) -> NonIterableStrError.
func TestScenarioStrRejectedByIterableStrGuard(t *testing.T) {
	m := newTestMatcher(nil)
	left := &abstract.Instance{Class: prelude.Str()}
	elemVar := abstract.NewVariable("elem", &abstract.Instance{Class: prelude.Str()})
	formal := &abstract.ClassValue{Class: prelude.Iterable(), TypeArgs: map[string]*abstract.Variable{"T": elemVar}}

	_, errs := m.MatchInstanceAgainstType(node(), left, formal, subst.New(), abstract.NewView())
	require.Len(t, errs, 1)
	_, ok := errs[0].(NonIterableStrError)
	assert.True(t, ok)
}

// An unparameterized Iterable is allowed even for str (§4.3 step 3 exception),
// provided str itself structurally satisfies the protocol.
func TestScenarioUnparameterizedIterableAllowsStr(t *testing.T) {
	iterMethod := &abstract.Function{
		Name: "__iter__",
		Signatures: []*abstract.Signature{{
			Name: "__iter__", Return: &abstract.ClassValue{Class: prelude.Iterable()},
		}},
	}
	attrs := services.NewAttrTable().Declare("str", "__iter__", iterMethod)
	m := newTestMatcher(attrs)
	left := &abstract.Instance{Class: prelude.Str()}
	formal := &abstract.ClassValue{Class: prelude.Iterable()}

	_, errs := m.MatchInstanceAgainstType(node(), left, formal, subst.New(), abstract.NewView())
	assert.Nil(t, errs)
}

// Scenario 4: typed-dict matching, success then failure on a swapped field type.
func TestScenarioTypedDictMatch(t *testing.T) {
	m := newTestMatcher(nil)
	typedDict := &abstract.Class{
		Name: "Point",
		Kind: abstract.ClassTypedDict,
		Fields: []abstract.TypedDictField{
			{Name: "x", Type: &abstract.ClassValue{Class: prelude.Int()}, Required: true},
			{Name: "y", Type: &abstract.ClassValue{Class: prelude.Str()}, Required: true},
		},
	}
	left := &abstract.Instance{TypeArgs: map[string]*abstract.Variable{
		"x": abstract.NewVariable("x", &abstract.Instance{Class: prelude.Int()}),
		"y": abstract.NewVariable("y", &abstract.Instance{Class: prelude.Str()}),
	}}

	_, errs := m.MatchTypedDict(left, typedDict, subst.New())
	assert.Nil(t, errs)

	leftBad := &abstract.Instance{TypeArgs: map[string]*abstract.Variable{
		"x": abstract.NewVariable("x", &abstract.Instance{Class: prelude.Int()}),
		"y": abstract.NewVariable("y", &abstract.Instance{Class: prelude.Int()}),
	}}
	_, errs = m.MatchTypedDict(leftBad, typedDict, subst.New())
	require.Len(t, errs, 1)
	tdErr, ok := errs[0].(TypedDictError)
	require.True(t, ok)
	assert.Len(t, tdErr.Bad, 1)
	assert.Equal(t, "y", tdErr.Bad[0].Key)
}

// Scenario 5: protocol matching success, type mismatch, and missing attribute.
func TestScenarioProtocolMatching(t *testing.T) {
	fooReturnsInt := &abstract.Function{
		Name: "foo",
		Signatures: []*abstract.Signature{{
			Name:   "foo",
			Params: nil,
			Return: &abstract.ClassValue{Class: prelude.Int()},
		}},
	}
	fooReturnsStr := &abstract.Function{
		Name: "foo",
		Signatures: []*abstract.Signature{{
			Name:   "foo",
			Params: nil,
			Return: &abstract.ClassValue{Class: prelude.Str()},
		}},
	}

	protocol := &abstract.Class{
		Name:          "P",
		IsProtocol:    true,
		RequiredAttrs: []string{"foo"},
	}
	// The protocol's own "foo" attribute, looked up against an instance of
	// the protocol class itself (see MatchProtocol's protoSelf lookup).
	protoAttrs := services.NewAttrTable().Declare("P", "foo", fooReturnsInt)

	goodC := &abstract.Class{Name: "C", MRO: []*abstract.Class{prelude.Object()}}
	attrsGood := services.NewAttrTable().Declare("C", "foo", fooReturnsInt).Declare("P", "foo", fooReturnsInt)
	mGood := newTestMatcher(attrsGood)
	_, errs := mGood.MatchProtocol(node(), &abstract.Instance{Class: goodC}, protocol, subst.New())
	assert.Nil(t, errs)

	badC := &abstract.Class{Name: "C2", MRO: []*abstract.Class{prelude.Object()}}
	attrsBad := services.NewAttrTable().Declare("C2", "foo", fooReturnsStr).Declare("P", "foo", fooReturnsInt)
	mBad := newTestMatcher(attrsBad)
	_, errs = mBad.MatchProtocol(node(), &abstract.Instance{Class: badC}, protocol, subst.New())
	require.Len(t, errs, 1)
	_, ok := errs[0].(ProtocolTypeError)
	assert.True(t, ok)

	missingC := &abstract.Class{Name: "C3", MRO: []*abstract.Class{prelude.Object()}}
	mMissing := newTestMatcher(protoAttrs)
	_, errs = mMissing.MatchProtocol(node(), &abstract.Instance{Class: missingC}, protocol, subst.New())
	require.Len(t, errs, 1)
	pmErr, ok := errs[0].(ProtocolMissingAttributesError)
	require.True(t, ok)
	assert.Equal(t, []string{"foo"}, pmErr.Missing)
}

// Scenario 6: compute_subst with a shared TypeVar bound by unconstrained,
// constrained, and object-bounded parameters.
func TestScenarioComputeSubstPolicyVariants(t *testing.T) {
	intVar := abstract.NewVariable("x", &abstract.Instance{Class: prelude.Int()})
	strVar := abstract.NewVariable("y", &abstract.Instance{Class: prelude.Str()})

	t.Run("unconstrained T rejects unrelated classes", func(t *testing.T) {
		m := newTestMatcher(nil)
		tp := &abstract.TypeParameter{Name: "T"}
		args := []FormalArg{{Name: "x", Formal: tp}, {Name: "y", Formal: tp}}
		_, badParam, _ := m.ComputeSubst(node(), args, map[string]*abstract.Variable{"x": intVar, "y": strVar}, abstract.NewView(), nil)
		assert.Equal(t, "y", badParam)
	})

	t.Run("constrained T rejects mixed concrete classes", func(t *testing.T) {
		m := newTestMatcher(nil)
		// Constraints are formal-type positions, so ClassValue (not
		// Instance) — matching the convention matchParameterizedClass and
		// matchAgainstTypeParameter's own Bound check both rely on.
		tp := &abstract.TypeParameter{Name: "T", Constraints: []abstract.Value{
			&abstract.ClassValue{Class: prelude.Int()}, &abstract.ClassValue{Class: prelude.Str()},
		}}
		args := []FormalArg{{Name: "x", Formal: tp}, {Name: "y", Formal: tp}}
		_, badParam, _ := m.ComputeSubst(node(), args, map[string]*abstract.Variable{"x": intVar, "y": strVar}, abstract.NewView(), nil)
		assert.Equal(t, "y", badParam)
	})

	t.Run("bound accepts values sharing a non-universal ancestor", func(t *testing.T) {
		animalClass := &abstract.Class{Name: "Animal", MRO: []*abstract.Class{prelude.Object()}}
		dogClass := &abstract.Class{Name: "Dog", MRO: []*abstract.Class{animalClass, prelude.Object()}}
		catClass := &abstract.Class{Name: "Cat", MRO: []*abstract.Class{animalClass, prelude.Object()}}
		dogVar := abstract.NewVariable("x", &abstract.Instance{Class: dogClass})
		catVar := abstract.NewVariable("y", &abstract.Instance{Class: catClass})

		m := newTestMatcher(nil)
		tp := &abstract.TypeParameter{Name: "T", Bound: &abstract.ClassValue{Class: animalClass}}
		args := []FormalArg{{Name: "x", Formal: tp}, {Name: "y", Formal: tp}}
		s, badParam, _ := m.ComputeSubst(node(), args, map[string]*abstract.Variable{"x": dogVar, "y": catVar}, abstract.NewView(), nil)
		assert.Empty(t, badParam)
		v, ok := s.Get("T")
		require.True(t, ok)
		assert.Len(t, v.Bindings, 2)
	})

	t.Run("bound to object alone still rejects unrelated classes", func(t *testing.T) {
		// A bound of plain object doesn't relax the common-superclass
		// policy: object is a universal root, so two otherwise-unrelated
		// concrete bindings for the same T are still inconsistent.
		m := newTestMatcher(nil)
		tp := &abstract.TypeParameter{Name: "T", Bound: &abstract.ClassValue{Class: prelude.Object()}}
		args := []FormalArg{{Name: "x", Formal: tp}, {Name: "y", Formal: tp}}
		_, badParam, _ := m.ComputeSubst(node(), args, map[string]*abstract.Variable{"x": intVar, "y": strVar}, abstract.NewView(), nil)
		assert.Equal(t, "y", badParam)
	})
}

// Universal property 1: reflexivity on concrete classes.
func TestPropertyReflexivity(t *testing.T) {
	m := newTestMatcher(nil)
	c := prelude.Int()
	_, errs := m.MatchInstanceAgainstType(node(), &abstract.Instance{Class: c}, &abstract.ClassValue{Class: c}, subst.New(), abstract.NewView())
	assert.Nil(t, errs)
}

// Universal property 2: ambiguous is top and bottom.
func TestPropertyAmbiguousIsTopAndBottom(t *testing.T) {
	m := newTestMatcher(nil)
	s0 := subst.New()

	// matching any value against Unsolvable succeeds with subst unchanged
	result, errs := m.MatchValueAgainstType(node(), &abstract.Instance{Class: prelude.Int()}, nil, &abstract.Ambiguous{Kind: abstract.Unsolvable}, s0, abstract.NewView())
	assert.Nil(t, errs)
	assert.True(t, result.IsEmpty())

	// matching an ambiguous value against any type succeeds
	_, errs = m.MatchValueAgainstType(node(), &abstract.Ambiguous{Kind: abstract.Unknown}, nil, &abstract.ClassValue{Class: prelude.Str()}, s0, abstract.NewView())
	assert.Nil(t, errs)
}

// Universal property 5: contravariance for callable arguments.
func TestPropertyCallableContravariance(t *testing.T) {
	m := newTestMatcher(nil)
	animalClass := &abstract.Class{Name: "Animal", MRO: []*abstract.Class{prelude.Object()}}
	dogClass := &abstract.Class{Name: "Dog", MRO: []*abstract.Class{animalClass, prelude.Object()}}

	// Callable[[Animal], Dog] as `left`. Reified callable classes are all
	// named "Callable" (matching services.BasicConvert.SignatureToCallableClass),
	// since matchFromMRO's hit test is a plain name comparison.
	left := &abstract.Instance{Class: &abstract.Class{
		Name: "Callable", Kind: abstract.ClassCallable, MRO: []*abstract.Class{prelude.Object()},
		CallSig: &abstract.Signature{
			Params: []abstract.Value{&abstract.ClassValue{Class: animalClass}},
			Return: &abstract.ClassValue{Class: dogClass},
		},
	}}
	// formal Callable[[Dog], Animal]: left's param (Animal) must accept
	// Dog (contravariant: Dog is narrower, matching Animal-param against
	// Dog-formal-arg requires flipping so Dog matches Animal).
	formal := &abstract.ClassValue{Class: &abstract.Class{
		Name: "Callable", Kind: abstract.ClassCallable,
		CallSig: &abstract.Signature{
			Params: []abstract.Value{&abstract.ClassValue{Class: dogClass}},
			Return: &abstract.ClassValue{Class: animalClass},
		},
	}}

	_, errs := m.MatchInstanceAgainstType(node(), left, formal, subst.New(), abstract.NewView())
	assert.Nil(t, errs, "Dog-arg should satisfy the Animal-arg slot once contravariantly flipped")
}
