package main

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/matcher"
	"github.com/typeforge-lang/typeforge/internal/prelude"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/subst"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m) // remove unused snapshots
	os.Exit(v)
}

func TestExplainLinesForStrVsIterableStr(t *testing.T) {
	mtr := matcher.New(services.AlwaysReachable{}, services.NewAttrTable(), services.BasicConvert{}, nil, nil)
	mtr.ObjectClass = prelude.Object()

	left := &abstract.Instance{Class: prelude.Str()}
	elemVar := abstract.NewVariable("elem", &abstract.Instance{Class: prelude.Str()})
	formal := &abstract.ClassValue{Class: prelude.Iterable(), TypeArgs: map[string]*abstract.Variable{"T": elemVar}}

	_, errs := mtr.MatchInstanceAgainstType(services.SimpleNode{Label: "demo"}, left, formal, subst.New(), abstract.NewView())

	snaps.MatchSnapshot(t, explainLines(errs))
}

func TestExplainLinesForTypedDictMismatch(t *testing.T) {
	mtr := matcher.New(services.AlwaysReachable{}, services.NewAttrTable(), services.BasicConvert{}, nil, nil)
	mtr.ObjectClass = prelude.Object()

	typedDict := &abstract.Class{
		Name: "Point",
		Kind: abstract.ClassTypedDict,
		Fields: []abstract.TypedDictField{
			{Name: "x", Type: &abstract.ClassValue{Class: prelude.Int()}, Required: true},
			{Name: "y", Type: &abstract.ClassValue{Class: prelude.Str()}, Required: true},
		},
	}
	left := &abstract.Instance{
		Class: typedDict,
		TypeArgs: map[string]*abstract.Variable{
			"x": abstract.NewVariable("x", &abstract.Instance{Class: prelude.Int()}),
			"y": abstract.NewVariable("y", &abstract.Instance{Class: prelude.Int()}),
		},
	}

	_, errs := mtr.MatchTypedDict(left, typedDict, subst.New())

	snaps.MatchSnapshot(t, explainLines(errs))
}
