// Package matcher implements the abstract type matcher: given a concrete
// Value and a formal type, it decides whether the value satisfies the
// formal and, if so, what substitution of type parameters makes it fit.
// It is a one-way unification engine — type variables on the formal side
// get bound, type variables already present on the value side are treated
// as opaque concrete placeholders.
package matcher

import (
	"github.com/typeforge-lang/typeforge/internal/abstract"
	"github.com/typeforge-lang/typeforge/internal/services"
	"github.com/typeforge-lang/typeforge/internal/set"
)

// recursionKey is the cache key for the recursive-annotation breaker: a
// (left, formal) pair by pointer identity (§4.2 step 2, §9 "Cyclic
// references").
type recursionKey struct {
	left   abstract.Value
	formal abstract.Value
}

// protocolKey is the cache key for the protocol-cycle breaker: a
// (left class, protocol class) pair (§4.4, §9).
type protocolKey struct {
	leftClass *abstract.Class
	protocol  *abstract.Class
}

// Matcher is the matcher instance. Its caches are scoped to one top-level
// call (bad_matches or compute_subst) and reset at entry, per §5 "No
// shared mutable state across matcher instances": each Matcher owns its
// own caches, so concurrent top-level calls must use distinct Matchers.
type Matcher struct {
	ControlFlow ControlFlowSet
	Attrs       services.AttributeHandler
	Convert     services.ConvertService
	Annots      services.AnnotationUtils
	Errors      services.ErrorLog

	// ObjectClass is the universal root class ("object"), used by the
	// formal-left rewrite (invariant 3) to build the top instance every
	// embedded type parameter gets replaced with.
	ObjectClass *abstract.Class

	protocolCache        set.Set[protocolKey]
	recursiveAnnotsCache set.Set[recursionKey]

	// errorDetails accumulates the first-observed error of each kind for
	// the current top-level call (§4.6).
	errorDetails *ErrorDetails
}

// ControlFlowSet is a thin alias kept local to this package so callers
// don't need to reach into services for every node type; it is exactly
// services.ControlFlowNode, named for readability at call sites in the
// driver.
type ControlFlowSet = services.ControlFlowNode

// New constructs a Matcher wired to the given external services. Caches
// start empty; they are also explicitly reset by resetCaches at the
// beginning of every top-level entry point.
func New(cf services.ControlFlowNode, attrs services.AttributeHandler, convert services.ConvertService, annots services.AnnotationUtils, errlog services.ErrorLog) *Matcher {
	m := &Matcher{
		ControlFlow: cf,
		Attrs:       attrs,
		Convert:     convert,
		Annots:      annots,
		Errors:      errlog,
	}
	m.resetCaches()
	return m
}

// resetCaches clears both recursion-breaker caches and the accumulated
// error details. Called at the start of bad_matches and compute_subst
// (§3 "Lifecycle", §5 "Cancellation").
func (m *Matcher) resetCaches() {
	m.protocolCache = set.NewSet[protocolKey]()
	m.recursiveAnnotsCache = set.NewSet[recursionKey]()
	m.errorDetails = &ErrorDetails{}
}

// snapshotProtocolCache returns a copy of the protocol cache, used around
// entry to protocol matching so siblings don't see each other's
// in-progress markers (§5, §9).
func (m *Matcher) snapshotProtocolCache() set.Set[protocolKey] {
	return m.protocolCache.Clone()
}

func (m *Matcher) restoreProtocolCache(snap set.Set[protocolKey]) {
	m.protocolCache = snap
}
