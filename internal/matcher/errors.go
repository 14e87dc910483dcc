package matcher

import (
	"fmt"

	"github.com/typeforge-lang/typeforge/internal/abstract"
)

// Error is every failure the matcher can report. Source-location reporting
// is explicitly out of scope, so unlike the teacher's checker.Error there
// is no Span() accessor here — only a human-readable Message, matching
// §7's "Error kinds... surface only through return values and the
// error-details record".
type Error interface {
	isError()
	Message() string
}

func (ProtocolMissingAttributesError) isError() {}
func (ProtocolTypeError) isError()              {}
func (NonIterableStrError) isError()            {}
func (TypedDictError) isError()                 {}
func (CannotMatchError) isError()                {}
func (BoundViolationError) isError()            {}
func (ConstraintViolationError) isError()       {}
func (ArityMismatchError) isError()             {}

// ProtocolMissingAttributesError reports that leftCls lacks one or more
// attributes protocol requires (§4.4).
type ProtocolMissingAttributesError struct {
	LeftClass *abstract.Class
	Protocol  *abstract.Class
	Missing   []string
}

func (e ProtocolMissingAttributesError) Message() string {
	return fmt.Sprintf("%s does not implement protocol %s: missing %v", e.LeftClass.Name, e.Protocol.Name, e.Missing)
}

// ProtocolTypeError reports that leftCls has attribute Attr, but its type
// does not match what protocol declares (§4.4).
type ProtocolTypeError struct {
	LeftClass *abstract.Class
	Protocol  *abstract.Class
	Attr      string
	Actual    abstract.Value
	Expected  abstract.Value
}

func (e ProtocolTypeError) Message() string {
	return fmt.Sprintf("%s.%s has type %s, expected %s (required by protocol %s)",
		e.LeftClass.Name, e.Attr, e.Actual.String(), e.Expected.String(), e.Protocol.Name)
}

// NonIterableStrError reports the heuristic-safety rejection of a bare
// string against an Iterable[str]-shaped formal (§4.3 step 3).
type NonIterableStrError struct {
	Left  abstract.Value
	Other abstract.Value
}

func (e NonIterableStrError) Message() string {
	return fmt.Sprintf("%s is not accepted for %s: a single string is rarely what's meant where a collection of strings is expected", e.Left.String(), e.Other.String())
}

// TypedDictError reports structural mismatches against a typed-dict class
// (§4.4): bad per-key matches, extra undeclared keys, and missing
// required keys.
type TypedDictError struct {
	Bad     []BadKeyMatch
	Extra   map[string]bool
	Missing map[string]bool
}

// BadKeyMatch is one field of a typed-dict whose present value failed to
// match the declared type.
type BadKeyMatch struct {
	Key      string
	Actual   abstract.Value
	Expected abstract.Value
	Errors   []Error
}

func (e TypedDictError) Message() string {
	return fmt.Sprintf("typed-dict mismatch: %d bad key(s), %d extra key(s), %d missing key(s)", len(e.Bad), len(e.Extra), len(e.Missing))
}

// CannotMatchError is the generic "no specific details" failure (§7): the
// caller reconstructs the expected type via the partial substitution at
// the point of failure.
type CannotMatchError struct {
	Left       abstract.Value
	Formal     abstract.Value
	ErrorSubst map[string]*abstract.Variable
}

func (e CannotMatchError) Message() string {
	return fmt.Sprintf("%s does not match %s", e.Left.String(), e.Formal.String())
}

// BoundViolationError reports a type parameter's bound being violated
// (§4.2 step 5, §4.5 type-parameter-vs-type-parameter matching).
type BoundViolationError struct {
	Left  abstract.Value
	Bound abstract.Value
}

func (e BoundViolationError) Message() string {
	return fmt.Sprintf("%s does not satisfy bound %s", e.Left.String(), e.Bound.String())
}

// ConstraintViolationError reports a type parameter's constraint set being
// violated: the left value matched none of the parameter's constraints.
type ConstraintViolationError struct {
	Left        abstract.Value
	Constraints []abstract.Value
}

func (e ConstraintViolationError) Message() string {
	return fmt.Sprintf("%s does not satisfy any constraint of %v", e.Left.String(), e.Constraints)
}

// ArityMismatchError reports a callable argument-count mismatch (§4.4).
type ArityMismatchError struct {
	Expected int
	Maximum  int
	Got      int
}

func (e ArityMismatchError) Message() string {
	return fmt.Sprintf("wrong number of arguments: expected between %d and %d, got %d", e.Expected, e.Maximum, e.Got)
}

// ErrorDetails bundles the first-observed errors of each kind plus the
// partial substitution in effect at the point of failure (§4.1, §4.6).
// The matcher keeps at most one of each during a single top-level call.
type ErrorDetails struct {
	ProtocolError     Error // ProtocolMissingAttributesError or ProtocolTypeError
	NonIterableStr    *NonIterableStrError
	TypedDict         *TypedDictError
	ErrorSubstDomain  map[string]*abstract.Variable
}

// record stores e into whichever ErrorDetails field matches its kind, but
// only if that field is not already populated (§4.6 "stores the first
// observed").
func (d *ErrorDetails) record(e Error) {
	switch err := e.(type) {
	case ProtocolMissingAttributesError:
		if d.ProtocolError == nil {
			d.ProtocolError = err
		}
	case ProtocolTypeError:
		if d.ProtocolError == nil {
			d.ProtocolError = err
		}
	case NonIterableStrError:
		if d.NonIterableStr == nil {
			d.NonIterableStr = &err
		}
	case TypedDictError:
		if d.TypedDict == nil {
			d.TypedDict = &err
		}
	}
}
