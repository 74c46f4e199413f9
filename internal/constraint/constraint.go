// Package constraint implements TypeConstraint: the per-dispatch-call
// object that accumulates upper/lower bounds on inferred type parameters
// and solves them once all arguments (and, for generic methods with a
// block, the block body) have been checked. Bounds are explicit
// upper/lower pairs per type parameter rather than Hindley-Milner
// substitution, since generic *method* inference is closer to a bounded
// lattice solve than to let-polymorphism generalization.
package constraint

import (
	"fmt"
	"sort"

	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

// Bounds tracks the narrowest known range for one type parameter.
type Bounds struct {
	Upper types.Type // constraints seen from argument positions (T must accept at least this)
	Lower types.Type // constraints seen from covariant positions (T must be at most this)
}

// TypeConstraint owns per-type-parameter bounds for a single dispatch.
// The zero value is not usable; construct with New or Empty.
type TypeConstraint struct {
	domain map[string]bool
	bounds map[string]*Bounds
	frozen bool
}

// emptyFrozen is the process-wide shared constraint for calls that have
// neither a block nor generic type parameters.
var emptyFrozen = &TypeConstraint{domain: map[string]bool{}, bounds: map[string]*Bounds{}, frozen: true}

// Empty returns the shared, frozen, empty constraint. Callers must not
// mutate it; use New to get a fresh mutable one.
func Empty() *TypeConstraint { return emptyFrozen }

// New allocates a fresh, mutable constraint over the given type parameter
// domain (a generic method's declared type parameters).
func New(domain ...string) *TypeConstraint {
	c := &TypeConstraint{domain: map[string]bool{}, bounds: map[string]*Bounds{}}
	for _, d := range domain {
		c.domain[d] = true
		c.bounds[d] = &Bounds{}
	}
	return c
}

// IsFrozen reports whether mutation is forbidden (the shared empty
// singleton).
func (c *TypeConstraint) IsFrozen() bool { return c.frozen }

// Declare adds additional type parameters to the domain — used when an
// intrinsic (e.g. the generic bracket `[]`) discovers parameters beyond
// the method's own signature.
func (c *TypeConstraint) Declare(names ...string) {
	if c.frozen {
		return
	}
	for _, n := range names {
		if !c.domain[n] {
			c.domain[n] = true
			c.bounds[n] = &Bounds{}
		}
	}
}

// Domain returns the constraint's declared type parameters, sorted for
// deterministic iteration (diagnostics, tests).
func (c *TypeConstraint) Domain() []string {
	names := make([]string, 0, len(c.domain))
	for n := range c.domain {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddUpperBound records that the type parameter must accept at least t
// (seen when an actual argument's type flows into a position typed with
// the parameter).
func (c *TypeConstraint) AddUpperBound(param string, t types.Type) {
	if c.frozen || !c.domain[param] {
		return
	}
	b := c.bounds[param]
	b.Upper = unify.Any(b.Upper, t)
}

// AddLowerBound records that the type parameter must be at most t (seen
// in a covariant/return position, e.g. a block's declared return type).
func (c *TypeConstraint) AddLowerBound(param string, t types.Type) {
	if c.frozen || !c.domain[param] {
		return
	}
	b := c.bounds[param]
	if b.Lower == nil {
		b.Lower = t
		return
	}
	b.Lower = unify.Glb(b.Lower, t)
}

// Bounds returns the recorded bounds for a parameter, or a zero Bounds if
// it was never constrained.
func (c *TypeConstraint) Bounds(param string) Bounds {
	if b, ok := c.bounds[param]; ok {
		return *b
	}
	return Bounds{}
}

// SolveResult is the outcome of Solve: a substitution from type parameter
// name to the concrete type it was inferred to, plus any parameters that
// could not be solved.
type SolveResult struct {
	Subst     map[string]types.Type
	Unsolved  []string
	Conflicts []Conflict
}

// Conflict records a type parameter whose upper and lower bounds do not
// agree (upper is not a supertype of lower).
type Conflict struct {
	Param       string
	Upper, Lower types.Type
}

func (c Conflict) Error() string {
	return fmt.Sprintf("constraint on %s unsatisfiable: %s does not accept %s", c.Param, c.Upper, c.Lower)
}

// Solve resolves every declared type parameter to a concrete type,
// preferring the narrowest bound that both sides agree on. Parameters
// that were never constrained resolve to Untyped rather than failing the
// whole solve — only a genuine Upper/Lower conflict fails.
func (c *TypeConstraint) Solve(resolver unify.Resolver) SolveResult {
	result := SolveResult{Subst: map[string]types.Type{}}
	for _, name := range c.Domain() {
		b := c.bounds[name]
		switch {
		case b.Upper == nil && b.Lower == nil:
			result.Unsolved = append(result.Unsolved, name)
			result.Subst[name] = types.Untyped{}
		case b.Upper == nil:
			result.Subst[name] = b.Lower
		case b.Lower == nil:
			result.Subst[name] = b.Upper
		default:
			if unify.IsSubType(b.Lower, b.Upper, resolver) {
				result.Subst[name] = b.Lower
			} else if unify.IsSubType(b.Upper, b.Lower, resolver) {
				result.Subst[name] = b.Upper
			} else {
				result.Conflicts = append(result.Conflicts, Conflict{Param: name, Upper: b.Upper, Lower: b.Lower})
				result.Subst[name] = types.Untyped{}
			}
		}
	}
	return result
}

// Instantiate applies a solved constraint's substitution to t.
func Instantiate(t types.Type, solved SolveResult) types.Type {
	return unify.Substitute(t, solved.Subst)
}

// Replace swaps this constraint's bounds wholesale — used when an
// intrinsic supplies its own constraint object, overriding the one
// produced by ordinary argument matching.
func (c *TypeConstraint) Replace(other *TypeConstraint) {
	if c.frozen {
		return
	}
	c.domain = other.domain
	c.bounds = other.bounds
}
