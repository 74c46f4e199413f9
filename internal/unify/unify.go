// Package unify implements the subtyping kernel the dispatch core treats
// as a primitive: a co-inductive recursive descent over the lattice,
// generalized from unification (equality) to one-directional subtyping,
// since that is what the dispatch core actually needs (argument-to-formal
// checks, overload filtering, union/intersection merging).
package unify

import (
	"reflect"

	"github.com/veridian-lang/veri/internal/types"
)

// Resolver looks up ancestry and required-ancestor information the kernel
// needs but does not own; the dispatch core's symtab.Table satisfies it.
type Resolver interface {
	DerivesFrom(classID string) []string
	Underlying(t types.Type) (types.Type, bool)
}

type pair struct{ a, b types.Type }

// IsSubType reports whether a is a subtype of b (a <: b).
func IsSubType(a, b types.Type, r Resolver) bool {
	return isSubType(a, b, r, nil)
}

func isSubType(a, b types.Type, r Resolver, visited []pair) bool {
	if a == nil || b == nil {
		return false
	}
	for _, p := range visited {
		if reflect.DeepEqual(p.a, a) && reflect.DeepEqual(p.b, b) {
			return true // co-inductive: assume success on cycle
		}
	}
	visited = append(visited, pair{a, b})

	if types.IsUntyped(a) || types.IsUntyped(b) {
		return true
	}
	if _, ok := b.(types.Top); ok {
		return true
	}
	if _, ok := a.(types.Bottom); ok {
		return true
	}
	if reflect.DeepEqual(a, b) {
		return true
	}

	// a is a union: every member must be <: b.
	if union, ok := a.(types.OrType); ok {
		return isSubType(union.Left, b, r, visited) && isSubType(union.Right, b, r, visited)
	}
	// b is a union: a must be <: at least one member.
	if union, ok := b.(types.OrType); ok {
		return isSubType(a, union.Left, r, visited) || isSubType(a, union.Right, r, visited)
	}
	// a is an intersection: a <: b if either side is <: b.
	if inter, ok := a.(types.AndType); ok {
		return isSubType(inter.Left, b, r, visited) || isSubType(inter.Right, b, r, visited)
	}
	// b is an intersection: a <: b if a <: both sides.
	if inter, ok := b.(types.AndType); ok {
		return isSubType(a, inter.Left, r, visited) && isSubType(a, inter.Right, r, visited)
	}

	if _, ok := a.(types.TVar); ok {
		return true // unresolved inference var: assume compatible, constraint.go records the bound
	}
	if _, ok := b.(types.TVar); ok {
		return true
	}

	// Proxy variants fall back to their underlying class for subtyping
	// against anything that isn't a structurally-identical proxy.
	if lit, ok := a.(types.LiteralType); ok {
		if _, isLit := b.(types.LiteralType); !isLit {
			return isSubType(lit.Underlying(), b, r, visited)
		}
	}
	if shape, ok := a.(types.ShapeType); ok {
		if bshape, isShape := b.(types.ShapeType); isShape {
			return shapeSubtype(shape, bshape, r, visited)
		}
		if r != nil {
			if u, ok := r.Underlying(shape); ok {
				return isSubType(u, b, r, visited)
			}
		}
	}
	if tuple, ok := a.(types.TupleType); ok {
		if btuple, isTuple := b.(types.TupleType); isTuple {
			return tupleSubtype(tuple, btuple, r, visited)
		}
		if r != nil {
			if u, ok := r.Underlying(tuple); ok {
				return isSubType(u, b, r, visited)
			}
		}
	}

	switch av := a.(type) {
	case types.ClassType:
		bv, ok := b.(types.ClassType)
		if !ok {
			return false
		}
		return classDerivesFrom(av.ClassID, bv.ClassID, r)
	case types.AppliedType:
		bv, ok := b.(types.AppliedType)
		if !ok {
			return false
		}
		if !classDerivesFrom(av.ClassID, bv.ClassID, r) {
			return false
		}
		if len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !isSubType(av.Args[i], bv.Args[i], r, visited) {
				return false
			}
		}
		return true
	case types.MetaType:
		bv, ok := b.(types.MetaType)
		if !ok {
			return false
		}
		return isSubType(av.Wrapped, bv.Wrapped, r, visited)
	case types.Nil:
		_, ok := b.(types.Nil)
		return ok
	case types.Void:
		return false
	default:
		return reflect.DeepEqual(a, b)
	}
}

func classDerivesFrom(childID, parentID string, r Resolver) bool {
	if childID == parentID {
		return true
	}
	if r == nil {
		return false
	}
	for _, anc := range r.DerivesFrom(childID) {
		if anc == parentID {
			return true
		}
		if classDerivesFrom(anc, parentID, r) {
			return true
		}
	}
	return false
}

func shapeSubtype(a, b types.ShapeType, r Resolver, visited []pair) bool {
	// Width+depth subtyping: every key in b must be present in a with a
	// subtype value (a may carry extra keys).
	for i, k := range b.Keys {
		name, _ := k.Value.(string)
		av, ok := a.Lookup(name)
		if !ok {
			return false
		}
		if !isSubType(av, b.Values[i], r, visited) {
			return false
		}
	}
	return true
}

func tupleSubtype(a, b types.TupleType, r Resolver, visited []pair) bool {
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !isSubType(a.Elems[i], b.Elems[i], r, visited) {
			return false
		}
	}
	return true
}

// Any computes the least upper bound under the union combinator — used by
// OR-merge return types.
func Any(a, b types.Type) types.Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if reflect.DeepEqual(a, b) {
		return a
	}
	return types.Normalize(types.OrType{Left: a, Right: b})
}

// All computes the greatest lower bound under the intersection combinator —
// used by AND-merge return types.
func All(a, b types.Type) types.Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if reflect.DeepEqual(a, b) {
		return a
	}
	return types.Normalize(types.AndType{Left: a, Right: b})
}

// Glb computes a greatest-lower-bound approximation used when merging the
// argument tuples of a union receiver's get_call_arguments.
func Glb(a, b types.Type) types.Type {
	if IsSubType(a, b, nil) {
		return a
	}
	if IsSubType(b, a, nil) {
		return b
	}
	return All(a, b)
}

// DropNil removes Nil from a union, used by T.must and nil-stripping
// autocorrects.
func DropNil(t types.Type) types.Type {
	return dropMatching(t, func(x types.Type) bool {
		_, ok := x.(types.Nil)
		return ok
	})
}

// DropLiteral widens a LiteralType to its underlying class, used when a
// literal escapes into a position that should see its nominal type.
func DropLiteral(t types.Type) types.Type {
	switch v := t.(type) {
	case types.LiteralType:
		return v.Underlying()
	case types.OrType:
		return types.Normalize(types.OrType{Left: DropLiteral(v.Left), Right: DropLiteral(v.Right)})
	default:
		return t
	}
}

func dropMatching(t types.Type, match func(types.Type) bool) types.Type {
	if match(t) {
		return types.Bottom{}
	}
	if u, ok := t.(types.OrType); ok {
		l := dropMatching(u.Left, match)
		r := dropMatching(u.Right, match)
		return types.Normalize(joinDroppingBottom(l, r))
	}
	return t
}

func joinDroppingBottom(l, r types.Type) types.Type {
	_, lBot := l.(types.Bottom)
	_, rBot := r.(types.Bottom)
	if lBot {
		return r
	}
	if rBot {
		return l
	}
	return types.OrType{Left: l, Right: r}
}

// Widen approximates a type for use outside the immediate inference
// context — e.g. a constraint upper bound becoming the substituted type's
// shape without the transient inference variables. This core's policy is
// conservative: literal types widen to their backing class; everything
// else passes through unchanged.
func Widen(t types.Type) types.Type {
	return DropLiteral(t)
}

// Approximate produces a best-effort concrete type for an inference
// variable that never received a constraint, defaulting to Untyped rather
// than failing the whole dispatch.
func Approximate(t types.Type) types.Type {
	if _, ok := t.(types.TVar); ok {
		return types.Untyped{}
	}
	return t
}

// ApproximateSubtract removes members of b's upper bound from a's
// approximation. Nothing in this module calls it; internal/constraint's
// solver does not narrow bounds this way.
func ApproximateSubtract(a, b types.Type) types.Type {
	return dropMatching(a, func(x types.Type) bool { return reflect.DeepEqual(x, b) })
}

// ReplaceSelfType substitutes a SelfTypeParam with the concrete receiver
// class at the call site.
func ReplaceSelfType(t types.Type, self types.Type) types.Type {
	switch v := t.(type) {
	case types.SelfTypeParam:
		return self
	case types.AppliedType:
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = ReplaceSelfType(a, self)
		}
		return types.AppliedType{ClassID: v.ClassID, Args: args}
	case types.OrType:
		return types.Normalize(types.OrType{Left: ReplaceSelfType(v.Left, self), Right: ReplaceSelfType(v.Right, self)})
	case types.AndType:
		return types.Normalize(types.AndType{Left: ReplaceSelfType(v.Left, self), Right: ReplaceSelfType(v.Right, self)})
	case types.TupleType:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = ReplaceSelfType(e, self)
		}
		return types.TupleType{Elems: elems}
	case types.ShapeType:
		values := make([]types.Type, len(v.Values))
		for i, val := range v.Values {
			values[i] = ReplaceSelfType(val, self)
		}
		return types.ShapeType{Keys: v.Keys, Values: values}
	case types.MetaType:
		return types.MetaType{Wrapped: ReplaceSelfType(v.Wrapped, self)}
	default:
		return t
	}
}

// ResultTypeAsSeenFrom substitutes a method's declared type-parameter
// arguments through the receiver/type-argument context.
func ResultTypeAsSeenFrom(declared types.Type, subst map[string]types.Type) types.Type {
	return Substitute(declared, subst)
}

// Substitute applies a type-variable substitution throughout t.
func Substitute(t types.Type, subst map[string]types.Type) types.Type {
	switch v := t.(type) {
	case types.TVar:
		if r, ok := subst[v.ID]; ok {
			return r
		}
		return v
	case types.AppliedType:
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, subst)
		}
		return types.AppliedType{ClassID: v.ClassID, Args: args}
	case types.OrType:
		return types.Normalize(types.OrType{Left: Substitute(v.Left, subst), Right: Substitute(v.Right, subst)})
	case types.AndType:
		return types.Normalize(types.AndType{Left: Substitute(v.Left, subst), Right: Substitute(v.Right, subst)})
	case types.TupleType:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Substitute(e, subst)
		}
		return types.TupleType{Elems: elems}
	case types.ShapeType:
		values := make([]types.Type, len(v.Values))
		for i, val := range v.Values {
			values[i] = Substitute(val, subst)
		}
		return types.ShapeType{Keys: v.Keys, Values: values}
	case types.MetaType:
		return types.MetaType{Wrapped: Substitute(v.Wrapped, subst)}
	case types.LambdaParam:
		return types.LambdaParam{Upper: Substitute(v.Upper, subst), Lower: Substitute(v.Lower, subst)}
	default:
		return t
	}
}

// RangeOf builds the Range<T> applied type for a given element type.
func RangeOf(elem types.Type) types.Type {
	return types.AppliedType{ClassID: "Range", Args: []types.Type{elem}}
}

// ArrayOf builds the Array<T> applied type, used when a rest parameter's
// per-call-argument type needs to be reconstructed as a collection.
func ArrayOf(elem types.Type) types.Type {
	return types.AppliedType{ClassID: "Array", Args: []types.Type{elem}}
}

// HashOfUntyped builds Hash<Untyped, Untyped>, the decayed shape of an
// unrecoverable kwsplat/splat.
func HashOfUntyped() types.Type {
	return types.AppliedType{ClassID: "Hash", Args: []types.Type{types.Untyped{}, types.Untyped{}}}
}

// GetProcReturnType extracts a Proc/block type's return type, nil stripped,
// matching  ("proc-return projection stripped of nil").
func GetProcReturnType(proc types.Type) types.Type {
	app, ok := proc.(types.AppliedType)
	if !ok || len(app.Args) == 0 {
		return types.Untyped{}
	}
	return DropNil(app.Args[len(app.Args)-1])
}

// GetProcArity returns the declared parameter count of a Proc/block type, or
// -1 if the proc's arity is unknown (a bare Proc).
func GetProcArity(proc types.Type) int {
	app, ok := proc.(types.AppliedType)
	if !ok {
		return -1
	}
	if app.ClassID != "Proc" {
		return -1
	}
	return len(app.Args) - 1 // last arg is the return type
}

// GetRepresentedClass extracts the class a MetaType value represents, or
// false if t does not represent one.
func GetRepresentedClass(t types.Type) (string, bool) {
	switch v := t.(type) {
	case types.MetaType:
		if c, ok := v.Wrapped.(types.ClassType); ok {
			return c.ClassID, true
		}
		if a, ok := v.Wrapped.(types.AppliedType); ok {
			return a.ClassID, true
		}
	}
	return "", false
}
