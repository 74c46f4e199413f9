// Package types implements the algebraic type lattice that the dispatch
// core pattern-matches over: classes, applied generics, literals, shapes,
// tuples, unions, intersections, meta-types, and the inference artifacts
// (type variables, self-type parameters, lambda parameters).
package types

import (
	"fmt"
	"sort"
	"strings"
)

// SourceRef pins a diagnostic to a place in source.
// Constructed and owned by the external collaborators (parser/resolver);
// the dispatch core only carries it through.
type SourceRef struct {
	File string
	Line int
	Col  int
}

func (r SourceRef) String() string {
	if r.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Col)
}

// Type is the sealed interface for every lattice member. typeNode is
// unexported so the variant set stays closed to this package; dispatch.go
// relies on exhaustive matching over it.
type Type interface {
	String() string
	typeNode()
}

// ClassType is a nominal class or module, e.g. `Integer`.
type ClassType struct {
	ClassID string
}

func (ClassType) typeNode()        {}
func (t ClassType) String() string { return t.ClassID }

// AppliedType is a generic instantiation, e.g. `Array<Integer>`.
type AppliedType struct {
	ClassID string
	Args    []Type
}

func (AppliedType) typeNode() {}
func (t AppliedType) String() string {
	if len(t.Args) == 0 {
		return t.ClassID
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.ClassID, strings.Join(parts, ", "))
}

// LiteralKind distinguishes the kinds of singleton value a LiteralType can
// model.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralSymbol
	LiteralBool
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralInt:
		return "Integer"
	case LiteralFloat:
		return "Float"
	case LiteralString:
		return "String"
	case LiteralSymbol:
		return "Symbol"
	case LiteralBool:
		return "Bool"
	default:
		return "?"
	}
}

// LiteralType is a singleton value type, e.g. the type of `:ok` or `42`.
type LiteralType struct {
	Kind           LiteralKind
	Value          any
	UnderlyingName string // class backing this literal, e.g. "Integer"
}

func (LiteralType) typeNode() {}
func (t LiteralType) String() string {
	switch v := t.Value.(type) {
	case string:
		if t.Kind == LiteralSymbol {
			return ":" + v
		}
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", t.Value)
	}
}

// Underlying projects a LiteralType onto its backing class.
func (t LiteralType) Underlying() Type {
	return ClassType{ClassID: t.UnderlyingName}
}

// ShapeType is a record-like type with literal keys in definition order.
type ShapeType struct {
	Keys   []LiteralType
	Values []Type
}

func (ShapeType) typeNode() {}
func (t ShapeType) String() string {
	parts := make([]string, len(t.Keys))
	for i, k := range t.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k.String(), t.Values[i].String())
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// Underlying projects a ShapeType onto Hash<Symbol, union(values)> style class,
// represented here as an AppliedType over the hash-like backing class.
func (t ShapeType) Underlying(hashClass string) Type {
	return AppliedType{ClassID: hashClass, Args: []Type{ClassType{ClassID: "Symbol"}, shapeValueUnion(t)}}
}

func shapeValueUnion(t ShapeType) Type {
	if len(t.Values) == 0 {
		return Bottom{}
	}
	u := t.Values[0]
	for _, v := range t.Values[1:] {
		u = OrType{Left: u, Right: v}
	}
	return Normalize(u)
}

// Lookup returns the value type bound to a literal key, if present.
func (t ShapeType) Lookup(key string) (Type, bool) {
	for i, k := range t.Keys {
		if s, ok := k.Value.(string); ok && s == key {
			return t.Values[i], true
		}
	}
	return nil, false
}

// Merge extends a shape with another shape's keys, replacing existing
// ones: merge(S, {}) = S, merge(S, {k: v}) = S with k replaced by v.
func (t ShapeType) Merge(other ShapeType) ShapeType {
	keys := append([]LiteralType{}, t.Keys...)
	values := append([]Type{}, t.Values...)
	for i, k := range other.Keys {
		name, _ := k.Value.(string)
		found := false
		for j, existing := range keys {
			if s, ok := existing.Value.(string); ok && s == name {
				values[j] = other.Values[i]
				found = true
				break
			}
		}
		if !found {
			keys = append(keys, k)
			values = append(values, other.Values[i])
		}
	}
	return ShapeType{Keys: keys, Values: values}
}

// TupleType is a fixed-length heterogeneous sequence.
type TupleType struct {
	Elems []Type
}

func (TupleType) typeNode() {}
func (t TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// Underlying projects a TupleType onto Array<union(elems)>.
func (t TupleType) Underlying(arrayClass string) Type {
	if len(t.Elems) == 0 {
		return AppliedType{ClassID: arrayClass, Args: []Type{Bottom{}}}
	}
	u := t.Elems[0]
	for _, e := range t.Elems[1:] {
		u = OrType{Left: u, Right: e}
	}
	return AppliedType{ClassID: arrayClass, Args: []Type{Normalize(u)}}
}

// At implements Tuple#[] index semantics: negative wraps, out of bounds is
// reported by the caller as Nil (see internal/dispatch/intrinsics_tuple_shape.go).
func (t TupleType) At(i int) (Type, bool) {
	n := len(t.Elems)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, false
	}
	return t.Elems[i], true
}

// OrType is a union; Normalize keeps it flattened, deduplicated, and
// without an OrType nested on either side carrying the same partners.
type OrType struct {
	Left, Right Type
}

func (OrType) typeNode() {}
func (t OrType) String() string {
	return fmt.Sprintf("%s | %s", t.Left.String(), t.Right.String())
}

// AndType is an intersection, normalized analogously to OrType.
type AndType struct {
	Left, Right Type
}

func (AndType) typeNode() {}
func (t AndType) String() string {
	return fmt.Sprintf("%s & %s", t.Left.String(), t.Right.String())
}

// MetaType surfaces a Type as a first-class value, e.g. the value `Integer`
// used as an argument rather than as a type annotation.
type MetaType struct {
	Wrapped Type
}

func (MetaType) typeNode()        {}
func (t MetaType) String() string { return fmt.Sprintf("Type<%s>", t.Wrapped.String()) }

// TVar is an inference type variable.
type TVar struct {
	ID string
}

func (TVar) typeNode()        {}
func (t TVar) String() string { return t.ID }

// SelfTypeParam stands for `self`-polymorphic return positions, substituted
// by the caller's receiver class at the call site.
type SelfTypeParam struct {
	Sym string
}

func (SelfTypeParam) typeNode()        {}
func (t SelfTypeParam) String() string { return "self(" + t.Sym + ")" }

// LambdaParam models a block/proc parameter's inferred type as a bounded
// variable, resolved once the block body has been checked.
type LambdaParam struct {
	Upper, Lower Type
}

func (LambdaParam) typeNode() {}
func (t LambdaParam) String() string {
	return fmt.Sprintf("lambda(<=%s, >=%s)", safeString(t.Upper), safeString(t.Lower))
}

func safeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// Bottom is the empty type — no value inhabits it.
type Bottom struct{}

func (Bottom) typeNode()        {}
func (Bottom) String() string   { return "Bottom" }

// Top is the universal supertype.
type Top struct{}

func (Top) typeNode()        {}
func (Top) String() string   { return "Top" }

// Nil is the singleton nil type.
type Nil struct{}

func (Nil) typeNode()        {}
func (Nil) String() string   { return "Nil" }

// Untyped is the lattice fixpoint: dispatch on it always succeeds silently.
// Blame optionally names the symbol responsible for the type having gone
// untyped, purely for diagnostics.
type Untyped struct {
	Blame string
}

func (Untyped) typeNode()        {}
func (Untyped) String() string   { return "Untyped" }

// Void models a statement-only expression position; calling a method on it
// is always a mistake (see dispatch.go).
type Void struct{}

func (Void) typeNode()        {}
func (Void) String() string   { return "Void" }

// IsUntyped reports whether t is the Untyped fixpoint.
func IsUntyped(t Type) bool {
	_, ok := t.(Untyped)
	return ok
}

// Normalize flattens/dedupes/sorts a union or intersection chain built
// from left-associated binary OrType/AndType nodes, so that neither side
// of an OrType is itself an OrType with the same partners (and likewise
// for AndType).
func Normalize(t Type) Type {
	switch v := t.(type) {
	case OrType:
		return normalizeChain(t, isOr, func(xs []Type) Type { return rebuild(xs, newOr) })
	case AndType:
		return normalizeChain(t, isAnd, func(xs []Type) Type { return rebuild(xs, newAnd) })
	default:
		return v
	}
}

func isOr(t Type) (Type, Type, bool) {
	if o, ok := t.(OrType); ok {
		return o.Left, o.Right, true
	}
	return nil, nil, false
}

func isAnd(t Type) (Type, Type, bool) {
	if a, ok := t.(AndType); ok {
		return a.Left, a.Right, true
	}
	return nil, nil, false
}

func newOr(l, r Type) Type  { return OrType{Left: l, Right: r} }
func newAnd(l, r Type) Type { return AndType{Left: l, Right: r} }

func normalizeChain(t Type, split func(Type) (Type, Type, bool), rebuildFn func([]Type) Type) Type {
	flat := flattenChain(t, split)
	seen := map[string]bool{}
	unique := make([]Type, 0, len(flat))
	for _, f := range flat {
		s := f.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, f)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].String() < unique[j].String() })
	if len(unique) == 1 {
		return unique[0]
	}
	return rebuildFn(unique)
}

func flattenChain(t Type, split func(Type) (Type, Type, bool)) []Type {
	if l, r, ok := split(t); ok {
		return append(flattenChain(l, split), flattenChain(r, split)...)
	}
	return []Type{t}
}

func rebuild(xs []Type, combine func(l, r Type) Type) Type {
	acc := xs[0]
	for _, x := range xs[1:] {
		acc = combine(acc, x)
	}
	return acc
}
