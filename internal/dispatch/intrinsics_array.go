// intrinsics_array.go implements the "Array" intrinsic family:
// flatten(depth?), product, zip, compact — all performing element-level
// refinement beyond what Array's ordinary signature can express.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

func registerArrayIntrinsics(d *Dispatcher) {
	ref := func(name string) symtab.IntrinsicRef {
		return symtab.IntrinsicRef{OwnerClassID: "Array", MethodName: name}
	}

	d.RegisterIntrinsic(ref("flatten"), func(ic *intrinsicContext) IntrinsicEffect {
		elem, ok := arrayElem(ic.receiver)
		if !ok {
			return IntrinsicEffect{}
		}
		depth := -1
		if d, ok := ic.arg(0); ok {
			if lit, ok := d.(types.LiteralType); ok && lit.Kind == types.LiteralInt {
				if n, ok := lit.Value.(int); ok {
					depth = n
				}
			}
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(flattenElem(elem, depth))}
	})

	d.RegisterIntrinsic(ref("product"), func(ic *intrinsicContext) IntrinsicEffect {
		elem, ok := arrayElem(ic.receiver)
		if !ok {
			return IntrinsicEffect{}
		}
		elems := []types.Type{elem}
		for _, a := range ic.allArgs() {
			if e, ok := arrayElem(a); ok {
				elems = append(elems, e)
			}
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(types.TupleType{Elems: elems})}
	})

	d.RegisterIntrinsic(ref("zip"), func(ic *intrinsicContext) IntrinsicEffect {
		elem, ok := arrayElem(ic.receiver)
		if !ok {
			return IntrinsicEffect{}
		}
		elems := []types.Type{elem}
		for _, a := range ic.allArgs() {
			if e, ok := arrayElem(a); ok {
				elems = append(elems, types.Normalize(types.OrType{Left: e, Right: types.Nil{}}))
			}
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(types.TupleType{Elems: elems})}
	})

	d.RegisterIntrinsic(ref("compact"), func(ic *intrinsicContext) IntrinsicEffect {
		elem, ok := arrayElem(ic.receiver)
		if !ok {
			return IntrinsicEffect{}
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(unify.DropNil(elem))}
	})
}

func arrayElem(t types.Type) (types.Type, bool) {
	switch v := t.(type) {
	case types.AppliedType:
		if v.ClassID == "Array" && len(v.Args) == 1 {
			return v.Args[0], true
		}
	case types.TupleType:
		return tupleElementUnion(v), true
	}
	return nil, false
}

// flattenElem descends through nested arrays/tuples up to depth levels
// (negative behaves as infinite).
func flattenElem(elem types.Type, depth int) types.Type {
	if depth == 0 {
		return elem
	}
	if nested, ok := arrayElem(elem); ok {
		return flattenElem(nested, dec(depth))
	}
	return elem
}

func dec(depth int) int {
	if depth < 0 {
		return depth
	}
	return depth - 1
}
