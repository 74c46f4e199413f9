// intrinsics_tuple_shape.go implements the "Tuple and Shape" intrinsic
// family: indexing (with Tuple's negative-wrap/out-of-bounds rules),
// first/last/min/max, to_a/to_hash projections, concat, and Shape's
// checked []= with its T.let autocorrect.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

func registerTupleShapeIntrinsics(d *Dispatcher) {
	tupleRef := func(name string) symtab.IntrinsicRef {
		return symtab.IntrinsicRef{OwnerClassID: "$Tuple", MethodName: name}
	}
	shapeRef := func(name string) symtab.IntrinsicRef {
		return symtab.IntrinsicRef{OwnerClassID: "$Shape", MethodName: name}
	}

	d.RegisterIntrinsic(tupleRef(config.IndexGetMethod), func(ic *intrinsicContext) IntrinsicEffect {
		tup, ok := ic.receiver.(types.TupleType)
		if !ok {
			return IntrinsicEffect{}
		}
		idxType, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{Handled: true, ReturnType: tupleElementUnion(tup)}
		}
		lit, ok := idxType.(types.LiteralType)
		if !ok || lit.Kind != types.LiteralInt {
			return IntrinsicEffect{Handled: true, ReturnType: tupleElementUnion(tup)}
		}
		idx, _ := lit.Value.(int)
		elem, ok := tup.At(idx)
		if !ok {
			return IntrinsicEffect{Handled: true, ReturnType: types.Nil{}}
		}
		return IntrinsicEffect{Handled: true, ReturnType: elem}
	})

	d.RegisterIntrinsic(tupleRef("first"), func(ic *intrinsicContext) IntrinsicEffect {
		tup, ok := ic.receiver.(types.TupleType)
		if !ok || len(tup.Elems) == 0 {
			return IntrinsicEffect{Handled: true, ReturnType: types.Nil{}}
		}
		return IntrinsicEffect{Handled: true, ReturnType: tup.Elems[0]}
	})
	d.RegisterIntrinsic(tupleRef("last"), func(ic *intrinsicContext) IntrinsicEffect {
		tup, ok := ic.receiver.(types.TupleType)
		if !ok || len(tup.Elems) == 0 {
			return IntrinsicEffect{Handled: true, ReturnType: types.Nil{}}
		}
		return IntrinsicEffect{Handled: true, ReturnType: tup.Elems[len(tup.Elems)-1]}
	})
	d.RegisterIntrinsic(tupleRef("min"), tupleElementUnionHandler)
	d.RegisterIntrinsic(tupleRef("max"), tupleElementUnionHandler)
	d.RegisterIntrinsic(tupleRef("to_a"), func(ic *intrinsicContext) IntrinsicEffect {
		tup, ok := ic.receiver.(types.TupleType)
		if !ok {
			return IntrinsicEffect{}
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(tupleElementUnion(tup))}
	})
	d.RegisterIntrinsic(tupleRef("concat"), func(ic *intrinsicContext) IntrinsicEffect {
		tup, ok := ic.receiver.(types.TupleType)
		if !ok {
			return IntrinsicEffect{}
		}
		elems := append([]types.Type{}, tup.Elems...)
		for _, a := range ic.allArgs() {
			if other, ok := a.(types.TupleType); ok {
				elems = append(elems, other.Elems...)
			}
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.TupleType{Elems: elems}}
	})

	d.RegisterIntrinsic(shapeRef(config.IndexGetMethod), func(ic *intrinsicContext) IntrinsicEffect {
		shape, ok := ic.receiver.(types.ShapeType)
		if !ok {
			return IntrinsicEffect{}
		}
		keyType, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		lit, ok := keyType.(types.LiteralType)
		if !ok {
			return IntrinsicEffect{Handled: true, ReturnType: types.Normalize(types.OrType{Left: shapeValueUnion(shape), Right: types.Nil{}})}
		}
		name, _ := lit.Value.(string)
		v, found := shape.Lookup(name)
		if !found {
			return IntrinsicEffect{Handled: true, ReturnType: types.Nil{}}
		}
		return IntrinsicEffect{Handled: true, ReturnType: v}
	})

	d.RegisterIntrinsic(shapeRef(config.IndexSetMethod), func(ic *intrinsicContext) IntrinsicEffect {
		shape, ok := ic.receiver.(types.ShapeType)
		if !ok {
			return IntrinsicEffect{}
		}
		keyType, keyOk := ic.arg(0)
		valType, valOk := ic.arg(1)
		if !keyOk || !valOk {
			return IntrinsicEffect{}
		}
		lit, ok := keyType.(types.LiteralType)
		if !ok {
			return IntrinsicEffect{Handled: true, ReturnType: valType}
		}
		name, _ := lit.Value.(string)
		existing, found := shape.Lookup(name)
		if found && !unify.IsSubType(valType, existing, tableResolver{ic.d.Table}) {
			b := ic.emit(diag.MethodArgumentMismatch,
				"key `%s` has type `%s`, cannot assign `%s`", name, existing.String(), valType.String())
			if lit, ok := staticLiteralGuess(valType); ok {
				b = b.Autocorrect("annotate with T.let", "T.let("+lit+", "+existing.String()+")")
			}
			ic.errors.Emit(b.Build())
		}
		return IntrinsicEffect{Handled: true, ReturnType: valType}
	})

	d.RegisterIntrinsic(shapeRef("to_hash"), func(ic *intrinsicContext) IntrinsicEffect {
		shape, ok := ic.receiver.(types.ShapeType)
		if !ok {
			return IntrinsicEffect{}
		}
		return IntrinsicEffect{Handled: true, ReturnType: shape.Underlying(config.HashClass)}
	})

	d.RegisterIntrinsic(shapeRef("merge"), func(ic *intrinsicContext) IntrinsicEffect {
		shape, ok := ic.receiver.(types.ShapeType)
		if !ok {
			return IntrinsicEffect{}
		}
		result := shape
		for _, a := range ic.args.Args {
			if a.IsKeyword && a.KeyName != "" {
				result = result.Merge(types.ShapeType{
					Keys:   []types.LiteralType{{Kind: types.LiteralSymbol, Value: a.KeyName}},
					Values: []types.Type{a.Type},
				})
			}
		}
		for _, a := range ic.args.Args {
			if a.IsKeyword && a.KeyName == "" {
				if other, ok := a.Type.(types.ShapeType); ok {
					result = result.Merge(other)
				}
			}
		}
		return IntrinsicEffect{Handled: true, ReturnType: result}
	})
}

func tupleElementUnion(t types.TupleType) types.Type {
	if len(t.Elems) == 0 {
		return types.Nil{}
	}
	u := t.Elems[0]
	for _, e := range t.Elems[1:] {
		u = types.OrType{Left: u, Right: e}
	}
	return types.Normalize(u)
}

func tupleElementUnionHandler(ic *intrinsicContext) IntrinsicEffect {
	tup, ok := ic.receiver.(types.TupleType)
	if !ok {
		return IntrinsicEffect{}
	}
	return IntrinsicEffect{Handled: true, ReturnType: tupleElementUnion(tup)}
}

func shapeValueUnion(t types.ShapeType) types.Type {
	if len(t.Values) == 0 {
		return types.Bottom{}
	}
	u := t.Values[0]
	for _, v := range t.Values[1:] {
		u = types.OrType{Left: u, Right: v}
	}
	return types.Normalize(u)
}

// staticLiteralGuess renders the literal source form for the hard-coded
// value forms this handles (nil/true/false) — the approximate
// "source-scan fallback" is represented here as a pure render-from-type
// step since this core never holds the original source text.
func staticLiteralGuess(t types.Type) (string, bool) {
	switch v := t.(type) {
	case types.Nil:
		return "nil", true
	case types.LiteralType:
		if v.Kind == types.LiteralBool {
			if b, ok := v.Value.(bool); ok {
				if b {
					return "true", true
				}
				return "false", true
			}
		}
	}
	return "", false
}
