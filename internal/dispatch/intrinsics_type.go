// intrinsics_type.go implements the "type constructors (on T)" family:
// untyped, noreturn, nilable, any, all, must, reveal_type, proc. All are
// singleton methods on the sig-builder class.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

const sigBuilderClass = "T"

func registerTypeConstructorIntrinsics(d *Dispatcher) {
	ref := func(name string) symtab.IntrinsicRef {
		return symtab.IntrinsicRef{OwnerClassID: sigBuilderClass, IsSingleton: true, MethodName: name}
	}

	d.RegisterIntrinsic(ref("untyped"), func(ic *intrinsicContext) IntrinsicEffect {
		return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: types.Untyped{}}}
	})

	d.RegisterIntrinsic(ref("noreturn"), func(ic *intrinsicContext) IntrinsicEffect {
		return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: types.Bottom{}}}
	})

	d.RegisterIntrinsic(ref("nilable"), func(ic *intrinsicContext) IntrinsicEffect {
		x, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		wrapped := valueToType(ic, x)
		return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{
			Wrapped: types.Normalize(types.OrType{Left: wrapped, Right: types.Nil{}}),
		}}
	})

	d.RegisterIntrinsic(ref("any"), func(ic *intrinsicContext) IntrinsicEffect {
		return combineTypeArgs(ic, unify.Any)
	})

	d.RegisterIntrinsic(ref("all"), func(ic *intrinsicContext) IntrinsicEffect {
		return combineTypeArgs(ic, unify.All)
	})

	d.RegisterIntrinsic(ref("must"), func(ic *intrinsicContext) IntrinsicEffect {
		x, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		if !isNilable(x) {
			ic.errors.Emit(ic.emit(diag.InvalidCast, "`T.must` on a non-nilable type `%s`", x.String()).
				Note("this call is redundant; the value is never nil").Build())
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.DropNil(x)}
	})

	d.RegisterIntrinsic(ref("reveal_type"), func(ic *intrinsicContext) IntrinsicEffect {
		x, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		ic.errors.Emit(ic.emit(diag.RevealType, "revealed type: `%s`", x.String()).Build())
		return IntrinsicEffect{Handled: true, ReturnType: x}
	})

	d.RegisterIntrinsic(ref("proc"), func(ic *intrinsicContext) IntrinsicEffect {
		return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: types.ClassType{ClassID: "Proc"}}}
	})
}

// combineTypeArgs implements T.any/T.all: unwrap every positional
// argument as a type-in-value-position and fold with combine.
func combineTypeArgs(ic *intrinsicContext, combine func(a, b types.Type) types.Type) IntrinsicEffect {
	actuals := ic.allArgs()
	if len(actuals) == 0 {
		return IntrinsicEffect{}
	}
	var acc types.Type
	for _, a := range actuals {
		t := valueToType(ic, a)
		if acc == nil {
			acc = t
		} else {
			acc = combine(acc, t)
		}
	}
	return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: acc}}
}
