// intrinsics_magic.go implements the "runtime-call shims (on Magic)"
// family: the synthetic methods the call-tree compiler lowers imperative
// constructs (hash/array/range literals, splats, block coercion) onto
// before they ever reach ordinary dispatch.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

const magicClass = "Magic"

func registerMagicIntrinsics(d *Dispatcher) {
	ref := func(name string) symtab.IntrinsicRef {
		return symtab.IntrinsicRef{OwnerClassID: magicClass, IsSingleton: true, MethodName: name}
	}

	d.RegisterIntrinsic(ref("build_hash"), func(ic *intrinsicContext) IntrinsicEffect {
		actuals := ic.allArgs()
		if len(actuals)%2 != 0 || len(actuals) == 0 {
			return IntrinsicEffect{Handled: true, ReturnType: unify.HashOfUntyped()}
		}
		var keyU, valU types.Type
		for i := 0; i+1 < len(actuals); i += 2 {
			keyU = unify.Any(keyU, actuals[i])
			valU = unify.Any(valU, actuals[i+1])
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.AppliedType{ClassID: "Hash", Args: []types.Type{keyU, valU}}}
	})

	d.RegisterIntrinsic(ref("build_array"), func(ic *intrinsicContext) IntrinsicEffect {
		actuals := ic.allArgs()
		if len(actuals) == 0 {
			return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(types.Bottom{})}
		}
		elem := actuals[0]
		for _, a := range actuals[1:] {
			elem = unify.Any(elem, a)
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.ArrayOf(elem)}
	})

	d.RegisterIntrinsic(ref("build_range"), func(ic *intrinsicContext) IntrinsicEffect {
		actuals := ic.allArgs()
		if len(actuals) == 0 {
			return IntrinsicEffect{Handled: true, ReturnType: unify.RangeOf(types.ClassType{ClassID: "Integer"})}
		}
		elem := actuals[0]
		for _, a := range actuals[1:] {
			elem = unify.Any(elem, a)
		}
		return IntrinsicEffect{Handled: true, ReturnType: unify.RangeOf(elem)}
	})

	d.RegisterIntrinsic(ref("expand_splat"), func(ic *intrinsicContext) IntrinsicEffect {
		x, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		if app, ok := x.(types.AppliedType); ok && len(app.Args) > 0 {
			return IntrinsicEffect{Handled: true, ReturnType: app.Args[0]}
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.Untyped{}}
	})

	d.RegisterIntrinsic(ref("splat"), func(ic *intrinsicContext) IntrinsicEffect {
		x, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		toAArgs := ic.args
		toAArgs.Name = "to_a"
		toAArgs.NumPosArgs = 0
		toAArgs.Args = nil
		res := ic.d.Dispatch(x, toAArgs.withReceiver(x))
		ic.errors.Merge(res.Main.Errors)
		return IntrinsicEffect{Handled: true, ReturnType: res.ReturnType}
	})

	d.RegisterIntrinsic(ref("call_with_splat"), callWithArgsHandler(false))
	d.RegisterIntrinsic(ref("call_with_splat_and_block"), callWithArgsHandler(true))

	d.RegisterIntrinsic(ref("call_with_block"), func(ic *intrinsicContext) IntrinsicEffect {
		blockVal, ok := ic.arg(ic.args.NumPosArgs - 1)
		if ok {
			if _, isNil := blockVal.(types.Nil); isNil {
				return IntrinsicEffect{Handled: true, ReturnType: types.Nil{}}
			}
			toProcArgs := ic.args
			toProcArgs.Name = "to_proc"
			toProcArgs.NumPosArgs = 0
			toProcArgs.Args = nil
			res := ic.d.Dispatch(blockVal, toProcArgs.withReceiver(blockVal))
			ic.errors.Merge(res.Main.Errors)
			return IntrinsicEffect{Handled: true, ReturnType: res.ReturnType}
		}
		return IntrinsicEffect{}
	})

	d.RegisterIntrinsic(ref("self_new"), func(ic *intrinsicContext) IntrinsicEffect {
		cid, _ := classID(ic.receiver)
		if cid == "" {
			return IntrinsicEffect{}
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.SelfTypeParam{Sym: cid}}
	})

	d.RegisterIntrinsic(ref("suggest_type"), func(ic *intrinsicContext) IntrinsicEffect {
		x, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		ic.errors.Emit(ic.emit(diag.UntypedConstantSuggestion,
			"constant has no declared type; consider `T.let(..., %s)`", x.String()).
			Autocorrect("add T.let annotation", "T.let(..., "+x.String()+")").Build())
		return IntrinsicEffect{Handled: true, ReturnType: x}
	})
}

// callWithArgsHandler models call_with_splat / call_with_splat_and_block:
// a positional splat (and, in the _and_block variant, a trailing block
// value) is flattened into an ordinary re-dispatch of the named method.
func callWithArgsHandler(withBlock bool) IntrinsicHandler {
	return func(ic *intrinsicContext) IntrinsicEffect {
		actuals := ic.allArgs()
		if len(actuals) == 0 {
			return IntrinsicEffect{}
		}
		splat := actuals[0]
		elem := types.Type(types.Untyped{})
		if app, ok := splat.(types.AppliedType); ok && len(app.Args) > 0 {
			elem = app.Args[0]
		}
		_ = withBlock // block coercion, when present, is handled by matchBlock
		                // on the redispatch below via the caller's own Block field.
		calleeArgs := ic.args
		calleeArgs.NumPosArgs = 1
		calleeArgs.Args = []Arg{{Type: elem}}
		res := ic.d.Dispatch(ic.receiver, calleeArgs.withReceiver(ic.receiver))
		ic.errors.Merge(res.Main.Errors)
		return IntrinsicEffect{Handled: true, ReturnType: res.ReturnType}
	}
}
