// intrinsics_class.go implements the generic bracket ("Generic bracket
// ([])") and the class-primitive family (Object#class,
// Object#singleton_class, Class#new).
package dispatch

import (
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

func registerGenericBracketIntrinsic(d *Dispatcher) {
	h := func(ic *intrinsicContext) IntrinsicEffect {
		cid, _ := classID(ic.receiver)
		if mt, ok := ic.receiver.(types.MetaType); ok {
			if c, ok := mt.Wrapped.(types.ClassType); ok {
				cid = c.ClassID
			}
		}
		meta, ok := ic.d.Table.ClassMeta(cid)
		if !ok {
			return IntrinsicEffect{}
		}

		hasKeyword := false
		for _, a := range ic.args.Args {
			if a.IsKeyword {
				hasKeyword = true
			}
		}
		if hasKeyword {
			ic.errors.Emit(ic.emit(diag.GenericArgumentKeywordArgs,
				"generic type arguments must be positional, not keyword").
				Autocorrect("wrap in braces", "{...}").Build())
			return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: types.Untyped{}}}
		}

		actuals := ic.allArgs()
		if len(actuals) != len(meta.TypeMembers) {
			ic.errors.Emit(ic.emit(diag.GenericArgumentCountMismatch,
				"`%s` takes %d type argument(s), got %d", cid, len(meta.TypeMembers), len(actuals)).Build())
			return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: types.Untyped{}}}
		}

		resolvedArgs := make([]types.Type, len(actuals))
		for i, a := range actuals {
			t := valueToType(ic, a)
			tm := meta.TypeMembers[i]
			if tm.Upper != nil && !unify.IsSubType(t, tm.Upper, tableResolver{ic.d.Table}) {
				ic.errors.Emit(ic.emit(diag.GenericTypeParamBoundMismatch,
					"type argument `%s` for `%s` is not a subtype of its upper bound `%s`", t.String(), tm.Name, tm.Upper.String()).Build())
			}
			if tm.Lower != nil && !unify.IsSubType(tm.Lower, t, tableResolver{ic.d.Table}) {
				ic.errors.Emit(ic.emit(diag.GenericTypeParamBoundMismatch,
					"type argument `%s` for `%s` is not a supertype of its lower bound `%s`", t.String(), tm.Name, tm.Lower.String()).Build())
			}
			resolvedArgs[i] = t
		}

		return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{
			Wrapped: types.AppliedType{ClassID: cid, Args: resolvedArgs},
		}}
	}

	d.RegisterIntrinsic(symtab.IntrinsicRef{OwnerClassID: "$Generic", IsSingleton: true, MethodName: "[]"}, h)
}

func registerClassPrimitiveIntrinsics(d *Dispatcher) {
	d.RegisterIntrinsic(symtab.IntrinsicRef{OwnerClassID: "Object", MethodName: "class"}, func(ic *intrinsicContext) IntrinsicEffect {
		cid, _ := classID(ic.receiver)
		if cid == "" {
			return IntrinsicEffect{}
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.MetaType{Wrapped: types.ClassType{ClassID: cid}}}
	})

	d.RegisterIntrinsic(symtab.IntrinsicRef{OwnerClassID: "Object", MethodName: "singleton_class"}, func(ic *intrinsicContext) IntrinsicEffect {
		cid, _ := classID(ic.receiver)
		if meta, ok := ic.d.Table.ClassMeta(cid); ok && meta.IsSingletonClass {
			return IntrinsicEffect{Handled: true, ReturnType: types.ClassType{ClassID: cid}}
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.ClassType{ClassID: "Class"}}
	})

	d.RegisterIntrinsic(symtab.IntrinsicRef{OwnerClassID: "Class", IsSingleton: true, MethodName: "new"}, func(ic *intrinsicContext) IntrinsicEffect {
		attached, ok := unify.GetRepresentedClass(ic.receiver)
		if !ok {
			return IntrinsicEffect{}
		}
		initArgs := ic.args
		initArgs.Name = "initialize"
		res := ic.d.Dispatch(types.ClassType{ClassID: attached}, initArgs.withReceiver(types.ClassType{ClassID: attached}))
		ic.errors.Merge(res.Main.Errors)
		return IntrinsicEffect{Handled: true, ReturnType: types.ClassType{ClassID: attached}}
	})
}
