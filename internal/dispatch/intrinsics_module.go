// intrinsics_module.go implements the "Module" intrinsic family:
// `===`, the pattern-match/case-equality operator, evaluated statically
// against the represented class whenever possible.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

func registerModuleIntrinsics(d *Dispatcher) {
	d.RegisterIntrinsic(symtab.IntrinsicRef{OwnerClassID: "Module", MethodName: "==="}, func(ic *intrinsicContext) IntrinsicEffect {
		represented, ok := unify.GetRepresentedClass(ic.receiver)
		if !ok {
			return IntrinsicEffect{}
		}
		rhs, ok := ic.arg(0)
		if !ok {
			return IntrinsicEffect{}
		}
		lhs := types.Type(types.ClassType{ClassID: represented})
		resolver := tableResolver{ic.d.Table}
		if unify.IsSubType(rhs, lhs, resolver) {
			return IntrinsicEffect{Handled: true, ReturnType: types.LiteralType{Kind: types.LiteralBool, Value: true, UnderlyingName: "TrueClass"}}
		}
		if isBottomGlb(rhs, lhs, resolver) {
			return IntrinsicEffect{Handled: true, ReturnType: types.LiteralType{Kind: types.LiteralBool, Value: false, UnderlyingName: "FalseClass"}}
		}
		return IntrinsicEffect{Handled: true, ReturnType: types.ClassType{ClassID: "Bool"}}
	})
}

// isBottomGlb reports whether a and b's greatest lower bound is
// uninhabited. unify.Glb returns the AndType of two classes neither of
// which derives from the other rather than Bottom, so that case is
// recognized here by checking ancestry in both directions.
func isBottomGlb(a, b types.Type, r unify.Resolver) bool {
	g := unify.Glb(a, b)
	if _, isBottom := g.(types.Bottom); isBottom {
		return true
	}
	and, ok := g.(types.AndType)
	if !ok {
		return false
	}
	ca, aok := and.Left.(types.ClassType)
	cb, bok := and.Right.(types.ClassType)
	if !aok || !bok {
		return false // unknown shape: conservative, don't claim bottom
	}
	return !unify.IsSubType(ca, cb, r) && !unify.IsSubType(cb, ca, r)
}
