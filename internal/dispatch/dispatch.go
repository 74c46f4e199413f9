// dispatch.go implements the top-level `Dispatch` entry point, cased
// exhaustively over the receiver type's variant: one small function per
// variant, switch-heavy, matching the style used throughout this
// package's other files.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// Dispatch resolves args.Name against receiver, cased exhaustively over
// the receiver type's variant.
func (d *Dispatcher) Dispatch(receiver types.Type, args DispatchArgs) DispatchResult {
	args = args.withReceiver(receiver)

	switch r := receiver.(type) {
	case types.Untyped:
		return untypedResult(r)

	case types.Void:
		return d.voidResult(args)

	case types.ClassType, types.AppliedType:
		return d.dispatchSymbolPath(receiver, args)

	case types.OrType:
		return d.dispatchOr(r, args)

	case types.AndType:
		return d.dispatchAnd(r, args)

	case types.LiteralType:
		return d.dispatchProxy(r, r.Underlying(), args)

	case types.ShapeType:
		return d.dispatchProxy(r, r.Underlying(config.HashClass), args)

	case types.TupleType:
		return d.dispatchProxy(r, r.Underlying(config.ArrayClass), args)

	case types.MetaType:
		return d.dispatchMeta(r, args)

	case types.Nil:
		return d.dispatchSymbolPath(types.ClassType{ClassID: "NilClass"}, args)

	default:
		// Bottom, Top, TVar, SelfTypeParam, LambdaParam reaching Dispatch
		// directly is a caller error (they should have been resolved/
		// substituted beforehand); treat as Untyped rather than panic,
		// since diagnostics must never interrupt control flow.
		return untypedResult(types.Untyped{})
	}
}

func untypedResult(u types.Untyped) DispatchResult {
	return DispatchResult{
		ReturnType: u,
		Main: DispatchComponent{
			Receiver:   u,
			Constraint: constraint.Empty(),
			Errors:     diag.NewQueue(true),
		},
	}
}

func (d *Dispatcher) voidResult(args DispatchArgs) DispatchResult {
	q := diag.NewQueue(args.SuppressErrors)
	q.Emit(diag.New(diag.BareTypeUsage, args.Locs.Receiver, "cannot call method `%s` on void", args.Name).
		WithRequestID(args.RequestID).Build())
	return DispatchResult{
		ReturnType: types.Untyped{},
		Main: DispatchComponent{
			Receiver:   types.Void{},
			Constraint: constraint.Empty(),
			Errors:     q,
		},
	}
}

// dispatchOr implements the Or case: dispatch against each side
// independently (receiver narrowed to that side) and merge with OR.
func (d *Dispatcher) dispatchOr(r types.OrType, args DispatchArgs) DispatchResult {
	left := d.Dispatch(r.Left, args.withReceiver(r.Left))
	right := d.Dispatch(r.Right, args.withReceiver(r.Right))
	return mergeOr(left, right)
}

// dispatchAnd implements the And case: both sides computed with errors
// suppressed; if exactly one resolves the method, adopt it; otherwise
// re-dispatch both with errors enabled and AND-merge.
func (d *Dispatcher) dispatchAnd(r types.AndType, args DispatchArgs) DispatchResult {
	suppressedArgs := args
	suppressedArgs.SuppressErrors = true

	left := d.Dispatch(r.Left, suppressedArgs.withReceiver(r.Left))
	right := d.Dispatch(r.Right, suppressedArgs.withReceiver(r.Right))

	leftOK := allComponentsPresent(left)
	rightOK := allComponentsPresent(right)

	if leftOK && !rightOK {
		return d.Dispatch(r.Left, args.withReceiver(r.Left))
	}
	if rightOK && !leftOK {
		return d.Dispatch(r.Right, args.withReceiver(r.Right))
	}

	left = d.Dispatch(r.Left, args.withReceiver(r.Left))
	right = d.Dispatch(r.Right, args.withReceiver(r.Right))
	return mergeAnd(left, right)
}

// allComponentsPresent walks the linked result chain: true iff every
// component has a resolved method and every OR-link also resolves.
// Intersection links do not require both sides present.
func allComponentsPresent(r DispatchResult) bool {
	if r.Main.Method == nil {
		return false
	}
	if r.Secondary == nil {
		return true
	}
	switch r.SecondaryKind {
	case SecondaryOr:
		return r.Secondary.Method != nil
	case SecondaryAnd:
		return true
	default:
		return true
	}
}

// dispatchProxy implements the Literal/Shape/Tuple case: try the
// intrinsic table on the proxy's own identity first; fall back to the
// underlying class if no intrinsic handled the call.
func (d *Dispatcher) dispatchProxy(proxy types.Type, underlying types.Type, args DispatchArgs) DispatchResult {
	if ref, ok := proxyIntrinsicRef(proxy, args.Name); ok {
		if h, ok := d.lookupIntrinsic(&ref); ok {
			q := diag.NewQueue(args.SuppressErrors)
			c := constraint.Empty()
			ic := &intrinsicContext{d: d, args: args, receiver: proxy, constraint: c, errors: q}
			effect := h(ic)
			if effect.Handled {
				return DispatchResult{
					ReturnType: orUntyped(effect.ReturnType),
					Main: DispatchComponent{
						Receiver:   proxy,
						Constraint: c,
						Errors:     q,
						SendType:   proxy,
					},
				}
			}
		}
	}
	return d.Dispatch(underlying, args.withReceiver(underlying))
}

func orUntyped(t types.Type) types.Type {
	if t == nil {
		return types.Untyped{}
	}
	return t
}

// proxyIntrinsicRef maps a proxy receiver to the synthetic class identity
// its intrinsics are registered under (Tuple/Shape aren't symtab classes,
// so the registry keys on a fixed sentinel name per variant).
func proxyIntrinsicRef(proxy types.Type, name string) (symtab.IntrinsicRef, bool) {
	switch proxy.(type) {
	case types.TupleType:
		return symtab.IntrinsicRef{OwnerClassID: "$Tuple", MethodName: name}, true
	case types.ShapeType:
		return symtab.IntrinsicRef{OwnerClassID: "$Shape", MethodName: name}, true
	case types.LiteralType:
		return symtab.IntrinsicRef{OwnerClassID: "$Literal", MethodName: name}, true
	default:
		return symtab.IntrinsicRef{}, false
	}
}

// dispatchMeta implements the MetaType case: `new` redirects to
// `initialize` on the wrapped type and overrides the return type; every
// other call falls through to underlying dispatch with a diagnostic.
func (d *Dispatcher) dispatchMeta(m types.MetaType, args DispatchArgs) DispatchResult {
	if args.Name == config.NewMethod {
		initArgs := args
		initArgs.Name = config.InitializeMethod
		res := d.Dispatch(m.Wrapped, initArgs.withReceiver(m.Wrapped))
		res.ReturnType = m.Wrapped
		return res
	}

	q := diag.NewQueue(args.SuppressErrors)
	q.Emit(diag.New(diag.MetaTypeDispatchCall, args.Locs.Receiver,
		"mistakes a type for a value: `%s` is a type, not an instance", m.Wrapped.String()).
		Note("pattern-match on the concrete class with `===` instead").
		WithRequestID(args.RequestID).Build())

	res := d.Dispatch(m.Wrapped, args.withReceiver(m.Wrapped))
	res.Main.Errors.Merge(q)
	return res
}
