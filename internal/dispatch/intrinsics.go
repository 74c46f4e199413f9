// intrinsics.go implements the static intrinsic registry and the context
// a handler runs with. Individual handler families live in sibling files
// (intrinsics_type.go, intrinsics_class.go, intrinsics_magic.go,
// intrinsics_array.go, intrinsics_tuple_shape.go, intrinsics_module.go),
// grouped by the owner class they augment, as an explicit registry
// rather than a per-name switch, so new intrinsics never touch
// dispatch.go.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// IntrinsicEffect is what a handler hands back to the dispatcher: an
// optional return type override and/or a replacement constraint.
type IntrinsicEffect struct {
	Handled            bool
	ReturnType         types.Type
	ReplacedConstraint bool
}

// intrinsicContext is the full dispatch context handed to a handler: the
// dispatcher itself (for recursive sub-dispatch, e.g.
// call_with_splat), the call's arguments, the receiver type, the
// resolved method (nil for proxy-variant intrinsics that run before a
// method is known), the live constraint, and the error queue.
type intrinsicContext struct {
	d          *Dispatcher
	args       DispatchArgs
	receiver   types.Type
	method     *symtab.Method
	constraint *constraint.TypeConstraint
	errors     *diag.Queue
}

func (ic *intrinsicContext) arg(i int) (types.Type, bool) {
	if i < 0 || i >= ic.args.NumPosArgs || i >= len(ic.args.Args) {
		return nil, false
	}
	return ic.args.Args[i].Type, true
}

func (ic *intrinsicContext) allArgs() []types.Type {
	out := make([]types.Type, 0, ic.args.NumPosArgs)
	for i := 0; i < ic.args.NumPosArgs && i < len(ic.args.Args); i++ {
		out = append(out, ic.args.Args[i].Type)
	}
	return out
}

func (ic *intrinsicContext) emit(code diag.Code, header string, fmtArgs ...any) *diag.Builder {
	return diag.New(code, ic.args.Locs.Call, header, fmtArgs...).WithRequestID(ic.args.RequestID)
}

// IntrinsicHandler is a pure function over the dispatch context: it
// returns its effect rather than mutating ic directly, though it may
// still reach through ic.constraint's pointer receiver or ic.errors'
// queue for the parts that genuinely need shared mutable state.
type IntrinsicHandler func(ic *intrinsicContext) IntrinsicEffect

// registerBuiltinIntrinsics wires every built-in intrinsic onto the
// well-known owner-class/method-name triples. Embedders that load
// their own symbol table must ensure Method.Intrinsic on the
// corresponding symbols points at the same triples.
func registerBuiltinIntrinsics(d *Dispatcher) {
	registerTypeConstructorIntrinsics(d)
	registerGenericBracketIntrinsic(d)
	registerClassPrimitiveIntrinsics(d)
	registerMagicIntrinsics(d)
	registerTupleShapeIntrinsics(d)
	registerArrayIntrinsics(d)
	registerModuleIntrinsics(d)
}
