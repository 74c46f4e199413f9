// notfound.go implements what happens when member lookup fails — the
// UnknownMethod diagnostic with fuzzy suggestions, the `initialize`/super
// sentinel special case, and the nil-receiver "unsafe wrap" hint.
package dispatch

import (
	"fmt"

	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

func (d *Dispatcher) handleNotFound(receiver types.Type, cid string, args DispatchArgs, q *diag.Queue) DispatchResult {
	// `initialize` called through the super sentinel with no user-defined
	// initializer resolves silently to Void — every class has an implicit
	// no-op constructor. The implicit constructor takes no arguments, so
	// `initialize` called with any is an arity mismatch even though the
	// no-op case itself is silent.
	if args.Name == config.InitializeMethod || args.Name == config.SuperSentinel {
		if args.Name == config.InitializeMethod && len(args.Args) > 0 {
			q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.Call,
				"method `initialize` expects 0 argument(s), got %d", len(args.Args)).
				WithRequestID(args.RequestID).Build())
		}
		return DispatchResult{
			ReturnType: types.Void{},
			Main: DispatchComponent{
				Receiver:   receiver,
				Constraint: constraint.Empty(),
				Errors:     q,
				SendType:   receiver,
			},
		}
	}

	if owner, ok := d.Table.RootObjectHasModuleMethod(args.Name); ok {
		// Defined on a mixed-in module reachable from Object but not
		// discovered by the ancestor scan (e.g. policy disabled it):
		// resolve anyway rather than false-reporting UnknownMethod.
		if m, found := d.Table.FindMember(owner, args.Name); found {
			return d.dispatchResolved(receiver, m, args, q)
		}
	}

	b := diag.New(diag.UnknownMethod, args.Locs.Call,
		"method `%s` does not exist on `%s`", args.Name, classLabel(cid))

	if suggestions := d.Table.FindMemberFuzzyMatch(cid, args.Name); len(suggestions) > 0 {
		b = b.Note("did you mean `%s`?", suggestions[0])
		b = b.Autocorrect(fmt.Sprintf("replace with `%s`", suggestions[0]), suggestions[0])
	}

	if cid == "NilClass" && d.Policy.UnsafeWrapHint != "" {
		b = b.Note("the receiver may be nil; wrap it with `%s(&:%s)`", d.Policy.UnsafeWrapHint, args.Name)
	}

	q.Emit(b.WithRequestID(args.RequestID).Build())

	return DispatchResult{
		ReturnType: types.Untyped{},
		Main: DispatchComponent{
			Receiver:   receiver,
			Constraint: constraint.Empty(),
			Errors:     q,
			SendType:   receiver,
		},
	}
}

func classLabel(cid string) string {
	if cid == "" {
		return "<unknown>"
	}
	return cid
}

// dispatchResolved continues the symbol path once a method has already
// been located by a fallback lookup (module-method recovery): overload
// disambiguation, constraint preparation, argument/block matching, the
// return type and the constraint solve. It does not apply intrinsics,
// report unsolved constraints, check block presence or replace the self
// type, as dispatchSymbolPath does.
func (d *Dispatcher) dispatchResolved(receiver types.Type, method *symtab.Method, args DispatchArgs, q *diag.Queue) DispatchResult {
	resolved := method
	if method.IsOverloaded && len(method.Overloads) > 0 {
		resolved = resolveOverload(method, args)
	}
	c := d.prepareConstraint(resolved, args)
	matchArguments(d, resolved, args, c, q)
	blockPre, blockRet, blockSpec := matchBlock(d, resolved, args, c, q)

	cid, typeArgs := classID(receiver)
	returnType := d.computeReturnType(resolved, receiver, typeArgs, args, c)
	_ = cid

	if !args.Block.Present {
		solved := c.Solve(tableResolver{d.Table})
		returnType = constraint.Instantiate(returnType, solved)
	}

	return DispatchResult{
		ReturnType: returnType,
		Main: DispatchComponent{
			Receiver:        receiver,
			Method:          resolved,
			Constraint:      c,
			BlockPreType:    blockPre,
			BlockReturnType: blockRet,
			BlockSpec:       blockSpec,
			Errors:          q,
			SendType:        receiver,
		},
	}
}
