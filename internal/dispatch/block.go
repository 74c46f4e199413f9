// block.go implements : extracting a method's declared block
// parameter/return types, synthesizing an unknown-arity Proc when the
// caller's block has no recoverable signature, and flagging a generic
// value passed where a block was expected.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

// matchBlock returns the block's declared parameter type (pre-type, the
// type the block body sees its arguments as), its declared return type,
// and the Block spec itself, recording a lower bound on any generic
// parameter the formal block's return type mentions.
func matchBlock(d *Dispatcher, m *symtab.Method, args DispatchArgs, c *constraint.TypeConstraint, q *diag.Queue) (types.Type, types.Type, *Block) {
	blockFormal, hasFormal := m.BlockArg()
	if !hasFormal {
		if args.Block.Present {
			q.Emit(diag.New(diag.TakesNoBlock, args.Locs.Call,
				"method `%s` does not take a block", args.Name).
				WithRequestID(args.RequestID).Build())
		}
		return nil, nil, nil
	}

	if !args.Block.Present {
		return blockFormal.Type, unify.GetProcReturnType(blockFormal.Type), nil
	}

	blockSpec := args.Block

	declaredArity := unify.GetProcArity(blockFormal.Type)
	if blockSpec.Arity == -1 {
		if d.Policy.StrictProcArity {
			q.Emit(diag.New(diag.ProcArityUnknown, args.Locs.Call,
				"block passed to `%s` has unknown arity; inferring from the method's declared signature", args.Name).
				WithRequestID(args.RequestID).Build())
		}
		blockSpec.Arity = declaredArity
	} else if declaredArity != -1 && blockSpec.Arity != declaredArity {
		q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.Call,
			"block passed to `%s` expects %d argument(s), declared signature has %d", args.Name, blockSpec.Arity, declaredArity).
			WithRequestID(args.RequestID).Build())
	}

	preType := blockFormal.Type
	retType := unify.GetProcReturnType(blockFormal.Type)

	if blockSpec.ReturnType != nil {
		if tv, ok := retType.(types.TVar); ok {
			c.AddLowerBound(tv.ID, blockSpec.ReturnType)
		} else if retType != nil && !unify.IsSubType(blockSpec.ReturnType, retType, tableResolver{d.Table}) {
			q.Emit(diag.New(diag.MethodArgumentMismatch, args.Locs.Call,
				"block passed to `%s` returns `%s`, expected `%s`", args.Name, blockSpec.ReturnType.String(), retType.String()).
				WithRequestID(args.RequestID).Build())
		}
	}

	if looksGeneric(blockSpec) {
		q.Emit(diag.New(diag.GenericPassedAsBlock, args.Locs.Call,
			"a generic value was passed where a block was expected for `%s`", args.Name).
			WithRequestID(args.RequestID).Build())
	}

	return preType, retType, &blockSpec
}

// looksGeneric reports a degenerate block shape: a block with declared
// param types but no return type at all, which
// usually means a bare Proc value (not a literal block) was coerced via
// `&value` / `to_proc` without carrying enough signature to check.
func looksGeneric(b Block) bool {
	return len(b.ParamTypes) > 0 && b.ReturnType == nil && b.Arity == -1
}
