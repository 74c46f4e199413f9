// arguments.go matches a call's positional and keyword actuals against a
// method's formal parameters, recording constraint bounds for generic
// parameters along the way and emitting arity/shape diagnostics.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

// matchArguments walks formals against actuals in two phases — positional
// then keyword — recording AddUpperBound constraints for any formal typed
// with a declared type parameter and emitting diagnostics for arity and
// shape mismatches.
func matchArguments(d *Dispatcher, m *symtab.Method, args DispatchArgs, c *constraint.TypeConstraint, q *diag.Queue) {
	formals := m.NonBlockArgs()

	var positional, keyword []symtab.Argument
	for _, f := range formals {
		if f.IsKeyword {
			keyword = append(keyword, f)
		} else {
			positional = append(positional, f)
		}
	}

	hasKeyword := len(keyword) > 0
	pos := matchPositional(d, m, positional, hasKeyword, args, c, q)
	matchKeyword(d, keyword, args, pos, c, q)
}

// matchPositional consumes the leading non-keyword actuals. It returns
// the index one past the last positional actual consumed, so the keyword
// phase knows where the keyword-shaped tail begins.
func matchPositional(d *Dispatcher, m *symtab.Method, formals []symtab.Argument, hasKeyword bool, args DispatchArgs, c *constraint.TypeConstraint, q *diag.Queue) int {
	consumed := 0
	sawRest := false
	for _, f := range formals {
		if f.IsRepeated {
			sawRest = true
			for consumed < args.NumPosArgs {
				checkArg(d, f, args.Args[consumed].Type, args, consumed, c, q)
				consumed++
			}
			continue
		}
		if consumed >= args.NumPosArgs {
			if !f.IsDefault {
				q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.Call,
					"method `%s` expects %s positional argument(s)", args.Name, m.PrettyArity()).
					WithRequestID(args.RequestID).Build())
				return consumed
			}
			continue
		}
		checkArg(d, f, args.Args[consumed].Type, args, consumed, c, q)
		consumed++
	}

	leftover := args.NumPosArgs - consumed

	// A single trailing actual beyond the positional formals may be an
	// implicit kwsplat — a hash literal standing in for keyword syntax —
	// when the method actually accepts keyword parameters; anything more
	// than one leftover actual is unambiguously too many.
	if !sawRest && leftover > 0 && !(hasKeyword && leftover == 1) {
		if hasKeyword {
			q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.Call,
				"method `%s` takes %s positional argument(s); got %d — keyword arguments must be passed by name",
				args.Name, m.PrettyArity(), args.NumPosArgs).
				WithRequestID(args.RequestID).Build())
		} else {
			q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.Call,
				"method `%s` expects %s positional argument(s), got %d",
				args.Name, m.PrettyArity(), args.NumPosArgs).
				WithRequestID(args.RequestID).Build())
		}
		return consumed
	}

	// Implicit kwsplat: on a method that accepts keyword args, one actual
	// beyond what the positional formals consumed is tolerated without an
	// arity error, whatever its type; under StrictKeywordArgs it draws a
	// deprecation diagnostic. Its keys are not matched against the keyword
	// formals, so a required keyword it would supply is still reported
	// missing by matchKeyword.
	if hasKeyword && leftover > 0 && d.Policy.StrictKeywordArgs {
		q.Emit(diag.New(diag.KeywordArgHashWithoutSplat, args.Locs.Call,
			"passing a hash literal where keyword arguments are expected is deprecated").
			WithRequestID(args.RequestID).Build())
	}

	return consumed
}

// matchKeyword handles the keyword phase: actuals from fromIdx onward
// that carry KeyName are matched by name against the remaining keyword
// formals; an untyped/unrecoverable kwsplat decays to Hash<Untyped,
// Untyped>.
func matchKeyword(d *Dispatcher, formals []symtab.Argument, args DispatchArgs, fromIdx int, c *constraint.TypeConstraint, q *diag.Queue) {
	if len(formals) == 0 {
		return
	}

	byName := map[string]symtab.Argument{}
	var kwrest *symtab.Argument
	for _, f := range formals {
		if f.IsRepeated {
			fCopy := f
			kwrest = &fCopy
			continue
		}
		byName[f.Name] = f
	}

	seen := map[string]bool{}
	splatSatisfies := false
	for i := fromIdx; i < len(args.Args); i++ {
		a := args.Args[i]
		if !a.IsKeyword {
			continue
		}
		if a.KeyName == "" {
			// A kwsplat (an unnamed keyword slot) is never unpacked, even
			// when its type is a shape: it decays to an untyped Hash and its
			// keys are not checked. Under AllowNonShapeKwargs it satisfies
			// every keyword formal; otherwise it draws UntypedSplat.
			if d.Policy.AllowNonShapeKwargs {
				splatSatisfies = true
			} else {
				q.Emit(diag.New(diag.UntypedSplat, args.Locs.ArgLoc(i),
					"keyword splat could not be resolved to a shape; treating as %s", unify.HashOfUntyped().String()).
					WithRequestID(args.RequestID).Build())
			}
			continue
		}
		seen[a.KeyName] = true
		f, ok := byName[a.KeyName]
		if !ok {
			if kwrest != nil {
				checkArg(d, *kwrest, a.Type, args, i, c, q)
				continue
			}
			q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.ArgLoc(i),
				"unexpected keyword argument `%s`", a.KeyName).
				WithRequestID(args.RequestID).Build())
			continue
		}
		checkArg(d, f, a.Type, args, i, c, q)
	}

	for _, f := range formals {
		if f.IsRepeated || f.IsDefault || splatSatisfies {
			continue
		}
		if !seen[f.Name] {
			q.Emit(diag.New(diag.MethodArgumentCountMismatch, args.Locs.Call,
				"missing required keyword argument `%s`", f.Name).
				WithRequestID(args.RequestID).Build())
		}
	}
}

// checkArg records a constraint upper bound when the formal's declared
// type is an unbound type parameter, otherwise checks the actual against
// the formal's concrete type and emits MethodArgumentMismatch on failure.
func checkArg(d *Dispatcher, formal symtab.Argument, actual types.Type, args DispatchArgs, idx int, c *constraint.TypeConstraint, q *diag.Queue) {
	if formal.Type == nil || actual == nil {
		return
	}
	if tv, ok := formal.Type.(types.TVar); ok {
		c.AddUpperBound(tv.ID, actual)
		return
	}
	if !unify.IsSubType(actual, formal.Type, tableResolver{d.Table}) {
		q.Emit(diag.New(diag.MethodArgumentMismatch, args.Locs.ArgLoc(idx),
			"expected `%s` for argument `%s`, got `%s`", formal.Type.String(), formal.Name, actual.String()).
			WithRequestID(args.RequestID).Build())
	}
}
