// symbol.go implements : the primary dispatch path for a class or
// applied-generic receiver — member lookup, not-found handling, overload
// disambiguation, constraint preparation, argument/block matching,
// intrinsic application, return-type computation, and the final
// constraint solve / block-presence check.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

func classID(t types.Type) (string, []types.Type) {
	switch v := t.(type) {
	case types.ClassType:
		return v.ClassID, nil
	case types.AppliedType:
		return v.ClassID, v.Args
	default:
		return "", nil
	}
}

func (d *Dispatcher) dispatchSymbolPath(receiver types.Type, args DispatchArgs) DispatchResult {
	cid, typeArgs := classID(receiver)
	q := diag.NewQueue(args.SuppressErrors)

	// Step 1: member lookup.
	method, ok := d.Table.FindMember(cid, args.Name)
	if !ok {
		method, ok = d.Table.FindMemberTransitive(cid, args.Name)
	}
	if !ok && d.Policy.RequiredAncestorsEnabled {
		if meta, hasMeta := d.Table.ClassMeta(cid); hasMeta {
			for _, anc := range meta.RequiredAncestorsTransitive {
				if m, found := d.Table.FindMemberTransitive(anc, args.Name); found {
					method, ok = m, true
					break
				}
			}
		}
	}

	// Step 2: not-found handling.
	if !ok {
		return d.handleNotFound(receiver, cid, args, q)
	}

	// Step 3: overload disambiguation.
	resolved := method
	if method.IsOverloaded && len(method.Overloads) > 0 {
		resolved = resolveOverload(method, args)
	}

	// Step 4: constraint preparation.
	c := d.prepareConstraint(resolved, args)

	// Step 5/6: argument + block matching.
	matchArguments(d, resolved, args, c, q)
	blockPre, blockRet, blockSpec := matchBlock(d, resolved, args, c, q)

	component := DispatchComponent{
		Receiver:        receiver,
		Method:          resolved,
		Constraint:      c,
		BlockPreType:    blockPre,
		BlockReturnType: blockRet,
		BlockSpec:       blockSpec,
		Errors:          q,
		SendType:        receiver,
	}

	// Step 7: intrinsic application. When the resolved method is both
	// overloaded and generic, an intrinsic-supplied constraint replacing
	// the overload pick's constraint is Open Question #2;
	// Policy.IntrinsicConstraintWins (default true) decides which side
	// wins when both are in play.
	returnType := d.computeReturnType(resolved, receiver, typeArgs, args, c)
	if resolved.Intrinsic != nil {
		if h, found := d.lookupIntrinsic(resolved.Intrinsic); found {
			overloadedAndGeneric := resolved.IsOverloaded && resolved.IsGenericMethod
			icConstraint := c
			if overloadedAndGeneric && !d.Policy.IntrinsicConstraintWins {
				// The overload pick's constraint wins: the handler works on
				// a scratch constraint over the same domain, so nothing it
				// changes reaches c.
				icConstraint = constraint.New(c.Domain()...)
			}
			ic := &intrinsicContext{d: d, args: args, receiver: receiver, method: resolved, constraint: icConstraint, errors: q}
			effect := h(ic)
			if effect.Handled && effect.ReturnType != nil {
				returnType = effect.ReturnType
			}
			if effect.ReplacedConstraint && (!overloadedAndGeneric || d.Policy.IntrinsicConstraintWins) {
				component.Constraint = c
			}
		}
	}

	// Step 9: constraint solving (only if no block attached; block bodies
	// are checked by the caller before solving, ).
	if !args.Block.Present {
		solved := c.Solve(tableResolver{d.Table})
		if len(solved.Conflicts) > 0 {
			for _, conf := range solved.Conflicts {
				q.Emit(diag.New(diag.GenericMethodConstaintUnsolved, args.Locs.Call,
					"could not solve constraints for generic method `%s`: %s", args.Name, conf.Error()).
					WithRequestID(args.RequestID).Build())
			}
		}
		returnType = constraint.Instantiate(returnType, solved)
	}

	// Step 10: block-presence check.
	if blockArg, hasBlockArg := resolved.BlockArg(); hasBlockArg && !blockArg.IsSynthetic {
		if !isNilable(blockArg.Type) && !args.Block.Present {
			q.Emit(diag.New(diag.BlockNotPassed, args.Locs.Call,
				"method `%s` requires a block but none was passed", args.Name).
				WithRequestID(args.RequestID).Build())
		}
	}

	returnType = unify.ReplaceSelfType(returnType, receiver)
	component.Method = resolved

	return DispatchResult{ReturnType: returnType, Main: component}
}

func isNilable(t types.Type) bool {
	if t == nil {
		return true
	}
	if u, ok := t.(types.OrType); ok {
		_, l := u.Left.(types.Nil)
		_, r := u.Right.(types.Nil)
		return l || r
	}
	_, isNil := t.(types.Nil)
	return isNil
}

// prepareConstraint allocates a fresh constraint if the call has a block
// or the method is generic; otherwise shares the frozen empty singleton
//.
func (d *Dispatcher) prepareConstraint(m *symtab.Method, args DispatchArgs) *constraint.TypeConstraint {
	if !args.Block.Present && !m.IsGenericMethod {
		return constraint.Empty()
	}
	return constraint.New(m.TypeArguments...)
}

// computeReturnType implements step 8: setter methods return the RHS
// argument's type, `[]=` returns its second argument, otherwise the
// method's declared result substituted through receiver/type-arg context.
func (d *Dispatcher) computeReturnType(m *symtab.Method, receiver types.Type, typeArgs []types.Type, args DispatchArgs, c *constraint.TypeConstraint) types.Type {
	if m.Name == config.IndexSetMethod {
		if t, ok := nthPositional(args, 1); ok {
			return t
		}
	}
	if isSetterName(m.Name) {
		if t, ok := nthPositional(args, 0); ok {
			return t
		}
	}

	subst := map[string]types.Type{}
	if meta, ok := d.Table.ClassMeta(ownerOf(receiver, m)); ok {
		for i, tm := range meta.TypeMembers {
			if typeArgs != nil && i < len(typeArgs) {
				subst[tm.Name] = typeArgs[i]
			}
		}
	}
	return unify.ResultTypeAsSeenFrom(m.Result, subst)
}

func ownerOf(receiver types.Type, m *symtab.Method) string {
	if cid, _ := classID(receiver); cid != "" {
		return cid
	}
	return m.Owner
}

// isSetterName reports whether a method name is assignment-shaped
// (`foo=`), excluding comparison operators (`==`, `!=`, `<=`, `>=`),
// which share the trailing `=` but are not setters.
func isSetterName(name string) bool {
	if len(name) < 2 || name[len(name)-1] != '=' {
		return false
	}
	switch name {
	case "==", "!=", "<=", ">=", "===":
		return false
	}
	return true
}

func nthPositional(args DispatchArgs, n int) (types.Type, bool) {
	if n < args.NumPosArgs && n < len(args.Args) {
		return args.Args[n].Type, true
	}
	return nil, false
}

// tableResolver adapts symtab.Table to unify.Resolver.
type tableResolver struct{ t symtab.Table }

func (r tableResolver) DerivesFrom(classID string) []string { return r.t.DerivesFrom(classID) }
func (r tableResolver) Underlying(t types.Type) (types.Type, bool) { return r.t.Underlying(t) }
