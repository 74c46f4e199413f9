// call_arguments.go implements 's second entry point:
// GetCallArguments(name) answers "what would this call's formal parameter
// types be" without performing a full dispatch — used by control-flow
// analysis (e.g. flow-sensitive narrowing after a guard clause) that
// needs a method's shape but must not pay for argument/block matching or
// emit diagnostics. One case per receiver variant, same split as
// Dispatch itself in dispatch.go.
package dispatch

import (
	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
	"github.com/veridian-lang/veri/internal/unify"
)

// GetCallArguments returns the tuple of formal parameter types for name on
// receiver, or false if the receiver has no such method. Per : for
// union receivers this is the greatest-lower-bound of both sides' tuples,
// for intersections the least-upper-bound, for untyped it is untyped
// itself (never "not found"), and for class/applied receivers it is built
// directly from the resolved method's non-block formals, with any rest
// parameter widened to Array<T>.
func (d *Dispatcher) GetCallArguments(receiver types.Type, name string) (types.Type, bool) {
	switch r := receiver.(type) {
	case types.Untyped:
		return types.Untyped{}, true

	case types.Void, types.Nil:
		return types.TupleType{}, false

	case types.ClassType, types.AppliedType:
		return d.callArgumentsSymbolPath(receiver, name)

	case types.OrType:
		left, leftOK := d.GetCallArguments(r.Left, name)
		right, rightOK := d.GetCallArguments(r.Right, name)
		if !leftOK || !rightOK {
			return types.TupleType{}, false
		}
		return unify.Glb(left, right), true

	case types.AndType:
		left, leftOK := d.GetCallArguments(r.Left, name)
		right, rightOK := d.GetCallArguments(r.Right, name)
		switch {
		case leftOK && rightOK:
			return unify.Any(left, right), true
		case leftOK:
			return left, true
		case rightOK:
			return right, true
		default:
			return types.TupleType{}, false
		}

	case types.LiteralType:
		return d.GetCallArguments(r.Underlying(), name)

	case types.ShapeType:
		return d.GetCallArguments(r.Underlying(config.HashClass), name)

	case types.TupleType:
		return d.GetCallArguments(r.Underlying(config.ArrayClass), name)

	case types.MetaType:
		if name == config.NewMethod {
			return d.GetCallArguments(r.Wrapped, config.InitializeMethod)
		}
		return d.GetCallArguments(r.Wrapped, name)

	default:
		return types.TupleType{}, false
	}
}

// callArgumentsSymbolPath looks up name on a class/applied receiver and
// turns its non-block formals into a tuple, without running overload
// resolution; an overloaded method uses the primary method the symbol
// table returns for name, and its Overloads are not consulted.
func (d *Dispatcher) callArgumentsSymbolPath(receiver types.Type, name string) (types.Type, bool) {
	cid, _ := classID(receiver)
	m, ok := d.Table.FindMemberTransitive(cid, name)
	if !ok {
		return types.TupleType{}, false
	}
	return nonBlockArgsTuple(m), true
}

// nonBlockArgsTuple builds a tuple type with one element per non-block
// formal, with a trailing rest parameter widened to Array<T> rather than
// appearing as its own tuple slot.
func nonBlockArgsTuple(m *symtab.Method) types.Type {
	formals := m.NonBlockArgs()
	elems := make([]types.Type, 0, len(formals))
	for _, f := range formals {
		if f.IsRepeated {
			elems = append(elems, unify.ArrayOf(f.Type))
			continue
		}
		elems = append(elems, f.Type)
	}
	return types.TupleType{Elems: elems}
}
