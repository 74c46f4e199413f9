// unwrap.go implements value-to-type unwrapping: lifting a value-position
// expression (e.g. the bare constant `Integer` passed as an argument)
// back into the type it denotes, for intrinsics that treat a value as a
// type (T.nilable, T.any, T.all, the generic bracket).
package dispatch

import (
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/types"
)

// valueToType applies its six rules in order. Every case produces a
// result — there is no unrecoverable input — so unlike earlier dispatch
// helpers this returns a bare types.Type.
func valueToType(ic *intrinsicContext, v types.Type) types.Type {
	switch x := v.(type) {
	case types.MetaType:
		return x.Wrapped
	case types.ClassType:
		if meta, ok := ic.d.Table.ClassMeta(x.ClassID); ok && meta.AttachedClass != "" {
			if attached, ok := ic.d.Table.ClassMeta(meta.AttachedClass); ok && attached.ExternalType != nil {
				return attached.ExternalType
			}
		}
		return x
	case types.AppliedType:
		if meta, ok := ic.d.Table.ClassMeta(x.ClassID); ok && meta.AttachedClass != "" {
			if attached, ok := ic.d.Table.ClassMeta(meta.AttachedClass); ok && attached.ExternalType != nil {
				return attached.ExternalType
			}
		}
		return x
	case types.ShapeType:
		values := make([]types.Type, len(x.Values))
		for i, val := range x.Values {
			values[i] = valueToType(ic, val)
		}
		return types.ShapeType{Keys: x.Keys, Values: values}
	case types.TupleType:
		elems := make([]types.Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = valueToType(ic, e)
		}
		return types.TupleType{Elems: elems}
	case types.LiteralType:
		ic.errors.Emit(ic.emit(diag.ExpectedLiteralType, "literal `%s` used as a type", x.String()).Build())
		return types.Untyped{}
	default:
		return v
	}
}
