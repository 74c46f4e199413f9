package dispatch

import (
	"testing"

	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// TestDispatchOverloadPick exercises a method with two overloads
// differing in arity and argument type, where the called signature
// determines which candidate (and thus which result type) dispatch
// should pick.
func TestDispatchOverloadPick(t *testing.T) {
	snap := symtab.NewSnapshot()
	snap.DefineClass(symtab.ClassMeta{ClassID: "Object"})
	snap.DefineClass(symtab.ClassMeta{ClassID: "String", DerivesFromList: []string{"Object"}})
	snap.DefineClass(symtab.ClassMeta{ClassID: "Integer", DerivesFromList: []string{"Object"}})
	snap.DefineClass(symtab.ClassMeta{ClassID: "Point"})

	oneArgOverload := &symtab.Method{
		Name:     "new",
		Owner:    "Point",
		SymbolID: 2,
		Args: []symtab.Argument{
			{Name: "v", Type: types.ClassType{ClassID: "Integer"}},
		},
		Result: types.ClassType{ClassID: "Integer"},
	}
	primary := &symtab.Method{
		Name:         "new",
		Owner:        "Point",
		SymbolID:     1,
		IsOverloaded: true,
		Overloads:    []*symtab.Method{oneArgOverload},
		Args: []symtab.Argument{
			{Name: "x", Type: types.ClassType{ClassID: "Integer"}},
			{Name: "y", Type: types.ClassType{ClassID: "Integer"}},
		},
		Result: types.ClassType{ClassID: "Point"},
	}
	snap.DefineMethod(primary)

	d := New(snap, config.DefaultPolicy())

	t.Run("two args picks two-arg overload", func(t *testing.T) {
		args := callArgs("new",
			Arg{Type: types.ClassType{ClassID: "Integer"}},
			Arg{Type: types.ClassType{ClassID: "Integer"}},
		)
		result := d.Dispatch(types.ClassType{ClassID: "Point"}, args)
		if got := result.ReturnType.String(); got != "Point" {
			t.Errorf("ReturnType = %s, want Point", got)
		}
	})

	t.Run("one arg picks single-arg overload", func(t *testing.T) {
		args := callArgs("new", Arg{Type: types.ClassType{ClassID: "Integer"}})
		result := d.Dispatch(types.ClassType{ClassID: "Point"}, args)
		if got := result.ReturnType.String(); got != "Integer" {
			t.Errorf("ReturnType = %s, want Integer", got)
		}
	})
}
