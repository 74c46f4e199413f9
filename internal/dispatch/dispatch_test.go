package dispatch

import (
	"strings"
	"testing"

	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// newTestSnapshot builds a small class hierarchy (Object <- Numeric <-
// Integer, Object <- String) plus a handful of methods used across this
// file's scenarios.
func newTestSnapshot() *symtab.Snapshot {
	snap := symtab.NewSnapshot()
	snap.DefineClass(symtab.ClassMeta{ClassID: "Object"})
	snap.DefineClass(symtab.ClassMeta{ClassID: "Numeric", DerivesFromList: []string{"Object"}})
	snap.DefineClass(symtab.ClassMeta{ClassID: "Integer", DerivesFromList: []string{"Numeric"}})
	snap.DefineClass(symtab.ClassMeta{ClassID: "String", DerivesFromList: []string{"Object"}})
	snap.DefineClass(symtab.ClassMeta{ClassID: "NilClass", DerivesFromList: []string{"Object"}})
	snap.DefineClass(symtab.ClassMeta{ClassID: "T"})
	snap.DefineClass(symtab.ClassMeta{ClassID: "LongInt", DerivesFromList: []string{"Numeric"}})

	snap.DefineMethod(&symtab.Method{
		Name:  "length",
		Owner: "String",
		Args:  []symtab.Argument{{Name: "blk", IsBlock: true, IsSynthetic: true}},
		Result: types.ClassType{ClassID: "Integer"},
	})
	snap.DefineMethod(&symtab.Method{
		Name:  "+",
		Owner: "Integer",
		Args: []symtab.Argument{
			{Name: "other", Type: types.ClassType{ClassID: "Numeric"}},
		},
		Result: types.ClassType{ClassID: "Integer"},
	})
	snap.DefineMethod(&symtab.Method{
		Name:  "value=",
		Owner: "Integer",
		Args: []symtab.Argument{
			{Name: "v", Type: types.ClassType{ClassID: "Integer"}},
		},
		Result: types.ClassType{ClassID: "NilClass"},
	})
	snap.DefineMethod(&symtab.Method{
		Name:  "+",
		Owner: "LongInt",
		Args: []symtab.Argument{
			{Name: "other", Type: types.ClassType{ClassID: "Numeric"}},
		},
		Result: types.ClassType{ClassID: "LongInt"},
	})
	snap.DefineMethod(&symtab.Method{
		Name:  "each",
		Owner: "Integer",
		Args: []symtab.Argument{
			{Name: "blk", IsBlock: true, Type: types.AppliedType{
				ClassID: "Proc",
				Args:    []types.Type{types.ClassType{ClassID: "Integer"}, types.ClassType{ClassID: "NilClass"}},
			}},
		},
		Result: types.ClassType{ClassID: "Integer"},
	})
	snap.DefineMethod(&symtab.Method{
		Name:        "must",
		Owner:       "T",
		IsSingleton: true,
		Args:        []symtab.Argument{{Name: "x", Type: types.Untyped{}}},
		Result:      types.Untyped{},
		Intrinsic:   &symtab.IntrinsicRef{OwnerClassID: "T", IsSingleton: true, MethodName: "must"},
	})
	snap.DefineMethod(&symtab.Method{
		Name:  "configure",
		Owner: "Integer",
		Args: []symtab.Argument{
			{Name: "label", Type: types.ClassType{ClassID: "String"}},
			{Name: "verbose", IsKeyword: true, IsDefault: true, Type: types.ClassType{ClassID: "Object"}},
		},
		Result: types.ClassType{ClassID: "NilClass"},
	})
	return snap
}

func newTestDispatcher() *Dispatcher {
	return New(newTestSnapshot(), config.DefaultPolicy())
}

func callArgs(name string, args ...Arg) DispatchArgs {
	numPos := 0
	for _, a := range args {
		if !a.IsKeyword {
			numPos++
		}
	}
	return DispatchArgs{Name: name, NumPosArgs: numPos, Args: args, Block: Block{Arity: -1}}
}

func errorCodes(items []*diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(items))
	for i, it := range items {
		out[i] = it.Code
	}
	return out
}

func TestDispatchUnknownMethodWithFuzzyMatch(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "String"}, callArgs("lenght"))

	if _, ok := result.ReturnType.(types.Untyped); !ok {
		t.Errorf("unknown method should return Untyped, got %s", result.ReturnType.String())
	}
	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.UnknownMethod {
		t.Fatalf("expected one UnknownMethod diagnostic, got %v", errorCodes(items))
	}
	if len(items[0].Notes) == 0 {
		t.Errorf("expected a fuzzy-match suggestion note for `lenght` -> `length`")
	}
}

func TestDispatchSuccessfulCallNoDiagnostics(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("+",
		Arg{Type: types.ClassType{ClassID: "Integer"}}))

	if got := result.ReturnType.String(); got != "Integer" {
		t.Errorf("return type = %s, want Integer", got)
	}
	if len(result.Main.Errors.Items()) != 0 {
		t.Errorf("expected no diagnostics, got %v", errorCodes(result.Main.Errors.Items()))
	}
}

func TestDispatchArgumentTypeMismatch(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("+",
		Arg{Type: types.ClassType{ClassID: "String"}}))

	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.MethodArgumentMismatch {
		t.Fatalf("expected one MethodArgumentMismatch, got %v", errorCodes(items))
	}
}

func TestDispatchArityMismatch(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("+"))

	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.MethodArgumentCountMismatch {
		t.Fatalf("expected one MethodArgumentCountMismatch, got %v", errorCodes(items))
	}
}

func TestDispatchTooManyPositionalArgumentsNoKeywords(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("+",
		Arg{Type: types.ClassType{ClassID: "Integer"}},
		Arg{Type: types.ClassType{ClassID: "Integer"}}))

	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.MethodArgumentCountMismatch {
		t.Fatalf("expected one MethodArgumentCountMismatch, got %v", errorCodes(items))
	}
}

func TestDispatchTooManyPositionalArgumentsWithKeywordsHintsNamedSyntax(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("configure",
		Arg{Type: types.ClassType{ClassID: "String"}},
		Arg{Type: types.ClassType{ClassID: "String"}},
		Arg{Type: types.ClassType{ClassID: "String"}}))

	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.MethodArgumentCountMismatch {
		t.Fatalf("expected one MethodArgumentCountMismatch, got %v", errorCodes(items))
	}
	if !strings.Contains(items[0].Header, "by name") {
		t.Errorf("expected has-kwargs phrasing hinting at keyword syntax, got %q", items[0].Header)
	}
}

func TestDispatchUnexpectedKeywordArgumentUsesCountMismatch(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("configure",
		Arg{Type: types.ClassType{ClassID: "String"}},
		Arg{Type: types.ClassType{ClassID: "Integer"}, IsKeyword: true, KeyName: "bogus"}))

	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.MethodArgumentCountMismatch {
		t.Fatalf("expected one MethodArgumentCountMismatch for the unrecognized keyword, got %v", errorCodes(items))
	}
}

func TestDispatchImplicitInitializeWithNoArgumentsIsSilent(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Object"}, callArgs(config.InitializeMethod))

	if _, ok := result.ReturnType.(types.Void); !ok {
		t.Errorf("implicit initialize() should return Void, got %s", result.ReturnType.String())
	}
	if len(result.Main.Errors.Items()) != 0 {
		t.Errorf("expected no diagnostics for a no-argument implicit initialize, got %v", errorCodes(result.Main.Errors.Items()))
	}
}

func TestDispatchImplicitInitializeWithArgumentsIsArityMismatch(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Object"}, callArgs(config.InitializeMethod,
		Arg{Type: types.ClassType{ClassID: "Integer"}}))

	if _, ok := result.ReturnType.(types.Void); !ok {
		t.Errorf("implicit initialize() should still return Void, got %s", result.ReturnType.String())
	}
	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.MethodArgumentCountMismatch {
		t.Fatalf("expected one MethodArgumentCountMismatch for initialize(arg), got %v", errorCodes(items))
	}
}

func TestDispatchSetterReturnsRHSType(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("value=",
		Arg{Type: types.ClassType{ClassID: "Integer"}}))

	if got := result.ReturnType.String(); got != "Integer" {
		t.Errorf("setter return type = %s, want the RHS type Integer (not %s)", got, "NilClass")
	}
}

func TestDispatchTakesNoBlockDiagnostic(t *testing.T) {
	d := newTestDispatcher()
	args := callArgs("+", Arg{Type: types.ClassType{ClassID: "Integer"}})
	args.Block = Block{Present: true, Arity: 1}
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, args)

	items := result.Main.Errors.Items()
	found := false
	for _, it := range items {
		if it.Code == diag.TakesNoBlock {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a TakesNoBlock diagnostic, got %v", errorCodes(items))
	}
}

func TestDispatchBlockNotPassedDiagnostic(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, callArgs("each"))

	items := result.Main.Errors.Items()
	found := false
	for _, it := range items {
		if it.Code == diag.BlockNotPassed {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a BlockNotPassed diagnostic, got %v", errorCodes(items))
	}
}

func TestDispatchBlockPassedSatisfiesRequirement(t *testing.T) {
	d := newTestDispatcher()
	args := callArgs("each")
	args.Block = Block{Present: true, Arity: 1}
	result := d.Dispatch(types.ClassType{ClassID: "Integer"}, args)

	for _, it := range result.Main.Errors.Items() {
		if it.Code == diag.BlockNotPassed {
			t.Errorf("a passed block should satisfy the requirement, got BlockNotPassed anyway")
		}
	}
}

func TestDispatchOrReceiverMergesBothSides(t *testing.T) {
	d := newTestDispatcher()
	receiver := types.Normalize(types.OrType{
		Left:  types.ClassType{ClassID: "Integer"},
		Right: types.ClassType{ClassID: "String"},
	})
	result := d.Dispatch(receiver, callArgs("lenght"))

	if result.SecondaryKind != SecondaryOr {
		t.Fatalf("expected an Or-merged result, got SecondaryKind=%v", result.SecondaryKind)
	}
	if result.Secondary == nil {
		t.Fatalf("expected a secondary leg")
	}
	// Both sides lack `lenght` (note the typo); both contribute an
	// UnknownMethod diagnostic and mergeOr concatenates them onto Main.
	items := result.Main.Errors.Items()
	if len(items) != 2 {
		t.Errorf("expected diagnostics from both union sides merged, got %d", len(items))
	}
}

func TestDispatchIntrinsicTMust(t *testing.T) {
	d := newTestDispatcher()
	nilable := types.Normalize(types.OrType{Left: types.ClassType{ClassID: "Integer"}, Right: types.Nil{}})
	result := d.Dispatch(types.ClassType{ClassID: "T"}, callArgs("must", Arg{Type: nilable}))

	if got := result.ReturnType.String(); got != "Integer" {
		t.Errorf("T.must(Integer|Nil) = %s, want Integer (nil stripped)", got)
	}
	if len(result.Main.Errors.Items()) != 0 {
		t.Errorf("T.must on an actually-nilable value should not warn, got %v",
			errorCodes(result.Main.Errors.Items()))
	}
}

func TestDispatchIntrinsicTMustRedundantWarns(t *testing.T) {
	d := newTestDispatcher()
	result := d.Dispatch(types.ClassType{ClassID: "T"}, callArgs("must",
		Arg{Type: types.ClassType{ClassID: "Integer"}}))

	items := result.Main.Errors.Items()
	if len(items) != 1 || items[0].Code != diag.InvalidCast {
		t.Fatalf("expected an InvalidCast diagnostic for a redundant T.must, got %v", errorCodes(items))
	}
}

func TestGetCallArgumentsClassReceiver(t *testing.T) {
	d := newTestDispatcher()
	tuple, ok := d.GetCallArguments(types.ClassType{ClassID: "Integer"}, "+")
	if !ok {
		t.Fatalf("expected GetCallArguments to find `+`")
	}
	if got := tuple.String(); got != "[Numeric]" {
		t.Errorf("GetCallArguments(Integer, +) = %s, want [Numeric]", got)
	}
}

func TestGetCallArgumentsNotFound(t *testing.T) {
	d := newTestDispatcher()
	if _, ok := d.GetCallArguments(types.ClassType{ClassID: "Integer"}, "no_such_method"); ok {
		t.Errorf("GetCallArguments should report false for an undefined method")
	}
}

func TestGetCallArgumentsUntypedReceiver(t *testing.T) {
	d := newTestDispatcher()
	tuple, ok := d.GetCallArguments(types.Untyped{}, "anything")
	if !ok {
		t.Errorf("untyped receiver should always report ok ")
	}
	if _, isUntyped := tuple.(types.Untyped); !isUntyped {
		t.Errorf("untyped receiver's call arguments should be Untyped itself, got %s", tuple.String())
	}
}

func TestGetCallArgumentsUnionIsGlb(t *testing.T) {
	d := newTestDispatcher()
	receiver := types.Normalize(types.OrType{Left: types.ClassType{ClassID: "Integer"}, Right: types.ClassType{ClassID: "LongInt"}})
	if _, isOr := receiver.(types.OrType); !isOr {
		t.Fatalf("fixture classes must stay distinct under Normalize, got %s", receiver.String())
	}
	tuple, ok := d.GetCallArguments(receiver, "+")
	if !ok {
		t.Fatalf("expected GetCallArguments to succeed for Integer|LongInt, both define `+`")
	}
	if got := tuple.String(); got != "[Numeric]" {
		t.Errorf("GetCallArguments(Integer|LongInt, +) = %s, want [Numeric]", got)
	}
}
