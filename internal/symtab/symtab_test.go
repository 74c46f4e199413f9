package symtab

import (
	"testing"

	"github.com/veridian-lang/veri/internal/types"
)

func TestMethodArityHelpers(t *testing.T) {
	tests := []struct {
		name   string
		args   []Argument
		min    int
		max    int
		bound  bool
		pretty string
	}{
		{
			name:   "fixed arity",
			args:   []Argument{{Name: "a"}, {Name: "b"}, {Name: "blk", IsBlock: true}},
			min:    2, max: 2, bound: true, pretty: "2",
		},
		{
			name:   "optional widens the range",
			args:   []Argument{{Name: "a"}, {Name: "b", IsDefault: true}, {Name: "c", IsDefault: true}},
			min:    1, max: 3, bound: true, pretty: "1..3",
		},
		{
			name:   "rest param is unbounded",
			args:   []Argument{{Name: "a"}, {Name: "rest", IsRepeated: true}},
			min:    1, max: 0, bound: false, pretty: "1+",
		},
		{
			name:   "keyword args excluded from positional arity",
			args:   []Argument{{Name: "a"}, {Name: "k", IsKeyword: true}},
			min:    1, max: 1, bound: true, pretty: "1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Method{Args: tt.args}
			if got := m.MinArity(); got != tt.min {
				t.Errorf("MinArity() = %d, want %d", got, tt.min)
			}
			max, bounded := m.MaxArity()
			if bounded != tt.bound {
				t.Errorf("MaxArity() bounded = %v, want %v", bounded, tt.bound)
			}
			if bounded && max != tt.max {
				t.Errorf("MaxArity() = %d, want %d", max, tt.max)
			}
			if got := m.PrettyArity(); got != tt.pretty {
				t.Errorf("PrettyArity() = %s, want %s", got, tt.pretty)
			}
		})
	}
}

func TestNonBlockArgsAndBlockArg(t *testing.T) {
	blk := Argument{Name: "blk", IsBlock: true}
	m := &Method{Args: []Argument{{Name: "a"}, {Name: "b"}, blk}}

	nb := m.NonBlockArgs()
	if len(nb) != 2 {
		t.Fatalf("NonBlockArgs() len = %d, want 2", len(nb))
	}
	got, ok := m.BlockArg()
	if !ok || got.Name != "blk" {
		t.Errorf("BlockArg() = %v, %v, want blk, true", got, ok)
	}

	noBlock := &Method{Args: []Argument{{Name: "a"}}}
	if _, ok := noBlock.BlockArg(); ok {
		t.Errorf("BlockArg() should not be found when the last formal isn't a block")
	}
	if len(noBlock.NonBlockArgs()) != 1 {
		t.Errorf("NonBlockArgs() should return all formals when none is a block")
	}

	empty := &Method{}
	if len(empty.NonBlockArgs()) != 0 {
		t.Errorf("NonBlockArgs() of a method with no args should be empty")
	}
}

func TestSnapshotFindMemberTransitive(t *testing.T) {
	snap := NewSnapshot()
	snap.DefineClass(ClassMeta{ClassID: "Integer", DerivesFromList: []string{"Numeric"}})
	snap.DefineClass(ClassMeta{ClassID: "Numeric", DerivesFromList: []string{"Object"}})
	snap.DefineClass(ClassMeta{ClassID: "Object"})
	snap.DefineMethod(&Method{Name: "to_s", Owner: "Object", Result: types.ClassType{ClassID: "String"}})
	snap.DefineMethod(&Method{Name: "+", Owner: "Integer", Result: types.ClassType{ClassID: "Integer"}})

	if m, ok := snap.FindMember("Integer", "+"); !ok || m.Name != "+" {
		t.Errorf("FindMember(Integer, +) = %v, %v", m, ok)
	}
	if _, ok := snap.FindMember("Integer", "to_s"); ok {
		t.Errorf("FindMember should not search ancestors")
	}
	if m, ok := snap.FindMemberTransitive("Integer", "to_s"); !ok || m.Owner != "Object" {
		t.Errorf("FindMemberTransitive(Integer, to_s) = %v, %v, want found on Object", m, ok)
	}
	if _, ok := snap.FindMemberTransitive("Integer", "no_such_method"); ok {
		t.Errorf("FindMemberTransitive should fail for an undefined method")
	}
}

func TestSnapshotFindMemberTransitiveCyclesTolerated(t *testing.T) {
	snap := NewSnapshot()
	// A deliberately cyclic ancestry shouldn't infinite-loop.
	snap.DefineClass(ClassMeta{ClassID: "A", DerivesFromList: []string{"B"}})
	snap.DefineClass(ClassMeta{ClassID: "B", DerivesFromList: []string{"A"}})
	if _, ok := snap.FindMemberTransitive("A", "anything"); ok {
		t.Errorf("expected not found, not a hang or crash")
	}
}

func TestSnapshotFuzzyMatch(t *testing.T) {
	snap := NewSnapshot()
	snap.DefineMethod(&Method{Name: "length", Owner: "String"})
	snap.DefineMethod(&Method{Name: "lenght", Owner: "String"})
	snap.DefineMethod(&Method{Name: "upcase", Owner: "String"})

	suggestions := snap.FindMemberFuzzyMatch("String", "lenght")
	found := map[string]bool{}
	for _, s := range suggestions {
		found[s] = true
	}
	if !found["length"] {
		t.Errorf("expected %v to suggest length (distance 2)", suggestions)
	}
	if found["lenght"] {
		t.Errorf("should not suggest the exact name being looked up")
	}
	if found["upcase"] {
		t.Errorf("upcase is too far from lenght to be suggested, got %v", suggestions)
	}
}

func TestSnapshotUnderlying(t *testing.T) {
	snap := NewSnapshot()
	lit := types.LiteralType{Kind: types.LiteralInt, Value: int64(1), UnderlyingName: "Integer"}
	u, ok := snap.Underlying(lit)
	if !ok || u.String() != "Integer" {
		t.Errorf("Underlying(1) = %v, %v, want Integer, true", u, ok)
	}
	if _, ok := snap.Underlying(types.ClassType{ClassID: "Integer"}); ok {
		t.Errorf("Underlying of a plain ClassType should report false (no proxy to decay)")
	}
}

func TestSnapshotDerivesFromUnknownClass(t *testing.T) {
	snap := NewSnapshot()
	if got := snap.DerivesFrom("Ghost"); got != nil {
		t.Errorf("DerivesFrom of an undefined class should be nil, got %v", got)
	}
}

func TestRootObjectHasModuleMethod(t *testing.T) {
	snap := NewSnapshot()
	snap.DefineClass(ClassMeta{ClassID: "Object", RequiredAncestorsTransitive: []string{"Kernel"}})
	snap.DefineClass(ClassMeta{ClassID: "Kernel", DerivesFromList: []string{"BasicKernel"}})
	snap.DefineClass(ClassMeta{ClassID: "BasicKernel"})
	snap.DefineMethod(&Method{Name: "puts", Owner: "BasicKernel"})

	owner, ok := snap.RootObjectHasModuleMethod("puts")
	if !ok {
		t.Fatal("expected puts to be found via Object's required ancestors")
	}
	if owner != "BasicKernel" {
		t.Errorf("owner = %q, want BasicKernel (the class that actually defines it)", owner)
	}

	if _, ok := snap.RootObjectHasModuleMethod("no_such_method"); ok {
		t.Error("expected no_such_method to be unresolvable")
	}
}

func TestRootObjectHasModuleMethodNoObjectClass(t *testing.T) {
	snap := NewSnapshot()
	if _, ok := snap.RootObjectHasModuleMethod("anything"); ok {
		t.Error("expected false when no Object class is registered at all")
	}
}
