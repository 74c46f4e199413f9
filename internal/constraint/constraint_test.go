package constraint

import (
	"testing"

	"github.com/veridian-lang/veri/internal/types"
)

func TestEmptyIsFrozenAndShared(t *testing.T) {
	a := Empty()
	b := Empty()
	if a != b {
		t.Errorf("Empty() should return the same process-wide singleton each call")
	}
	if !a.IsFrozen() {
		t.Errorf("Empty() constraint should report frozen")
	}
	a.AddUpperBound("T", types.ClassType{ClassID: "Integer"})
	if got := a.Bounds("T"); got.Upper != nil {
		t.Errorf("mutating the frozen empty constraint should be a no-op, got %v", got.Upper)
	}
}

func TestNewDeclaresDomain(t *testing.T) {
	c := New("T", "U")
	domain := c.Domain()
	if len(domain) != 2 || domain[0] != "T" || domain[1] != "U" {
		t.Errorf("Domain() = %v, want [T U] (sorted)", domain)
	}
	c.Declare("V")
	if len(c.Domain()) != 3 {
		t.Errorf("Declare should extend the domain")
	}
	c.Declare("T") // re-declaring an existing param is a no-op
	if len(c.Domain()) != 3 {
		t.Errorf("re-declaring an existing param should not duplicate it")
	}
}

func TestAddUpperBoundOutsideDomainIgnored(t *testing.T) {
	c := New("T")
	c.AddUpperBound("U", types.ClassType{ClassID: "Integer"}) // U never declared
	if got := c.Bounds("U"); got.Upper != nil {
		t.Errorf("bound on an undeclared parameter should be ignored")
	}
}

func TestAddUpperBoundUnionsAcrossCalls(t *testing.T) {
	c := New("T")
	c.AddUpperBound("T", types.ClassType{ClassID: "Integer"})
	c.AddUpperBound("T", types.ClassType{ClassID: "String"})
	got := c.Bounds("T").Upper
	if got.String() != "Integer | String" {
		t.Errorf("Upper bound = %s, want Integer | String", got.String())
	}
}

func TestSolveUnconstrainedParamIsUnsolved(t *testing.T) {
	c := New("T")
	result := c.Solve(nil)
	if len(result.Unsolved) != 1 || result.Unsolved[0] != "T" {
		t.Errorf("Unsolved = %v, want [T]", result.Unsolved)
	}
	if _, ok := result.Subst["T"].(types.Untyped); !ok {
		t.Errorf("an unsolved param should substitute to Untyped")
	}
}

func TestSolveUpperOnlyOrLowerOnly(t *testing.T) {
	c := New("T", "U")
	c.AddUpperBound("T", types.ClassType{ClassID: "Integer"})
	c.AddLowerBound("U", types.ClassType{ClassID: "String"})
	result := c.Solve(nil)
	if got := result.Subst["T"].String(); got != "Integer" {
		t.Errorf("Subst[T] = %s, want Integer", got)
	}
	if got := result.Subst["U"].String(); got != "String" {
		t.Errorf("Subst[U] = %s, want String", got)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("no conflicts expected, got %v", result.Conflicts)
	}
}

func TestSolvePrefersAgreeingLowerBound(t *testing.T) {
	r := numericResolver()
	c := New("T")
	c.AddUpperBound("T", types.ClassType{ClassID: "Numeric"})
	c.AddLowerBound("T", types.ClassType{ClassID: "Integer"})
	result := c.Solve(r)
	if got := result.Subst["T"].String(); got != "Integer" {
		t.Errorf("Subst[T] = %s, want the narrower lower bound Integer", got)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflict when lower <: upper, got %v", result.Conflicts)
	}
}

func TestSolveConflictWhenBoundsDisagree(t *testing.T) {
	c := New("T")
	c.AddUpperBound("T", types.ClassType{ClassID: "String"})
	c.AddLowerBound("T", types.ClassType{ClassID: "Integer"})
	result := c.Solve(numericResolver())
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %d", len(result.Conflicts))
	}
	conflict := result.Conflicts[0]
	if conflict.Param != "T" {
		t.Errorf("conflict param = %s, want T", conflict.Param)
	}
	if conflict.Error() == "" {
		t.Errorf("Conflict.Error() should produce a readable message")
	}
	if _, ok := result.Subst["T"].(types.Untyped); !ok {
		t.Errorf("a conflicting param should still substitute to Untyped rather than abort the whole solve")
	}
}

func TestReplaceSwapsBoundsWholesale(t *testing.T) {
	original := New("T")
	original.AddUpperBound("T", types.ClassType{ClassID: "Integer"})

	replacement := New("U")
	replacement.AddUpperBound("U", types.ClassType{ClassID: "String"})

	original.Replace(replacement)
	if len(original.Domain()) != 1 || original.Domain()[0] != "U" {
		t.Errorf("Replace should swap domain wholesale, got %v", original.Domain())
	}
	if got := original.Bounds("U").Upper.String(); got != "String" {
		t.Errorf("Replace should swap bounds, got %s", got)
	}
}

func TestReplaceOnFrozenIsNoOp(t *testing.T) {
	frozen := Empty()
	replacement := New("T")
	replacement.AddUpperBound("T", types.ClassType{ClassID: "Integer"})
	frozen.Replace(replacement)
	if len(frozen.Domain()) != 0 {
		t.Errorf("Replace on the frozen singleton must not mutate it")
	}
}

func TestInstantiateAppliesSubstitution(t *testing.T) {
	c := New("T")
	c.AddUpperBound("T", types.ClassType{ClassID: "Integer"})
	result := c.Solve(nil)
	applied := Instantiate(types.AppliedType{ClassID: "Array", Args: []types.Type{types.TVar{ID: "T"}}}, result)
	if got := applied.String(); got != "Array<Integer>" {
		t.Errorf("Instantiate = %s, want Array<Integer>", got)
	}
}

// numericResolver provides a tiny ancestry chain for tests that need real
// subtyping, local to this test file to avoid importing internal/symtab.
type testResolver struct{ ancestors map[string][]string }

func (r testResolver) DerivesFrom(classID string) []string { return r.ancestors[classID] }
func (r testResolver) Underlying(t types.Type) (types.Type, bool) { return nil, false }

func numericResolver() testResolver {
	return testResolver{ancestors: map[string][]string{
		"Integer": {"Numeric"},
	}}
}
