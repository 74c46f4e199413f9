package diag

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/veridian-lang/veri/internal/types"
)

func TestCodeSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{RevealType, SeverityInfo},
		{UntypedConstantSuggestion, SeverityInfo},
		{UnknownMethod, SeverityError},
		{MethodArgumentMismatch, SeverityError},
		{MetaTypeDispatchCall, SeverityError},
	}
	for _, tt := range tests {
		if got := tt.code.Severity(); got != tt.want {
			t.Errorf("%s.Severity() = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestBuilderProducesFullyPopulatedDiagnostic(t *testing.T) {
	id := uuid.New()
	loc := types.SourceRef{File: "a.rb", Line: 3, Col: 5}

	d := New(UnknownMethod, loc, "no method `%s` on `%s`", "foo", "Integer").
		Section("did you mean `fooBar`?").
		Note("Integer defines fooBar at line 10").
		Autocorrect("rename to fooBar", "fooBar").
		WithRequestID(id).
		Build()

	if d.Code != UnknownMethod {
		t.Errorf("Code = %s, want UnknownMethod", d.Code)
	}
	if d.Header != "no method `foo` on `Integer`" {
		t.Errorf("Header = %q", d.Header)
	}
	if len(d.Sections) != 1 || len(d.Notes) != 1 || len(d.Autocorrects) != 1 {
		t.Fatalf("expected one section/note/autocorrect, got %+v", d)
	}
	if d.RequestID != id {
		t.Errorf("RequestID not propagated")
	}

	msg := d.Error()
	for _, want := range []string{"a.rb:3:5", "UnknownMethod", "no method `foo`", "did you mean", "note:", "autocorrect:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestBuilderIsIndependentPerBuild(t *testing.T) {
	b := New(RevealType, types.SourceRef{}, "revealed type: %s", "Integer")
	first := b.Build()
	b.Note("a second note added after the first Build")
	second := b.Build()

	if len(first.Notes) != 0 {
		t.Errorf("Build() should snapshot at call time; mutating the builder afterward must not retroactively change a prior Build's result, got %d notes", len(first.Notes))
	}
	if len(second.Notes) != 1 {
		t.Errorf("the second Build() should see the note added before it, got %d", len(second.Notes))
	}
}

func TestQueueSuppressionDropsEverything(t *testing.T) {
	q := NewQueue(true)
	q.Emit(New(UnknownMethod, types.SourceRef{}, "boom").Build())
	if len(q.Items()) != 0 {
		t.Errorf("a suppressed queue must retain nothing, got %d items", len(q.Items()))
	}
	if !q.Suppressed() {
		t.Errorf("Suppressed() should report true")
	}
}

func TestQueueEmitOrderAndNilSkip(t *testing.T) {
	q := NewQueue(false)
	first := New(UnknownMethod, types.SourceRef{}, "first").Build()
	second := New(BareTypeUsage, types.SourceRef{}, "second").Build()
	q.Emit(first)
	q.Emit(nil)
	q.Emit(second)

	items := q.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items (nil skipped), got %d", len(items))
	}
	if items[0] != first || items[1] != second {
		t.Errorf("Emit should preserve emission order")
	}
}

func TestQueueMerge(t *testing.T) {
	a := NewQueue(false)
	a.Emit(New(UnknownMethod, types.SourceRef{}, "a").Build())

	b := NewQueue(false)
	b.Emit(New(BareTypeUsage, types.SourceRef{}, "b").Build())

	a.Merge(b)
	if len(a.Items()) != 2 {
		t.Fatalf("Merge should append, got %d items", len(a.Items()))
	}
	a.Merge(nil)
	if len(a.Items()) != 2 {
		t.Errorf("Merge(nil) should be a no-op, got %d items", len(a.Items()))
	}
}

func TestSourceRefString(t *testing.T) {
	if got := (types.SourceRef{}).String(); got != "<unknown>" {
		t.Errorf("zero SourceRef.String() = %s, want <unknown>", got)
	}
	loc := types.SourceRef{File: "x.rb", Line: 1, Col: 2}
	if got := loc.String(); got != "x.rb:1:2" {
		t.Errorf("SourceRef.String() = %s, want x.rb:1:2", got)
	}
}
