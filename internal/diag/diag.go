// Package diag implements the dispatch core's error taxonomy and builder.
// Diagnostics are data: constructing one never raises control flow, only
// appends to a queue the caller owns. The code+template shape is extended
// with a multi-section body, notes, and autocorrect suggestions, plus a
// RequestID field for the cross-dispatch correlation ambient concern.
package diag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/veridian-lang/veri/internal/types"
)

// Code enumerates the diagnostic taxonomy the dispatch core can emit.
type Code string

const (
	UnknownMethod                 Code = "UnknownMethod"
	MethodArgumentMismatch        Code = "MethodArgumentMismatch"
	MethodArgumentCountMismatch   Code = "MethodArgumentCountMismatch"
	BareTypeUsage                 Code = "BareTypeUsage"
	InvalidCast                   Code = "InvalidCast"
	GenericMethodConstaintUnsolved Code = "GenericMethodConstaintUnsolved"
	TakesNoBlock                  Code = "TakesNoBlock"
	BlockNotPassed                Code = "BlockNotPassed"
	ProcArityUnknown               Code = "ProcArityUnknown"
	GenericPassedAsBlock           Code = "GenericPassedAsBlock"
	UntypedSplat                   Code = "UntypedSplat"
	KeywordArgHashWithoutSplat     Code = "KeywordArgHashWithoutSplat"
	GenericArgumentCountMismatch   Code = "GenericArgumentCountMismatch"
	GenericArgumentKeywordArgs     Code = "GenericArgumentKeywordArgs"
	GenericTypeParamBoundMismatch  Code = "GenericTypeParamBoundMismatch"
	RevealType                     Code = "RevealType"
	UntypedConstantSuggestion      Code = "UntypedConstantSuggestion"
	ExpectedLiteralType            Code = "ExpectedLiteralType"
	MetaTypeDispatchCall           Code = "MetaTypeDispatchCall"
)

// Severity distinguishes hard errors from informational diagnostics
// (RevealType, UntypedConstantSuggestion are Info; everything else Error).
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

func (c Code) Severity() Severity {
	switch c {
	case RevealType, UntypedConstantSuggestion:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Autocorrect is a suggested source edit attached to a diagnostic.
type Autocorrect struct {
	Title       string
	Replacement string
}

// Diagnostic is the builder's product: a header, optional multi-line
// sections, notes, and zero or more autocorrects — all plain data, never
// a thrown error.
type Diagnostic struct {
	Code         Code
	Header       string
	Sections     []string
	Notes        []string
	Autocorrects []Autocorrect
	Loc          types.SourceRef
	RequestID    uuid.UUID
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]: %s", d.Loc.String(), d.Code, d.Header)
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n    %s", s)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s", n)
	}
	for _, a := range d.Autocorrects {
		fmt.Fprintf(&b, "\n  autocorrect: %s", a.Title)
	}
	return b.String()
}

// Builder accumulates a single diagnostic's fields before it is either
// queued or discarded, depending on the owning Queue's suppress flag.
type Builder struct {
	d Diagnostic
}

// New starts a builder for the given code/header/location.
func New(code Code, loc types.SourceRef, header string, args ...any) *Builder {
	return &Builder{d: Diagnostic{Code: code, Loc: loc, Header: fmt.Sprintf(header, args...)}}
}

func (b *Builder) Section(s string, args ...any) *Builder {
	b.d.Sections = append(b.d.Sections, fmt.Sprintf(s, args...))
	return b
}

func (b *Builder) Note(s string, args ...any) *Builder {
	b.d.Notes = append(b.d.Notes, fmt.Sprintf(s, args...))
	return b
}

func (b *Builder) Autocorrect(title, replacement string) *Builder {
	b.d.Autocorrects = append(b.d.Autocorrects, Autocorrect{Title: title, Replacement: replacement})
	return b
}

func (b *Builder) WithRequestID(id uuid.UUID) *Builder {
	b.d.RequestID = id
	return b
}

// Build finalizes the diagnostic. The returned pointer is owned by the
// caller (typically a per-dispatch Queue).
func (b *Builder) Build() *Diagnostic {
	d := b.d
	return &d
}

// Queue is the per-dispatch, append-only error vector: each dispatch
// result owns a local error vector, and the caller decides whether to
// merge it into the global queue.
type Queue struct {
	suppressed bool
	items      []*Diagnostic
}

// NewQueue constructs a queue; suppress mirrors DispatchArgs.suppress_errors.
func NewQueue(suppress bool) *Queue {
	return &Queue{suppressed: suppress}
}

// Emit appends d unless the queue is suppressed, in which case the
// diagnostic is dropped entirely and never retained.
func (q *Queue) Emit(d *Diagnostic) {
	if q.suppressed || d == nil {
		return
	}
	q.items = append(q.items, d)
}

// Items returns the queued diagnostics in emission order.
func (q *Queue) Items() []*Diagnostic { return q.items }

// Merge appends another queue's items onto this one, preserving order —
// used by the OR/AND result combinators.
func (q *Queue) Merge(other *Queue) {
	if other == nil {
		return
	}
	q.items = append(q.items, other.items...)
}

// Suppressed reports whether this queue discards everything emitted to it.
func (q *Queue) Suppressed() bool { return q.suppressed }
