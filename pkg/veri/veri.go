// Package veri is the embeddable public API over the dispatch core: a
// thin re-export of internal/dispatch and its collaborators, so an
// embedder (an IDE plugin, a CI type-checker) depends
// on one stable import path instead of reaching into internal/.
package veri

import (
	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/dispatch"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// Re-exported type aliases so callers never import internal/ directly.
type (
	Type           = types.Type
	ClassType      = types.ClassType
	AppliedType    = types.AppliedType
	LiteralType    = types.LiteralType
	ShapeType      = types.ShapeType
	TupleType      = types.TupleType
	OrType         = types.OrType
	AndType        = types.AndType
	MetaType       = types.MetaType
	SourceRef      = types.SourceRef
	Diagnostic     = diag.Diagnostic
	Policy         = config.Policy
	Table          = symtab.Table
	Snapshot       = symtab.Snapshot
	Method         = symtab.Method
	Argument       = symtab.Argument
	ClassMeta      = symtab.ClassMeta
	DispatchArgs   = dispatch.DispatchArgs
	DispatchResult = dispatch.DispatchResult
	Block          = dispatch.Block
	Arg            = dispatch.Arg
	Locs           = dispatch.Locs
)

// NewSnapshot constructs an empty, ready-to-populate in-memory symbol
// table — the default embeddable Table implementation.
func NewSnapshot() *Snapshot { return symtab.NewSnapshot() }

// DefaultPolicy returns the documented default policy knobs.
func DefaultPolicy() Policy { return config.DefaultPolicy() }

// LoadPolicy reads policy knobs from a YAML file, defaulting unset
// fields to DefaultPolicy.
func LoadPolicy(path string) (Policy, error) { return config.LoadPolicy(path) }

// Checker is the embeddable entry point: a dispatcher bound to a symbol
// table and a policy.
type Checker struct {
	d *dispatch.Dispatcher
}

// NewChecker constructs a Checker over the given table and policy.
func NewChecker(table Table, policy Policy) *Checker {
	return &Checker{d: dispatch.New(table, policy)}
}

// RegisterIntrinsic exposes the dispatcher's intrinsic registry to
// embedders that define their own built-in classes beyond the standard
// library the core ships with.
func (c *Checker) RegisterIntrinsic(ref symtab.IntrinsicRef, h dispatch.IntrinsicHandler) {
	c.d.RegisterIntrinsic(ref, h)
}

// Dispatch resolves a single call against receiver, matching
// internal/dispatch.Dispatcher.Dispatch's contract exactly.
func (c *Checker) Dispatch(receiver Type, args DispatchArgs) DispatchResult {
	return c.d.Dispatch(receiver, args)
}

// Diagnostics flattens every diagnostic recorded across a DispatchResult's
// Main and (if present) Secondary component, in emission order.
func Diagnostics(r DispatchResult) []*Diagnostic {
	var out []*Diagnostic
	if r.Main.Errors != nil {
		out = append(out, r.Main.Errors.Items()...)
	}
	if r.Secondary != nil && r.Secondary.Errors != nil {
		out = append(out, r.Secondary.Errors.Items()...)
	}
	return out
}
