// Package dispatch implements the method dispatch core: given a receiver
// type, a call's positional/keyword argument types, and an optional
// block, it resolves the call against the type lattice and produces a
// return type, constraints on inferred type variables, and a stream of
// diagnostics. This is the package's busiest file: the shared request/
// response types every other file in the package builds on.
package dispatch

import (
	"github.com/google/uuid"
	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/constraint"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// Locs bundles the source ranges a dispatch carries purely for
// diagnostics.
type Locs struct {
	File     string
	Call     types.SourceRef
	Receiver types.SourceRef
	Args     []types.SourceRef
}

// ArgLoc returns the location for argument index i, or the call location
// if none was recorded.
func (l Locs) ArgLoc(i int) types.SourceRef {
	if i >= 0 && i < len(l.Args) {
		return l.Args[i]
	}
	return l.Call
}

// Block is a handle to an attached block, carrying its parsed arity and
// declared parameter/return types when known (a bare Proc has Arity -1).
type Block struct {
	Present    bool
	Arity      int
	ParamTypes []types.Type
	ReturnType types.Type
}

// Arg is one actual argument: its type plus, for a keyword argument, the
// keyword's name (one Arg carries both the name and the value's type).
type Arg struct {
	Type      types.Type
	KeyName   string // non-empty for a named keyword slot; empty on a kwsplat
	IsKeyword bool
}

// DispatchArgs is the call input.
type DispatchArgs struct {
	Name          string
	Locs          Locs
	NumPosArgs    int
	Args          []Arg // positional first, then one IsKeyword slot per keyword argument; a kwsplat is an IsKeyword slot with no KeyName
	ThisType      types.Type
	SelfType      types.Type
	FullType      types.Type
	Block         Block
	SuppressErrors bool
	OriginForUninitialized types.SourceRef
	RequestID     uuid.UUID
}

// withReceiver fills ThisType/SelfType/FullType the first time a call
// enters Dispatch; SelfType and FullType are threaded through unchanged
// during union/intersection recursion so `self` keeps resolving to the
// original undecomposed receiver.
func (a DispatchArgs) withReceiver(t types.Type) DispatchArgs {
	a.ThisType = t
	if a.SelfType == nil {
		a.SelfType = t
	}
	if a.FullType == nil {
		a.FullType = t
	}
	return a
}

// DispatchComponent is one resolved leg of a DispatchResult.
type DispatchComponent struct {
	Receiver        types.Type
	Method          *symtab.Method
	Constraint      *constraint.TypeConstraint
	BlockPreType    types.Type
	BlockReturnType types.Type
	BlockSpec       *Block
	Errors          *diag.Queue
	SendType        types.Type // the type actually substituted for self at the send site
}

// SecondaryKind distinguishes AND- from OR-joined multi-component results.
type SecondaryKind int

const (
	NoSecondary SecondaryKind = iota
	SecondaryAnd
	SecondaryOr
)

// DispatchResult is the call output.
type DispatchResult struct {
	ReturnType    types.Type
	Main          DispatchComponent
	Secondary     *DispatchComponent
	SecondaryKind SecondaryKind
}

// Dispatcher holds the process-wide read-only collaborators a dispatch
// needs: the symbol table, the subtyping resolver it satisfies, policy
// knobs, and the static intrinsic registry.
type Dispatcher struct {
	Table     symtab.Table
	Policy    config.Policy
	intrinsics map[symtab.IntrinsicRef]IntrinsicHandler
}

// New constructs a Dispatcher over a symbol table and policy, with the
// built-in intrinsic registry pre-populated.
func New(table symtab.Table, policy config.Policy) *Dispatcher {
	d := &Dispatcher{Table: table, Policy: policy, intrinsics: map[symtab.IntrinsicRef]IntrinsicHandler{}}
	registerBuiltinIntrinsics(d)
	return d
}

// RegisterIntrinsic adds (or overrides) a handler for the given triple —
// exposed for tests and embedders that extend the registry (:
// "a static table of (owner_class_id, instance|singleton, method_name,
// handler) tuples registered once at startup").
func (d *Dispatcher) RegisterIntrinsic(ref symtab.IntrinsicRef, h IntrinsicHandler) {
	d.intrinsics[ref] = h
}

func (d *Dispatcher) lookupIntrinsic(ref *symtab.IntrinsicRef) (IntrinsicHandler, bool) {
	if ref == nil {
		return nil, false
	}
	h, ok := d.intrinsics[*ref]
	return h, ok
}
