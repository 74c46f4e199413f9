// scenario.go defines the YAML-serializable shape of a dispatch scenario
// file: a symbol table snapshot, a receiver, a call, and its arguments —
// the harness for literal-input end-to-end scenarios, following the
// small serializable DSL pattern used elsewhere for marshaling core
// value types to and from JSON/YAML.
package main

import (
	"fmt"

	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

// TypeSpec is the wire shape for any types.Type variant, tagged by Kind.
type TypeSpec struct {
	Kind      string      `yaml:"kind"`
	ClassID   string      `yaml:"class,omitempty"`
	Args      []TypeSpec  `yaml:"args,omitempty"`
	Keys      []string    `yaml:"keys,omitempty"`
	Values    []TypeSpec  `yaml:"values,omitempty"`
	Elems     []TypeSpec  `yaml:"elems,omitempty"`
	Left      *TypeSpec   `yaml:"left,omitempty"`
	Right     *TypeSpec   `yaml:"right,omitempty"`
	Wrapped   *TypeSpec   `yaml:"wrapped,omitempty"`
	LitKind   string      `yaml:"lit_kind,omitempty"`
	LitValue  any         `yaml:"value,omitempty"`
	Underlying string     `yaml:"underlying,omitempty"`
}

// ToType converts a parsed TypeSpec into a types.Type, erroring on an
// unrecognized kind rather than silently defaulting — a scenario file's
// type shapes are meant to be exact.
func (s TypeSpec) ToType() (types.Type, error) {
	switch s.Kind {
	case "class":
		return types.ClassType{ClassID: s.ClassID}, nil
	case "applied":
		args, err := toTypeSlice(s.Args)
		if err != nil {
			return nil, err
		}
		return types.AppliedType{ClassID: s.ClassID, Args: args}, nil
	case "literal":
		kind, err := literalKind(s.LitKind)
		if err != nil {
			return nil, err
		}
		return types.LiteralType{Kind: kind, Value: s.LitValue, UnderlyingName: s.Underlying}, nil
	case "shape":
		if len(s.Keys) != len(s.Values) {
			return nil, fmt.Errorf("shape: %d keys but %d values", len(s.Keys), len(s.Values))
		}
		keys := make([]types.LiteralType, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = types.LiteralType{Kind: types.LiteralSymbol, Value: k}
		}
		values, err := toTypeSlice(s.Values)
		if err != nil {
			return nil, err
		}
		return types.ShapeType{Keys: keys, Values: values}, nil
	case "tuple":
		elems, err := toTypeSlice(s.Elems)
		if err != nil {
			return nil, err
		}
		return types.TupleType{Elems: elems}, nil
	case "or":
		l, r, err := leftRight(s)
		if err != nil {
			return nil, err
		}
		return types.Normalize(types.OrType{Left: l, Right: r}), nil
	case "and":
		l, r, err := leftRight(s)
		if err != nil {
			return nil, err
		}
		return types.Normalize(types.AndType{Left: l, Right: r}), nil
	case "meta":
		if s.Wrapped == nil {
			return nil, fmt.Errorf("meta: missing wrapped type")
		}
		w, err := s.Wrapped.ToType()
		if err != nil {
			return nil, err
		}
		return types.MetaType{Wrapped: w}, nil
	case "nil":
		return types.Nil{}, nil
	case "untyped":
		return types.Untyped{}, nil
	case "void":
		return types.Void{}, nil
	case "bottom":
		return types.Bottom{}, nil
	case "top":
		return types.Top{}, nil
	default:
		return nil, fmt.Errorf("unrecognized type kind %q", s.Kind)
	}
}

func leftRight(s TypeSpec) (types.Type, types.Type, error) {
	if s.Left == nil || s.Right == nil {
		return nil, nil, fmt.Errorf("%s: missing left/right", s.Kind)
	}
	l, err := s.Left.ToType()
	if err != nil {
		return nil, nil, err
	}
	r, err := s.Right.ToType()
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func toTypeSlice(specs []TypeSpec) ([]types.Type, error) {
	out := make([]types.Type, len(specs))
	for i, s := range specs {
		t, err := s.ToType()
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func literalKind(s string) (types.LiteralKind, error) {
	switch s {
	case "int":
		return types.LiteralInt, nil
	case "float":
		return types.LiteralFloat, nil
	case "string":
		return types.LiteralString, nil
	case "symbol":
		return types.LiteralSymbol, nil
	case "bool":
		return types.LiteralBool, nil
	default:
		return 0, fmt.Errorf("unrecognized literal kind %q", s)
	}
}

// ArgSpec is one call argument in wire form.
type ArgSpec struct {
	Type    TypeSpec `yaml:"type"`
	Key     string   `yaml:"key,omitempty"`
	Keyword bool     `yaml:"keyword,omitempty"`
}

// BlockSpec describes an attached block's known shape.
type BlockSpec struct {
	Arity      int        `yaml:"arity"`
	ParamTypes []TypeSpec `yaml:"param_types,omitempty"`
	ReturnType *TypeSpec  `yaml:"return_type,omitempty"`
}

// ArgumentSpec is a method formal in wire form.
type ArgumentSpec struct {
	Name       string   `yaml:"name"`
	Keyword    bool     `yaml:"keyword,omitempty"`
	Default    bool     `yaml:"default,omitempty"`
	Repeated   bool     `yaml:"repeated,omitempty"`
	Block      bool     `yaml:"block,omitempty"`
	Type       TypeSpec `yaml:"type"`
}

// IntrinsicSpec names a built-in intrinsic triple a method is wired to,
// looked up by equality on the (owner, singleton, name) triple. Absent
// from a MethodSpec, the method has no intrinsic.
type IntrinsicSpec struct {
	Owner     string `yaml:"owner"`
	Singleton bool   `yaml:"singleton,omitempty"`
	Name      string `yaml:"name"`
}

// MethodSpec is a symbol table method entry in wire form.
type MethodSpec struct {
	Name          string         `yaml:"name"`
	Owner         string         `yaml:"owner"`
	Singleton     bool           `yaml:"singleton,omitempty"`
	Args          []ArgumentSpec `yaml:"args,omitempty"`
	Result        TypeSpec       `yaml:"result"`
	GenericParams []string       `yaml:"generic_params,omitempty"`
	SymbolID      int            `yaml:"symbol_id"`
	Intrinsic     *IntrinsicSpec `yaml:"intrinsic,omitempty"`
}

// ClassSpec is a symbol table class entry in wire form.
type ClassSpec struct {
	ID             string   `yaml:"id"`
	DerivesFrom    []string `yaml:"derives_from,omitempty"`
	RequiredAncestors []string `yaml:"required_ancestors,omitempty"`
	AttachedClass  string   `yaml:"attached_class,omitempty"`
	IsSingleton    bool     `yaml:"is_singleton,omitempty"`
}

// Scenario is a whole scenario file: a snapshot plus one call to dispatch.
type Scenario struct {
	Classes  []ClassSpec  `yaml:"classes"`
	Methods  []MethodSpec `yaml:"methods"`
	Receiver TypeSpec     `yaml:"receiver"`
	Call     string       `yaml:"call"`
	Args     []ArgSpec    `yaml:"args,omitempty"`
	Block    *BlockSpec   `yaml:"block,omitempty"`
}

// BuildSnapshot materializes the scenario's symbol table entries.
func (sc Scenario) BuildSnapshot() (*symtab.Snapshot, error) {
	snap := symtab.NewSnapshot()
	for _, cs := range sc.Classes {
		snap.DefineClass(symtab.ClassMeta{
			ClassID:                     cs.ID,
			DerivesFromList:             cs.DerivesFrom,
			RequiredAncestorsTransitive: cs.RequiredAncestors,
			AttachedClass:               cs.AttachedClass,
			IsSingletonClass:            cs.IsSingleton,
		})
	}
	for i, ms := range sc.Methods {
		args := make([]symtab.Argument, len(ms.Args))
		for j, as := range ms.Args {
			t, err := as.Type.ToType()
			if err != nil {
				return nil, fmt.Errorf("method %s arg %d: %w", ms.Name, j, err)
			}
			args[j] = symtab.Argument{
				Name: as.Name, IsKeyword: as.Keyword, IsDefault: as.Default,
				IsRepeated: as.Repeated, IsBlock: as.Block, Type: t,
			}
		}
		result, err := ms.Result.ToType()
		if err != nil {
			return nil, fmt.Errorf("method %s result: %w", ms.Name, err)
		}
		symbolID := ms.SymbolID
		if symbolID == 0 {
			symbolID = i
		}
		var intrinsic *symtab.IntrinsicRef
		if ms.Intrinsic != nil {
			intrinsic = &symtab.IntrinsicRef{
				OwnerClassID: ms.Intrinsic.Owner,
				IsSingleton:  ms.Intrinsic.Singleton,
				MethodName:   ms.Intrinsic.Name,
			}
		}
		snap.DefineMethod(&symtab.Method{
			Name: ms.Name, Owner: ms.Owner, IsSingleton: ms.Singleton,
			Args: args, Result: result, TypeArguments: ms.GenericParams,
			IsGenericMethod: len(ms.GenericParams) > 0, SymbolID: symbolID,
			Intrinsic: intrinsic,
		})
	}
	return snap, nil
}
