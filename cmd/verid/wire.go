// wire.go defines the JSON wire shapes verid's line-delimited protocol
// exchanges — the daemon analogue of cmd/veric's YAML scenario.go, a
// subset of its TypeSpec shape with JSON tags since editor clients speak
// JSON over the socket rather than reading scenario files from disk.
package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/veridian-lang/veri/internal/dispatch"
	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/types"
)

type typeWire struct {
	Kind     string     `json:"kind"`
	ClassID  string     `json:"class,omitempty"`
	Args     []typeWire `json:"args,omitempty"`
	Keys     []string   `json:"keys,omitempty"`
	Values   []typeWire `json:"values,omitempty"`
	Elems    []typeWire `json:"elems,omitempty"`
	Left     *typeWire  `json:"left,omitempty"`
	Right    *typeWire  `json:"right,omitempty"`
	Wrapped  *typeWire  `json:"wrapped,omitempty"`
	LitKind  string     `json:"lit_kind,omitempty"`
	LitValue any        `json:"value,omitempty"`
}

func (w typeWire) toType() (types.Type, error) {
	switch w.Kind {
	case "class":
		return types.ClassType{ClassID: w.ClassID}, nil
	case "applied":
		args, err := toTypeSliceWire(w.Args)
		if err != nil {
			return nil, err
		}
		return types.AppliedType{ClassID: w.ClassID, Args: args}, nil
	case "literal":
		kind, err := literalKindWire(w.LitKind)
		if err != nil {
			return nil, err
		}
		return types.LiteralType{Kind: kind, Value: w.LitValue}, nil
	case "shape":
		if len(w.Keys) != len(w.Values) {
			return nil, fmt.Errorf("shape: key/value count mismatch")
		}
		keys := make([]types.LiteralType, len(w.Keys))
		for i, k := range w.Keys {
			keys[i] = types.LiteralType{Kind: types.LiteralSymbol, Value: k}
		}
		values, err := toTypeSliceWire(w.Values)
		if err != nil {
			return nil, err
		}
		return types.ShapeType{Keys: keys, Values: values}, nil
	case "tuple":
		elems, err := toTypeSliceWire(w.Elems)
		if err != nil {
			return nil, err
		}
		return types.TupleType{Elems: elems}, nil
	case "nil":
		return types.Nil{}, nil
	case "untyped", "":
		return types.Untyped{}, nil
	case "void":
		return types.Void{}, nil
	default:
		return nil, fmt.Errorf("unrecognized type kind %q", w.Kind)
	}
}

func literalKindWire(s string) (types.LiteralKind, error) {
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

func toTypeSliceWire(ws []typeWire) ([]types.Type, error) {
	out := make([]types.Type, len(ws))
	for i, w := range ws {
		t, err := w.toType()
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

type argWire struct {
	Type    typeWire `json:"type"`
	Key     string   `json:"key,omitempty"`
	Keyword bool     `json:"keyword,omitempty"`
}

type argumentWire struct {
	Name     string   `json:"name"`
	Keyword  bool     `json:"keyword,omitempty"`
	Default  bool     `json:"default,omitempty"`
	Repeated bool     `json:"repeated,omitempty"`
	Block    bool     `json:"block,omitempty"`
	Type     typeWire `json:"type"`
}

type methodWire struct {
	Name      string         `json:"name"`
	Owner     string         `json:"owner"`
	Singleton bool           `json:"singleton,omitempty"`
	Args      []argumentWire `json:"args,omitempty"`
	Result    typeWire       `json:"result"`
	SymbolID  int            `json:"symbol_id"`
}

type classWire struct {
	ID          string   `json:"id"`
	DerivesFrom []string `json:"derives_from,omitempty"`
}

type snapshotWire struct {
	Classes []classWire  `json:"classes,omitempty"`
	Methods []methodWire `json:"methods,omitempty"`
}

func (s snapshotWire) build() (*symtab.Snapshot, error) {
	snap := symtab.NewSnapshot()
	for _, c := range s.Classes {
		snap.DefineClass(symtab.ClassMeta{ClassID: c.ID, DerivesFromList: c.DerivesFrom})
	}
	for i, m := range s.Methods {
		args := make([]symtab.Argument, len(m.Args))
		for j, a := range m.Args {
			t, err := a.Type.toType()
			if err != nil {
				return nil, fmt.Errorf("method %s arg %d: %w", m.Name, j, err)
			}
			args[j] = symtab.Argument{
				Name: a.Name, IsKeyword: a.Keyword, IsDefault: a.Default,
				IsRepeated: a.Repeated, IsBlock: a.Block, Type: t,
			}
		}
		result, err := m.Result.toType()
		if err != nil {
			return nil, fmt.Errorf("method %s result: %w", m.Name, err)
		}
		symbolID := m.SymbolID
		if symbolID == 0 {
			symbolID = i
		}
		snap.DefineMethod(&symtab.Method{
			Name: m.Name, Owner: m.Owner, IsSingleton: m.Singleton,
			Args: args, Result: result, SymbolID: symbolID,
		})
	}
	return snap, nil
}

func (r request) buildArgs(requestID uuid.UUID) (dispatch.DispatchArgs, error) {
	var args []dispatch.Arg
	numPos := 0
	for _, a := range r.Args {
		t, err := a.Type.toType()
		if err != nil {
			return dispatch.DispatchArgs{}, err
		}
		args = append(args, dispatch.Arg{Type: t, KeyName: a.Key, IsKeyword: a.Keyword})
		if !a.Keyword {
			numPos++
		}
	}
	return dispatch.DispatchArgs{
		Name:       r.Call,
		NumPosArgs: numPos,
		Args:       args,
		Block:      dispatch.Block{Arity: -1},
		RequestID:  requestID,
	}, nil
}
