// overload.go implements : picking the right candidate out of a
// method's declared overload chain by arity, positional-argument
// subtyping, and block presence, falling back to the primary method when
// no candidate accepts the call's arity and to the first arity/block
// survivor when none matches the argument types (an unresolvable call
// still gets a best-effort return type rather than aborting the dispatch).
package dispatch

import (
	"sort"

	"github.com/veridian-lang/veri/internal/symtab"
	"github.com/veridian-lang/veri/internal/unify"
)

// resolveOverload picks the best-matching overload: candidates are
// already stored on m.Overloads; sort by (arity, SymbolID) for a
// deterministic scan, then filter.
func resolveOverload(m *symtab.Method, args DispatchArgs) *symtab.Method {
	candidates := append([]*symtab.Method{m}, m.Overloads...)
	sort.SliceStable(candidates, func(i, j int) bool {
		ai, aj := candidates[i].MinArity(), candidates[j].MinArity()
		if ai != aj {
			return ai < aj
		}
		return candidates[i].SymbolID < candidates[j].SymbolID
	})

	var arityOK []*symtab.Method
	for _, c := range candidates {
		if arityAccepts(c, args.NumPosArgs) {
			arityOK = append(arityOK, c)
		}
	}
	if len(arityOK) == 0 {
		return m
	}

	var blockOK []*symtab.Method
	for _, c := range arityOK {
		_, wantsBlock := c.BlockArg()
		if wantsBlock == args.Block.Present {
			blockOK = append(blockOK, c)
		}
	}
	if len(blockOK) == 0 {
		blockOK = arityOK
	}

	var typeOK []*symtab.Method
	for _, c := range blockOK {
		if positionalArgsMatch(c, args) {
			typeOK = append(typeOK, c)
		}
	}
	if len(typeOK) > 0 {
		return typeOK[0]
	}
	return blockOK[0]
}

func arityAccepts(m *symtab.Method, n int) bool {
	min := m.MinArity()
	max, bounded := m.MaxArity()
	if n < min {
		return false
	}
	return !bounded || n <= max
}

// positionalArgsMatch reports whether every positional actual is a
// subtype of the corresponding formal. A nil Resolver still answers
// correctly for TVar/Untyped/identical-class comparisons, which covers
// the common overload-disambiguation cases; ancestor-chain lookups
// beyond that degrade conservatively to "doesn't match" here, falling
// back to the first candidate that passed the arity and block filters.
func positionalArgsMatch(m *symtab.Method, args DispatchArgs) bool {
	formals := m.NonBlockArgs()
	pos := 0
	for _, f := range formals {
		if f.IsKeyword || f.IsRepeated {
			continue
		}
		if pos >= args.NumPosArgs || pos >= len(args.Args) {
			if !f.IsDefault {
				return false
			}
			continue
		}
		actual := args.Args[pos].Type
		if actual != nil && f.Type != nil && !unify.IsSubType(actual, f.Type, nil) {
			return false
		}
		pos++
	}
	return true
}
