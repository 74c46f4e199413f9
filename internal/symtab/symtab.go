// Package symtab models the symbol table the dispatch core consumes
// read-only: classes, methods, and type members, plus the lookup
// surface (FindMember/FindMemberTransitive/FindMemberFuzzyMatch/overload
// chains) needed to resolve a call without ever mutating the table
// itself. Generalizes a single-dispatch-per-name model to an explicit
// overload chain and a required-ancestor scan.
package symtab

import (
	"sort"
	"strconv"
	"strings"

	"github.com/veridian-lang/veri/internal/types"
)

// Argument is the per-formal-parameter metadata the dispatch core needs.
type Argument struct {
	Name         string
	IsKeyword    bool
	IsDefault    bool
	IsRepeated   bool // rest / keyword-rest
	IsBlock      bool
	IsSynthetic  bool
	Type         types.Type
	Loc          types.SourceRef
	RenderedName string
}

// Method is a symbol table entry for a callable member.
type Method struct {
	Name            string
	Owner           string // owning class id
	IsSingleton     bool
	Args            []Argument
	Result          types.Type
	IsOverloaded    bool
	Overloads       []*Method // candidates recovered in ascending arity order
	IsGenericMethod bool
	TypeArguments   []string
	HasSig          bool
	Intrinsic       *IntrinsicRef
	Loc             types.SourceRef
	Strictness      string // strictness level of the defining file
	SymbolID        int    // used as the overload tie-break
}

// IntrinsicRef names the (owner, instance|singleton, name) triple a
// method's intrinsic handler was registered under. The handler
// itself lives in internal/dispatch's registry, keyed by the same triple
// — kept out of this package so symtab (consumed read-only, with no
// knowledge of how dispatch executes) never imports dispatch logic.
type IntrinsicRef struct {
	OwnerClassID string
	IsSingleton  bool
	MethodName   string
}

// NonBlockArgs returns a method's formal parameters with the trailing
// block parameter stripped. Every method's last formal is a block
// parameter, possibly synthetic/absent.
func (m *Method) NonBlockArgs() []Argument {
	if len(m.Args) == 0 {
		return nil
	}
	last := m.Args[len(m.Args)-1]
	if last.IsBlock {
		return m.Args[:len(m.Args)-1]
	}
	return m.Args
}

// BlockArg returns the method's trailing block formal, synthetic or not;
// callers that care check IsSynthetic themselves.
func (m *Method) BlockArg() (Argument, bool) {
	if len(m.Args) == 0 {
		return Argument{}, false
	}
	last := m.Args[len(m.Args)-1]
	if last.IsBlock {
		return last, true
	}
	return Argument{}, false
}

// MinArity/MaxArity compute the pretty-arity bounds used in diagnostics
// ("2", "1..3", "2+").
func (m *Method) MinArity() int {
	n := 0
	for _, a := range m.NonBlockArgs() {
		if a.IsKeyword || a.IsDefault || a.IsRepeated {
			continue
		}
		n++
	}
	return n
}

func (m *Method) MaxArity() (int, bool) {
	n := 0
	for _, a := range m.NonBlockArgs() {
		if a.IsKeyword {
			continue
		}
		if a.IsRepeated {
			return 0, false // unbounded
		}
		n++
	}
	return n, true
}

// PrettyArity renders the arity string: the required count, "..required+optional"
// for optionals, or "required+" when a rest parameter is present.
func (m *Method) PrettyArity() string {
	min := m.MinArity()
	max, bounded := m.MaxArity()
	switch {
	case !bounded:
		return itoa(min) + "+"
	case max == min:
		return itoa(min)
	default:
		return itoa(min) + ".." + itoa(max)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// TypeMember is a generic class's declared type parameter with its bounds.
type TypeMember struct {
	Name  string
	Upper types.Type
	Lower types.Type
}

// ClassMeta is the per-class metadata the dispatch core needs.
type ClassMeta struct {
	ClassID                     string
	TypeMembers                 []TypeMember
	TypeArity                   int
	AttachedClass               string // for a singleton class: the instance class it singleton-izes
	IsSingletonClass            bool
	DerivesFromList             []string
	RequiredAncestorsTransitive []string
	IsClassOrModuleModule       bool
	ExternalType                types.Type
}

// Table is the read-only surface the dispatch core consumes.
type Table interface {
	FindMember(classID, name string) (*Method, bool)
	FindMemberTransitive(classID, name string) (*Method, bool)
	FindMemberFuzzyMatch(classID, name string) []string
	ClassMeta(classID string) (*ClassMeta, bool)
	DerivesFrom(classID string) []string
	Underlying(t types.Type) (types.Type, bool)
	ResolveTypeAlias(t types.Type) types.Type
	RootObjectHasModuleMethod(name string) (ownerModule string, ok bool)
}

// Snapshot is a simple in-memory Table, used by tests, cmd/veric scenario
// loading, and as the default embeddable implementation in pkg/veri.
type Snapshot struct {
	Classes map[string]*ClassMeta
	Methods map[string]map[string]*Method // classID -> name -> method
}

// NewSnapshot builds an empty, ready-to-populate snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Classes: map[string]*ClassMeta{}, Methods: map[string]map[string]*Method{}}
}

// DefineClass registers class metadata, creating it if absent.
func (s *Snapshot) DefineClass(meta ClassMeta) {
	m := meta
	s.Classes[meta.ClassID] = &m
}

// DefineMethod registers a method under its owner class.
func (s *Snapshot) DefineMethod(m *Method) {
	if s.Methods[m.Owner] == nil {
		s.Methods[m.Owner] = map[string]*Method{}
	}
	s.Methods[m.Owner][m.Name] = m
}

func (s *Snapshot) FindMember(classID, name string) (*Method, bool) {
	if byName, ok := s.Methods[classID]; ok {
		if m, ok := byName[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (s *Snapshot) FindMemberTransitive(classID, name string) (*Method, bool) {
	seen := map[string]bool{}
	var walk func(string) (*Method, bool)
	walk = func(cid string) (*Method, bool) {
		if seen[cid] {
			return nil, false
		}
		seen[cid] = true
		if m, ok := s.FindMember(cid, name); ok {
			return m, true
		}
		for _, anc := range s.DerivesFrom(cid) {
			if m, ok := walk(anc); ok {
				return m, true
			}
		}
		return nil, false
	}
	return walk(classID)
}

func (s *Snapshot) FindMemberFuzzyMatch(classID, name string) []string {
	byName, ok := s.Methods[classID]
	if !ok {
		return nil
	}
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	for other := range byName {
		d := levenshtein(name, other)
		if d <= 2 && other != name {
			candidates = append(candidates, scored{other, d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func (s *Snapshot) ClassMeta(classID string) (*ClassMeta, bool) {
	m, ok := s.Classes[classID]
	return m, ok
}

func (s *Snapshot) DerivesFrom(classID string) []string {
	if m, ok := s.Classes[classID]; ok {
		return m.DerivesFromList
	}
	return nil
}

func (s *Snapshot) Underlying(t types.Type) (types.Type, bool) {
	switch v := t.(type) {
	case types.LiteralType:
		return v.Underlying(), true
	case types.ShapeType:
		return v.Underlying("Hash"), true
	case types.TupleType:
		return v.Underlying("Array"), true
	}
	return nil, false
}

func (s *Snapshot) ResolveTypeAlias(t types.Type) types.Type { return t }

// RootObjectHasModuleMethod scans the modules Object requires (e.g. a
// Kernel-style module mixed into every object) for name, independent of
// whether RequiredAncestorsEnabled let the normal ancestor scan see them.
// A method stored under s.Methods["Object"] is always Owner == "Object"
// by construction (DefineMethod keys on m.Owner), so this has to walk
// Object's RequiredAncestorsTransitive rather than its own method map.
func (s *Snapshot) RootObjectHasModuleMethod(name string) (string, bool) {
	root, ok := s.Classes["Object"]
	if !ok {
		return "", false
	}
	seen := map[string]bool{}
	var walk func(string) (string, bool)
	walk = func(cid string) (string, bool) {
		if seen[cid] {
			return "", false
		}
		seen[cid] = true
		if _, found := s.FindMember(cid, name); found {
			return cid, true
		}
		for _, anc := range s.DerivesFrom(cid) {
			if owner, found := walk(anc); found {
				return owner, true
			}
		}
		return "", false
	}
	for _, anc := range root.RequiredAncestorsTransitive {
		if owner, found := walk(anc); found {
			return owner, true
		}
	}
	return "", false
}

// levenshtein computes edit distance for fuzzy member-name suggestions.
func levenshtein(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
