// Package config holds the dispatch core's built-in name constants and
// the policy knobs that resolve its documented open design questions: a
// flat package of exported constants plus a handful of process-wide
// flags, rather than a DI container.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Built-in class name constants referenced throughout internal/dispatch,
// naming built-ins once, centrally.
const (
	ObjectClass  = "Object"
	ClassClass   = "Class"
	ModuleClass  = "Module"
	HashClass    = "Hash"
	ArrayClass   = "Array"
	ProcClass    = "Proc"
	SymbolClass  = "Symbol"
	NilableHelper = "T.nilable"
)

// Built-in method name constants used by the intrinsic registry and the
// not-found handling path.
const (
	InitializeMethod = "initialize"
	NewMethod        = "new"
	SuperSentinel    = "<super>"
	IndexGetMethod   = "[]"
	IndexSetMethod   = "[]="
)

// Policy collects knobs for behavior that is otherwise unresolved by the
// plain dispatch rules, turning silent hard-coding into explicit,
// documented defaults.
type Policy struct {
	// AllowNonShapeKwargs controls whether a non-shape (e.g. untyped or
	// plain Hash-derived) kwsplat is ever allowed to satisfy keyword
	// parameters. Treated as intentional-but-wrong upstream: never
	// allowed. Default false preserves that behavior while exposing the
	// knob.
	AllowNonShapeKwargs bool `yaml:"allow_non_shape_kwargs"`

	// StrictKeywordArgs gates the KeywordArgHashWithoutSplat deprecation
	// diagnostic.
	StrictKeywordArgs bool `yaml:"strict_keyword_args"`

	// StrictProcArity gates ProcArityUnknown, emitted only in strict mode.
	StrictProcArity bool `yaml:"strict_proc_arity"`

	// IntrinsicConstraintWins: when the resolved method is overloaded,
	// generic, and has an intrinsic, the intrinsic-supplied constraint
	// replaces the overload pick's constraint. Default true.
	IntrinsicConstraintWins bool `yaml:"intrinsic_constraint_wins"`

	// RequiredAncestorsEnabled toggles the "required ancestors" scan in
	// member lookup.
	RequiredAncestorsEnabled bool `yaml:"required_ancestors_enabled"`

	// UnsafeWrapHint names the nil-stripping helper method suggested for
	// nil receivers; empty disables the suggestion.
	UnsafeWrapHint string `yaml:"unsafe_wrap_hint"`
}

// DefaultPolicy matches the documented default behavior.
func DefaultPolicy() Policy {
	return Policy{
		AllowNonShapeKwargs:      false,
		StrictKeywordArgs:        false,
		StrictProcArity:          false,
		IntrinsicConstraintWins:  true,
		RequiredAncestorsEnabled: true,
		UnsafeWrapHint:           "T.must",
	}
}

// LoadPolicy reads a Policy from a YAML file, falling back to defaults for
// unset fields: it starts from DefaultPolicy and unmarshals the file on
// top, so a field the file does not mention keeps its default.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}
