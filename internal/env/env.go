// Package env implements the lexically-scoped Store and its owning
// Environment, plus the built-in registry shared by the type checker and
// the evaluator.
package env

import (
	"github.com/tidwall/btree"

	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/types"
)

// Builtin names are reserved: always "defined" for lookup purposes, never
// rebindable by user code (spec.md §3 invariants). The values here are the
// builtin's declared type; internal/eval supplies the runtime behavior.
var Builtins = map[string]types.Type{
	"print": types.NewFunction([]types.Type{types.TString}, types.TVoid),
	"debug": types.NewFunction([]types.Type{types.TString}, types.TVoid),
}

// IsBuiltin reports whether name is a reserved builtin.
func IsBuiltin(name string) bool {
	_, ok := Builtins[name]
	return ok
}

// Store is one lexical scope frame: a pair of namespaces (the type-level
// one the checker uses, the value-level one the evaluator uses) plus an
// optional parent link. Lookups walk toward the root; writes affect only
// the local frame. Grounded on original_source/compiler/environment/store.rs
// and generalized with github.com/tidwall/btree's ordered Map so iterating
// a Store's contents (e.g. for a debug dump) is deterministic.
type Store struct {
	parent *Store

	typeEnv  btree.Map[string, types.Type]
	valueEnv btree.Map[string, Value]
	mutable  btree.Map[string, bool] // const-ness of value bindings, by name

	typePos btree.Map[string, position.Position] // first-declaration positions, for NameInUse
}

// Value is the interface internal/eval's Object implements; declared here,
// not in internal/eval, so Store has no import cycle with the evaluator.
type Value interface {
	ValueString() string
}

// NewStore creates a root Store with no parent.
func NewStore() *Store { return &Store{} }

// Child creates a new Store whose parent is s. Writes to the child never
// affect s.
func (s *Store) Child() *Store { return &Store{parent: s} }

// Parent returns the enclosing Store, or nil at the root.
func (s *Store) Parent() *Store { return s.parent }

// HasType reports whether name is bound in the type namespace anywhere up
// the parent chain, including as a builtin.
func (s *Store) HasType(name string) bool {
	if IsBuiltin(name) {
		return true
	}
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.typeEnv.Get(name); ok {
			return true
		}
	}
	return false
}

// HasTypeWithOuter reports the same as HasType, but additionally returns
// whether the binding belongs to an outer (non-local) scope. The type
// checker's NameInUse check uses HasTypeLocal instead.
func (s *Store) HasTypeWithOuter(name string) (found bool, outer bool) {
	if _, ok := s.typeEnv.Get(name); ok {
		return true, false
	}
	if IsBuiltin(name) {
		return true, s.parent != nil
	}
	for cur := s.parent; cur != nil; cur = cur.parent {
		if _, ok := cur.typeEnv.Get(name); ok {
			return true, true
		}
	}
	return false, false
}

// GetType looks up name in the type namespace, walking toward the root.
func (s *Store) GetType(name string) (types.Type, bool) {
	if t, ok := Builtins[name]; ok {
		return t, true
	}
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.typeEnv.Get(name); ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// GetTypeWithOuter is GetType, additionally reporting whether the binding
// was found outside the local frame.
func (s *Store) GetTypeWithOuter(name string) (t types.Type, found bool, outer bool) {
	if t, ok := s.typeEnv.Get(name); ok {
		return t, true, false
	}
	if t, ok := Builtins[name]; ok {
		return t, true, s.parent != nil
	}
	for cur := s.parent; cur != nil; cur = cur.parent {
		if t, ok := cur.typeEnv.Get(name); ok {
			return t, true, true
		}
	}
	return types.Type{}, false, false
}

// HasTypeLocal reports whether name is bound in the type namespace of the
// local frame only, ignoring the parent chain. Used for NameInUse checks:
// redeclaring a name already bound in the same frame is an error, but
// shadowing one bound in an enclosing frame is ordinary lexical scoping.
func (s *Store) HasTypeLocal(name string) bool {
	_, ok := s.typeEnv.Get(name)
	return ok
}

// HasValueLocal mirrors HasTypeLocal for the value namespace.
func (s *Store) HasValueLocal(name string) bool {
	_, ok := s.valueEnv.Get(name)
	return ok
}

// DeclPosition returns the source position at which name was first bound
// in the type namespace local to s (not walking the parent chain), used to
// build the secondary label of a NameInUse diagnostic.
func (s *Store) DeclPosition(name string) (position.Position, bool) {
	return s.typePos.Get(name)
}

// AddType binds name to t in the type namespace of the local frame,
// recording pos as its declaration site.
func (s *Store) AddType(name string, t types.Type, pos position.Position) {
	s.typeEnv.Set(name, t)
	s.typePos.Set(name, pos)
}

// HasValue reports whether name is bound in the value namespace anywhere
// up the parent chain, including as a builtin.
func (s *Store) HasValue(name string) bool {
	if IsBuiltin(name) {
		return true
	}
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.valueEnv.Get(name); ok {
			return true
		}
	}
	return false
}

// HasValueWithOuter mirrors HasTypeWithOuter for the value namespace.
func (s *Store) HasValueWithOuter(name string) (found bool, outer bool) {
	if _, ok := s.valueEnv.Get(name); ok {
		return true, false
	}
	if IsBuiltin(name) {
		return true, s.parent != nil
	}
	for cur := s.parent; cur != nil; cur = cur.parent {
		if _, ok := cur.valueEnv.Get(name); ok {
			return true, true
		}
	}
	return false, false
}

// GetValue looks up name in the value namespace, walking toward the root.
func (s *Store) GetValue(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.valueEnv.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// GetValueWithOuter is GetValue, additionally reporting whether the
// binding was found outside the local frame.
func (s *Store) GetValueWithOuter(name string) (v Value, found bool, outer bool) {
	if v, ok := s.valueEnv.Get(name); ok {
		return v, true, false
	}
	for cur := s.parent; cur != nil; cur = cur.parent {
		if v, ok := cur.valueEnv.Get(name); ok {
			return v, true, true
		}
	}
	return nil, false, false
}

// AddValue binds name to v in the value namespace of the local frame. The
// binding is mutable, matching the default for function parameters and any
// other binding that isn't introduced by an explicit `const`.
func (s *Store) AddValue(name string, v Value) {
	s.valueEnv.Set(name, v)
	s.mutable.Set(name, true)
}

// AddValueDecl binds name to v, recording whether it may later be
// reassigned (true for `let`, false for `const`).
func (s *Store) AddValueDecl(name string, v Value, mutable bool) {
	s.valueEnv.Set(name, v)
	s.mutable.Set(name, mutable)
}

// IsMutable reports whether name, as bound somewhere up the parent chain,
// may be reassigned. Unbound names are reported mutable; the caller is
// expected to have already confirmed the name exists.
func (s *Store) IsMutable(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if m, ok := cur.mutable.Get(name); ok {
			return m
		}
	}
	return true
}

// Clone makes a new Store with the same parent as s, whose local
// namespaces start as a copy of s's. Used at call time to give each
// invocation of a closure its own frame without mutating the Store
// captured at definition time (spec.md §4.H: "clone the function's
// captured closure").
func (s *Store) Clone() *Store {
	clone := &Store{parent: s.parent}
	s.typeEnv.Scan(func(k string, v types.Type) bool {
		clone.typeEnv.Set(k, v)
		return true
	})
	s.valueEnv.Scan(func(k string, v Value) bool {
		clone.valueEnv.Set(k, v)
		return true
	})
	s.mutable.Scan(func(k string, v bool) bool {
		clone.mutable.Set(k, v)
		return true
	})
	s.typePos.Scan(func(k string, v position.Position) bool {
		clone.typePos.Set(k, v)
		return true
	})
	return clone
}

// SetValue reassigns an already-bound name in whichever frame up the
// parent chain owns it (used by Assignment, where mutation must reach the
// defining scope, not just shadow it locally). It reports false if name is
// unbound anywhere in the chain.
func (s *Store) SetValue(name string, v Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.valueEnv.Get(name); ok {
			cur.valueEnv.Set(name, v)
			return true
		}
	}
	return false
}

// ValueNames returns the names bound in the local frame's value namespace,
// sorted, for debug dumps.
func (s *Store) ValueNames() []string {
	var names []string
	s.valueEnv.Scan(func(k string, _ Value) bool {
		names = append(names, k)
		return true
	})
	return names
}

// Environment owns one root Store, a debug-mode flag, and an append-only
// diagnostic log. Grounded on original_source's compiler/environment.rs
// (debugMode flag + error accumulation alongside the Store).
type Environment struct {
	Store     *Store
	DebugMode bool

	errors []*report.Diagnostic
}

// New creates a root Environment with a fresh root Store.
func New(debugMode bool) *Environment {
	return &Environment{Store: NewStore(), DebugMode: debugMode}
}

// AddError appends a diagnostic to the log. It never aborts; the caller
// decides when to stop processing the current top-level statement.
func (e *Environment) AddError(d *report.Diagnostic) {
	e.errors = append(e.errors, d)
}

// HasErrors reports whether any diagnostic has been logged.
func (e *Environment) HasErrors() bool { return len(e.errors) > 0 }

// Errors returns the accumulated diagnostic log, in the order reported.
func (e *Environment) Errors() []*report.Diagnostic { return e.errors }

// ShowErrors renders every logged diagnostic to the given Renderer. Named
// to mirror the source's show_errors(file) operation (spec.md §4.F).
func (e *Environment) ShowErrors(r *report.Renderer) {
	r.RenderAll(e.errors)
}
