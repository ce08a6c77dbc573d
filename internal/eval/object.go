// Package eval walks the AST with a mutable Environment, producing
// runtime Objects and side effects.
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/env"
	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/types"
)

// Object is the runtime value union (spec.md §3). Every variant
// implements env.Value so it can live in a Store's value namespace.
type Object interface {
	env.Value
	Pos() position.Position
	Type() types.Type
}

// Boolean wraps a bool.
type Boolean struct {
	Value    bool
	Position position.Position
}

func (b *Boolean) Pos() position.Position { return b.Position }
func (b *Boolean) Type() types.Type       { return types.TBoolean }
func (b *Boolean) ValueString() string    { return strconv.FormatBool(b.Value) }

// Number wraps an int64. The lexer carries float64 literals; the
// evaluator truncates to int64 at the point a Number Object is produced,
// per spec.md §9's "prefer int64 end-to-end" guidance.
type Number struct {
	Value    int64
	Position position.Position
}

func (n *Number) Pos() position.Position { return n.Position }
func (n *Number) Type() types.Type       { return types.TNumber }
func (n *Number) ValueString() string    { return strconv.FormatInt(n.Value, 10) }

// String wraps a string.
type String struct {
	Value    string
	Position position.Position
}

func (s *String) Pos() position.Position { return s.Position }
func (s *String) Type() types.Type       { return types.TString }
func (s *String) ValueString() string    { return s.Value }

// Void is the absence of a value, produced by statements/functions with
// no meaningful result.
type Void struct {
	Position position.Position
}

func (v *Void) Pos() position.Position { return v.Position }
func (v *Void) Type() types.Type       { return types.TVoid }
func (v *Void) ValueString() string    { return "void" }

// Unknown is the placeholder bound to a required parameter before a call
// supplies its argument.
type Unknown struct {
	Position position.Position
}

func (u *Unknown) Pos() position.Position { return u.Position }
func (u *Unknown) Type() types.Type       { return types.TUnknown }
func (u *Unknown) ValueString() string    { return "unknown" }

// Null wraps an Option(Inner) value that holds nothing.
type Null struct {
	Inner    types.Type
	Position position.Position
}

func (n *Null) Pos() position.Position { return n.Position }
func (n *Null) Type() types.Type       { return types.NewOption(n.Inner) }
func (n *Null) ValueString() string    { return "null" }

// Return is the transient envelope produced by a `return` statement. It is
// unwrapped exactly once, by the nearest enclosing call frame (spec.md §3
// invariants).
type Return struct {
	Inner    Object
	Position position.Position
}

func (r *Return) Pos() position.Position { return r.Position }
func (r *Return) Type() types.Type       { return r.Inner.Type() }
func (r *Return) ValueString() string    { return r.Inner.ValueString() }

// HashMap is a runtime record value.
type HashMap struct {
	Fields   map[string]Object
	Position position.Position
}

func (h *HashMap) Pos() position.Position { return h.Position }
func (h *HashMap) Type() types.Type {
	fields := make(map[string]types.Type, len(h.Fields))
	for k, v := range h.Fields {
		fields[k] = v.Type()
	}
	return types.NewHashMap(fields)
}
func (h *HashMap) ValueString() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	first := true
	for k, v := range h.Fields {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s: %s", k, v.ValueString())
	}
	sb.WriteString(" }")
	return sb.String()
}

// Function is a closure: its parameter map (insertion order tracked
// separately via ParamOrder, since Go maps don't preserve it), its body,
// declared return type, and the Store captured at definition time.
type Function struct {
	ParamOrder []string
	Params     map[string]Object // name -> bound default (Unknown if none)
	ParamTypes map[string]types.Type
	ReturnType types.Type
	Body       []ast.Statement
	Closure    *env.Store
	Position   position.Position
}

func (f *Function) Pos() position.Position { return f.Position }
func (f *Function) Type() types.Type {
	params := make([]types.Type, len(f.ParamOrder))
	for i, n := range f.ParamOrder {
		params[i] = f.ParamTypes[n]
	}
	return types.NewFunction(params, f.ReturnType)
}
func (f *Function) ValueString() string { return "func(...)" }

// MinRequired is the count of parameters whose bound default is still
// Unknown (spec.md §4.H's arity rule).
func (f *Function) MinRequired() int {
	n := 0
	for _, name := range f.ParamOrder {
		if _, ok := f.Params[name].(*Unknown); ok {
			n++
		}
	}
	return n
}

// MaxParams is the total parameter count.
func (f *Function) MaxParams() int { return len(f.ParamOrder) }

func arityError(pos position.Position, expected, got int) *report.Diagnostic {
	return report.ArityError(pos, expected, got)
}

// Callable is implemented by every Object that a Call node can invoke:
// user-defined Functions and builtin-method NativeFunctions (e.g. a
// number's toString). Unifying them lets evalCall stay a single code path
// regardless of which produced the callee.
type Callable interface {
	Object
	Invoke(ev *Evaluator, args []Object, pos position.Position) (Object, *report.Diagnostic)
}

// Invoke implements Callable for user-defined functions: arity-checks
// against MinRequired/MaxParams, clones the captured closure (spec.md
// §4.H — "create a fresh Environment by cloning the function's captured
// closure"), binds positional arguments in declaration order, and
// evaluates the body in the clone.
func (f *Function) Invoke(ev *Evaluator, args []Object, pos position.Position) (Object, *report.Diagnostic) {
	min, max := f.MinRequired(), f.MaxParams()
	if len(args) < min {
		return nil, arityError(pos, min, len(args))
	}
	if len(args) > max {
		return nil, arityError(pos, max, len(args))
	}

	callScope := f.Closure.Clone()
	for i, name := range f.ParamOrder {
		if i < len(args) {
			callScope.AddValue(name, args[i])
		}
	}
	return ev.evalBody(f.Body, callScope)
}

// Array is a runtime array value.
type Array struct {
	Elements []Object
	Position position.Position
}

func (a *Array) Pos() position.Position { return a.Position }
func (a *Array) Type() types.Type {
	if len(a.Elements) == 0 {
		return types.NewArray(types.TUnknown)
	}
	return types.NewArray(a.Elements[0].Type())
}
func (a *Array) ValueString() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.ValueString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NativeFunction is a builtin method bound to a receiver, e.g. a number's
// toString. It is produced fresh each time a Method expression is
// evaluated against a receiver (internal/eval's seedNumberMethods), and
// captures that receiver by closure.
type NativeFunction struct {
	Name       string
	Arity      int
	ReturnType types.Type
	Fn         func(args []Object) (Object, *report.Diagnostic)
	Position   position.Position
}

func (n *NativeFunction) Pos() position.Position { return n.Position }
func (n *NativeFunction) Type() types.Type {
	return types.NewFunction(make([]types.Type, n.Arity), n.ReturnType)
}
func (n *NativeFunction) ValueString() string { return n.Name }

// Invoke implements Callable for native methods.
func (n *NativeFunction) Invoke(ev *Evaluator, args []Object, pos position.Position) (Object, *report.Diagnostic) {
	if len(args) != n.Arity {
		return nil, arityError(pos, n.Arity, len(args))
	}
	return n.Fn(args)
}

// Truthy reports whether o is the single truthy value: Boolean(true).
// Every other Object, including Boolean(false), Number(0) and String(""),
// is falsy (spec.md §8.6).
func Truthy(o Object) bool {
	b, ok := o.(*Boolean)
	return ok && b.Value
}
