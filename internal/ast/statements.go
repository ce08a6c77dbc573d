package ast

import (
	"fmt"
	"strings"

	"github.com/sflynlang/sflync/internal/position"
)

// ExpressionStatement wraps a bare expression used as a statement.
type ExpressionStatement struct {
	Expr     Expression
	Position position.Position
}

func (s *ExpressionStatement) Pos() position.Position { return s.Position }
func (s *ExpressionStatement) String() string         { return s.Expr.String() }
func (*ExpressionStatement) statementNode()           {}

// Function is a function declaration: `func name(params): ReturnType { body }`.
type Function struct {
	Name       string
	Params     []*Argument
	ReturnType TypeExpr
	Body       []Statement
	Position   position.Position
}

func (f *Function) Pos() position.Position { return f.Position }
func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%s): %s { ", f.Name, strings.Join(params, ", "), f.ReturnType.String())
	for _, s := range f.Body {
		sb.WriteString(s.String())
		sb.WriteString("; ")
	}
	sb.WriteString("}")
	return sb.String()
}
func (*Function) statementNode() {}

// Return is `return [expr];`. Value is nil when no expression is given.
type Return struct {
	Value    Expression
	Position position.Position
}

func (r *Return) Pos() position.Position { return r.Position }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}
func (*Return) statementNode() {}

// Variable is `let`/`const name[: T] [= expr];`.
type Variable struct {
	Mutable  bool
	Name     string
	Type     TypeExpr // zero value if omitted
	Value    Expression
	Position position.Position
}

func (v *Variable) Pos() position.Position { return v.Position }
func (v *Variable) String() string {
	kw := "const"
	if v.Mutable {
		kw = "let"
	}
	s := kw + " " + v.Name
	if v.Type.Name != "" {
		s += ": " + v.Type.String()
	}
	if v.Value != nil {
		s += " = " + v.Value.String()
	}
	return s
}
func (*Variable) statementNode() {}

// Interface is `interface Name { member: T; ... }`. Parsed but never
// consumed by the checker or evaluator (spec's interface statement is
// parsed-but-ignored).
type Interface struct {
	Name     string
	Members  []*Argument
	Position position.Position
}

func (i *Interface) Pos() position.Position { return i.Position }
func (i *Interface) String() string {
	members := make([]string, len(i.Members))
	for j, m := range i.Members {
		members[j] = m.String()
	}
	return fmt.Sprintf("interface %s { %s }", i.Name, strings.Join(members, "; "))
}
func (*Interface) statementNode() {}
