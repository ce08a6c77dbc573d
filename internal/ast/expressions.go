package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/token"
)

// TypeExpr is the syntactic form of a type annotation: a name (one of the
// type-name keywords, or an identifier naming an interface) with an
// optional trailing `[]` marking it an array type.
type TypeExpr struct {
	Name     string
	IsArray  bool
	Position position.Position
}

func (t TypeExpr) String() string {
	if t.IsArray {
		return t.Name + "[]"
	}
	return t.Name
}

// Argument is an argument/variable declaration of shape `name: Type [=
// expr]`. It appears both in function parameter lists and as the
// right-hand side parsed by `let`/`const` statements.
type Argument struct {
	Name     string
	Type     TypeExpr
	Default  Expression // nil if no default
	Position position.Position
}

func (a *Argument) Pos() position.Position { return a.Position }
func (a *Argument) String() string {
	s := a.Name + ": " + a.Type.String()
	if a.Default != nil {
		s += " = " + a.Default.String()
	}
	return s
}
func (*Argument) expressionNode() {}

// Assignment is `target op value`, where op is one of = += -= *= /= %= **=.
type Assignment struct {
	Target   Expression
	Operator token.Kind
	Value    Expression
	Position position.Position
}

func (a *Assignment) Pos() position.Position { return a.Position }
func (a *Assignment) String() string {
	return fmt.Sprintf("%s %s %s", a.Target.String(), a.Operator.String(), a.Value.String())
}
func (*Assignment) expressionNode() {}

// Boolean is a literal true/false.
type Boolean struct {
	Value    bool
	Position position.Position
}

func (b *Boolean) Pos() position.Position { return b.Position }
func (b *Boolean) String() string         { return strconv.FormatBool(b.Value) }
func (*Boolean) expressionNode()          {}

// Call is `callee(args...)`.
type Call struct {
	Callee   Expression
	Args     []Expression
	Position position.Position
}

func (c *Call) Pos() position.Position { return c.Position }
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(args, ", "))
}
func (*Call) expressionNode() {}

// Identifier is a bare name reference.
type Identifier struct {
	Name     string
	Position position.Position
}

func (i *Identifier) Pos() position.Position { return i.Position }
func (i *Identifier) String() string         { return i.Name }
func (*Identifier) expressionNode()          {}

// If is the `if (cond) { then } else { else }` expression form. Else is
// nil when the clause is absent.
type If struct {
	Condition Expression
	Then      []Statement
	Else      []Statement
	Position  position.Position
}

func (i *If) Pos() position.Position { return i.Position }
func (i *If) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "if (%s) { ", i.Condition.String())
	for _, s := range i.Then {
		sb.WriteString(s.String())
		sb.WriteString("; ")
	}
	sb.WriteString("}")
	if i.Else != nil {
		sb.WriteString(" else { ")
		for _, s := range i.Else {
			sb.WriteString(s.String())
			sb.WriteString("; ")
		}
		sb.WriteString("}")
	}
	return sb.String()
}
func (*If) expressionNode() {}

// Infix is `lhs op rhs`.
type Infix struct {
	Left     Expression
	Operator token.Kind
	Right    Expression
	Position position.Position
}

func (i *Infix) Pos() position.Position { return i.Position }
func (i *Infix) String() string {
	return fmt.Sprintf("(%s %s %s)", i.Left.String(), i.Operator.String(), i.Right.String())
}
func (*Infix) expressionNode() {}

// Method is `recv.member`.
type Method struct {
	Receiver Expression
	Member   Expression
	Position position.Position
}

func (m *Method) Pos() position.Position { return m.Position }
func (m *Method) String() string {
	return fmt.Sprintf("%s.%s", m.Receiver.String(), m.Member.String())
}
func (*Method) expressionNode() {}

// Number is a numeric literal, carried as float64 out of the lexer.
type Number struct {
	Value    float64
	Position position.Position
}

func (n *Number) Pos() position.Position { return n.Position }
func (n *Number) String() string         { return strconv.FormatFloat(n.Value, 'f', -1, 64) }
func (*Number) expressionNode()          {}

// Prefix is `op operand`, where op is one of - !.
type Prefix struct {
	Operator token.Kind
	Operand  Expression
	Position position.Position
}

func (p *Prefix) Pos() position.Position { return p.Position }
func (p *Prefix) String() string         { return fmt.Sprintf("(%s%s)", p.Operator.String(), p.Operand.String()) }
func (*Prefix) expressionNode()          {}

// String is a string literal.
type String struct {
	Value    string
	Position position.Position
}

func (s *String) Pos() position.Position { return s.Position }
func (s *String) String() string         { return strconv.Quote(s.Value) }
func (*String) expressionNode()          {}

// Array is an array literal `[a, b, c]`.
type Array struct {
	Elements []Expression
	Position position.Position
}

func (a *Array) Pos() position.Position { return a.Position }
func (a *Array) String() string {
	elems := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}
func (*Array) expressionNode() {}

// HashMapField is one `name: value` entry inside a HashMap literal. Order
// is preserved as written.
type HashMapField struct {
	Name  string
	Value Expression
}

// HashMap is a hashmap literal `{ name: value, ... }`.
type HashMap struct {
	Fields   []HashMapField
	Position position.Position
}

func (h *HashMap) Pos() position.Position { return h.Position }
func (h *HashMap) String() string {
	fields := make([]string, len(h.Fields))
	for i, f := range h.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Value.String())
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}
func (*HashMap) expressionNode() {}

// Group is a parenthesized expression `(expr)`. Infix and Prefix already
// render inside their own parentheses, so a Group around one adds none.
type Group struct {
	Inner    Expression
	Position position.Position
}

func (g *Group) Pos() position.Position { return g.Position }
func (g *Group) String() string {
	switch g.Inner.(type) {
	case *Infix, *Prefix:
		return g.Inner.String()
	}
	return "(" + g.Inner.String() + ")"
}
func (*Group) expressionNode() {}

// Index is `base[idx]`.
type Index struct {
	Base     Expression
	Index    Expression
	Position position.Position
}

func (idx *Index) Pos() position.Position { return idx.Position }
func (idx *Index) String() string {
	return fmt.Sprintf("%s[%s]", idx.Base.String(), idx.Index.String())
}
func (*Index) expressionNode() {}
