// Package ast defines the immutable, position-bearing node tree produced
// by the parser.
package ast

import "github.com/sflynlang/sflync/internal/position"

// Node is implemented by every Expression and Statement variant.
type Node interface {
	Pos() position.Position
	String() string
}

// Expression is the runtime-free tagged union of expression forms.
type Expression interface {
	Node
	expressionNode()
}

// Statement is the tagged union of statement forms.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of a parsed source file: an ordered list of
// top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() position.Position {
	if len(p.Statements) == 0 {
		return position.Position{}
	}
	return p.Statements[0].Pos().Join(p.Statements[len(p.Statements)-1].Pos())
}

func (p *Program) String() string {
	out := ""
	for i, s := range p.Statements {
		if i > 0 {
			out += "\n"
		}
		out += s.String()
	}
	return out
}
