package parser

import "github.com/sflynlang/sflync/internal/token"

// precedence is the Pratt-parser binding power ladder, kept as data (not
// a switch) per spec.md §9's design note and grounded on the teacher's own
// data-driven precedence tables.
type precedence int

const (
	lowest precedence = iota
	assignmentPrec
	orPrec
	andPrec
	equalsPrec
	lessGreaterPrec
	sumPrec
	productPrec
	exponentPrec
	prefixPrec
	callPrec
	indexPrec
	methodPrec
)

var precedences = map[token.Kind]precedence{
	token.Assign:         assignmentPrec,
	token.PlusAssign:     assignmentPrec,
	token.MinusAssign:    assignmentPrec,
	token.AsteriskAssign: assignmentPrec,
	token.SlashAssign:    assignmentPrec,
	token.PercentAssign:  assignmentPrec,
	token.ExponentAssign: assignmentPrec,

	token.Or:  orPrec,
	token.And: andPrec,

	token.Eq:    equalsPrec,
	token.NotEq: equalsPrec,
	token.LtEq:  equalsPrec,
	token.GtEq:  equalsPrec,

	token.Lt: lessGreaterPrec,
	token.Gt: lessGreaterPrec,

	token.Plus:  sumPrec,
	token.Minus: sumPrec,

	token.Asterisk: productPrec,
	token.Slash:    productPrec,
	token.Percent:  productPrec,

	token.Exponent: exponentPrec,

	token.LParen: callPrec,

	token.LBracket: indexPrec,

	token.Dot: methodPrec,
}

func precedenceOf(k token.Kind) precedence {
	if p, ok := precedences[k]; ok {
		return p
	}
	return lowest
}

func isAssignment(k token.Kind) bool {
	switch k {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.AsteriskAssign,
		token.SlashAssign, token.PercentAssign, token.ExponentAssign:
		return true
	}
	return false
}

func isInfix(k token.Kind) bool {
	switch k {
	case token.Or, token.And,
		token.Eq, token.NotEq, token.LtEq, token.GtEq, token.Lt, token.Gt,
		token.Plus, token.Minus, token.Asterisk, token.Slash, token.Percent, token.Exponent:
		return true
	}
	return false
}
