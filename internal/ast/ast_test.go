package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/lexer"
	"github.com/sflynlang/sflync/internal/parser"
	"github.com/sflynlang/sflync/internal/position"
)

func parseOne(t *testing.T, src string) ast.Expression {
	t.Helper()
	buf := position.NewBuffer("test.sf", src)
	toks, diag := lexer.Lex(buf)
	require.Nil(t, diag)
	prog, diag := parser.Parse(toks)
	require.Nil(t, diag)
	require.Len(t, prog.Statements, 1)
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	return stmt.Expr
}

// cmpOpts ignores Position fields: two trees built from differently
// formatted (but semantically identical) source should still compare
// equal, since only their shape and literal payloads matter here.
var cmpOpts = cmp.Options{
	cmpopts.IgnoreFields(ast.Number{}, "Position"),
	cmpopts.IgnoreFields(ast.Identifier{}, "Position"),
	cmpopts.IgnoreFields(ast.Infix{}, "Position"),
	cmpopts.IgnoreFields(ast.String{}, "Position"),
}

func TestParseIsStableAcrossWhitespace(t *testing.T) {
	a := parseOne(t, "1+2*3;")
	b := parseOne(t, "1 + 2 * 3;")
	if diff := cmp.Diff(a, b, cmpOpts); diff != "" {
		t.Errorf("parse trees differ (-a +b):\n%s", diff)
	}
}

func TestExpressionStringRoundTrips(t *testing.T) {
	expr := parseOne(t, `(1 + 2) * 3;`)
	assert.Equal(t, "((1 + 2) * 3)", expr.String())
}

func TestProgramPosSpansFirstToLastStatement(t *testing.T) {
	buf := position.NewBuffer("test.sf", "let a = 1;\nlet b = 2;")
	toks, diag := lexer.Lex(buf)
	require.Nil(t, diag)
	prog, diag := parser.Parse(toks)
	require.Nil(t, diag)
	require.Len(t, prog.Statements, 2)

	pos := prog.Pos()
	assert.Equal(t, prog.Statements[0].Pos().Start, pos.Start)
	assert.Equal(t, prog.Statements[1].Pos().End, pos.End)
}

func TestEmptyProgramPosIsZeroValue(t *testing.T) {
	prog := &ast.Program{}
	assert.Equal(t, position.Position{}, prog.Pos())
}
