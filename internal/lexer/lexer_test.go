package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/token"
)

func lexKinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	buf := position.NewBuffer("test.sf", src)
	toks, diag := Lex(buf)
	require.Nil(t, diag, "unexpected diagnostic: %v", diag)
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexPunctuationAndOperators(t *testing.T) {
	kinds := lexKinds(t, "+ += - -= * *= ** **= / /= % %= = == != ! < <= > >= || && . , : ;")
	want := []token.Kind{
		token.Plus, token.PlusAssign, token.Minus, token.MinusAssign,
		token.Asterisk, token.AsteriskAssign, token.Exponent, token.ExponentAssign,
		token.Slash, token.SlashAssign, token.Percent, token.PercentAssign,
		token.Assign, token.Eq, token.NotEq, token.Bang,
		token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.Or, token.And,
		token.Dot, token.Comma, token.Colon, token.Semicolon,
		token.EndOfFile,
	}
	assert.Equal(t, want, kinds)
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	kinds := lexKinds(t, "let const func return if else true false boolean string number void foo _bar2")
	want := []token.Kind{
		token.Let, token.Const, token.Func, token.Return, token.If, token.Else,
		token.True, token.False, token.Boolean, token.StringType, token.NumberType, token.Void,
		token.Identifier, token.Identifier,
		token.EndOfFile,
	}
	assert.Equal(t, want, kinds)
}

func TestLexNumberLiteral(t *testing.T) {
	buf := position.NewBuffer("test.sf", "3.14")
	toks, diag := Lex(buf)
	require.Nil(t, diag)
	require.Len(t, toks, 2)
	assert.Equal(t, token.NumberLit, toks[0].Kind)
	assert.InDelta(t, 3.14, toks[0].Number, 1e-9)
}

func TestLexStringLiteral(t *testing.T) {
	buf := position.NewBuffer("test.sf", `"hello world"`)
	toks, diag := Lex(buf)
	require.Nil(t, diag)
	require.Len(t, toks, 2)
	assert.Equal(t, token.StringLit, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Literal)
}

func TestLexUnterminatedStringReportsAtOpeningQuote(t *testing.T) {
	buf := position.NewBuffer("test.sf", `"oops`)
	_, diag := Lex(buf)
	require.NotNil(t, diag)
	assert.Equal(t, 1, diag.Primary().Position.Column)
}

func TestLexSingleBarSuggestsDoubleBar(t *testing.T) {
	buf := position.NewBuffer("test.sf", "a | b")
	_, diag := Lex(buf)
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "||")
}

func TestLexUnknownCharacter(t *testing.T) {
	buf := position.NewBuffer("test.sf", "@")
	_, diag := Lex(buf)
	require.NotNil(t, diag)
	assert.Equal(t, "Unknown character.", diag.Message)
}

func TestLexEndOfLineTracksLineNumbers(t *testing.T) {
	buf := position.NewBuffer("test.sf", "let\nx")
	toks, diag := Lex(buf)
	require.Nil(t, diag)
	// let, EndOfLine, x, EOF
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Position.Line)
	assert.Equal(t, 2, toks[2].Position.Line)
}

func TestLexPositionsCoverTheirOwnLexeme(t *testing.T) {
	buf := position.NewBuffer("test.sf", "foobar")
	toks, diag := Lex(buf)
	require.Nil(t, diag)
	require.Len(t, toks, 2)
	tok := toks[0]
	assert.Equal(t, "foobar", buf.Slice(tok.Position))
}
