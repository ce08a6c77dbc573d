package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/env"
	"github.com/sflynlang/sflync/internal/lexer"
	"github.com/sflynlang/sflync/internal/parser"
	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/types"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	buf := position.NewBuffer("test.sf", src)
	toks, diag := lexer.Lex(buf)
	require.Nil(t, diag, "lex error: %v", diag)
	prog, perr := parser.Parse(toks)
	require.Nil(t, perr, "parse error: %v", perr)
	return prog
}

// runOne checks a single top-level statement and returns its type, failing
// the test if the program doesn't parse to exactly one statement.
func runOne(t *testing.T, src string) (types.Type, *report.Diagnostic) {
	t.Helper()
	prog := mustParse(t, src)
	require.Len(t, prog.Statements, 1)
	c := New(env.New(false))
	return c.checkStatement(prog.Statements[0], c.Env.Store)
}

func TestLiteralTypes(t *testing.T) {
	tcases := map[string]string{
		"1;":        "number",
		`"hi";`:     "string",
		"true;":     "boolean",
		"[1, 2];":   "number[]",
		"{ x: 1 };": "{ x: number }",
	}
	for src, want := range tcases {
		ty, err := runOne(t, src)
		require.Nil(t, err, "src=%q", src)
		assert.Equal(t, want, ty.String(), "src=%q", src)
	}
}

func TestUnknownIdentifierIsReported(t *testing.T) {
	_, err := runOne(t, "nope;")
	require.NotNil(t, err)
	assert.Equal(t, report.UnknownIdentifier, err.Kind)
}

func TestVariableStatementChecksDeclaredAgainstValue(t *testing.T) {
	_, err := runOne(t, `let x: number = "oops";`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestVariableRedeclarationInSameScopeIsNameInUse(t *testing.T) {
	prog := mustParse(t, "let x = 1;\nlet x = 2;")
	c := New(env.New(false))
	_, err := c.checkStatement(prog.Statements[0], c.Env.Store)
	require.Nil(t, err)
	_, err = c.checkStatement(prog.Statements[1], c.Env.Store)
	require.NotNil(t, err)
	assert.Equal(t, report.NameInUse, err.Kind)
}

func TestFunctionArityRejectsTooFewArguments(t *testing.T) {
	prog := mustParse(t, `
func add(a: number, b: number = 1): number {
	return a + b;
}
add();
`)
	c := New(env.New(false))
	_, err := c.checkStatement(prog.Statements[0], c.Env.Store)
	require.Nil(t, err)
	_, err = c.checkStatement(prog.Statements[1], c.Env.Store)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectArguments, err.Kind)
}

func TestFunctionArityAcceptsOmittedDefaultedArgument(t *testing.T) {
	prog := mustParse(t, `
func add(a: number, b: number = 1): number {
	return a + b;
}
add(1);
`)
	c := New(env.New(false))
	_, err := c.checkStatement(prog.Statements[0], c.Env.Store)
	require.Nil(t, err)
	ty, err := c.checkStatement(prog.Statements[1], c.Env.Store)
	require.Nil(t, err)
	assert.Equal(t, "number", ty.String())
}

func TestFunctionReturnTypeMustMatchBody(t *testing.T) {
	_, err := runOne(t, `
func bad(): string {
	return 1;
}
`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestFunctionSupportsRecursion(t *testing.T) {
	_, err := runOne(t, `
func fact(n: number): number {
	return n * fact(n - 1);
}
`)
	assert.Nil(t, err)
}

func TestIfBranchesMustAgreeOnType(t *testing.T) {
	_, err := runOne(t, `
if (true) {
	return 1;
} else {
	return "x";
}
`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	_, err := runOne(t, `if (1) { return 1; }`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestInfixArithmeticRequiresNumbers(t *testing.T) {
	_, err := runOne(t, `true + 1;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestInfixPlusAllowsStringConcatenation(t *testing.T) {
	ty, err := runOne(t, `"a" + "b";`)
	require.Nil(t, err)
	assert.Equal(t, "string", ty.String())
}

func TestInfixComparisonProducesBoolean(t *testing.T) {
	ty, err := runOne(t, `1 < 2;`)
	require.Nil(t, err)
	assert.Equal(t, "boolean", ty.String())
}

func TestInfixEqualityAllowsAnyMatchingTypes(t *testing.T) {
	ty, err := runOne(t, `true == false;`)
	require.Nil(t, err)
	assert.Equal(t, "boolean", ty.String())

	_, err = runOne(t, `true == 1;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestInfixOrAndRequireBooleanOperands(t *testing.T) {
	ty, err := runOne(t, `true || false;`)
	require.Nil(t, err)
	assert.Equal(t, "boolean", ty.String())

	_, err = runOne(t, `true && 1;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestPrefixMinusRequiresNumber(t *testing.T) {
	_, err := runOne(t, `-true;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestPrefixBangRequiresBoolean(t *testing.T) {
	ty, err := runOne(t, `!true;`)
	require.Nil(t, err)
	assert.Equal(t, "boolean", ty.String())

	_, err = runOne(t, `!1;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestDeadCodeAfterReturnIsRejected(t *testing.T) {
	_, err := runOne(t, `
func f(): number {
	return 1;
	2;
}
`)
	require.NotNil(t, err)
	assert.Equal(t, report.Lexical, err.Kind)
}

func TestArrayElementsMustShareAType(t *testing.T) {
	_, err := runOne(t, `[1, "two"];`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestIndexRequiresArrayBaseAndNumberIndex(t *testing.T) {
	_, err := runOne(t, `1[0];`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestNumberToStringMethodTypesAsFunction(t *testing.T) {
	ty, err := runOne(t, `1.toString();`)
	require.Nil(t, err)
	assert.Equal(t, "string", ty.String())
}
