package eval

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/env"
	"github.com/sflynlang/sflync/internal/lexer"
	"github.com/sflynlang/sflync/internal/parser"
	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
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

// runAll runs every top-level statement of src through a single fresh
// Evaluator, returning the last statement's result and the captured stdout.
func runAll(t *testing.T, src string) (Object, string, *report.Diagnostic) {
	t.Helper()
	prog := mustParse(t, src)
	var out bytes.Buffer
	ev := New(env.New(false), &out)
	var last Object
	var lastErr *report.Diagnostic
	for _, stmt := range prog.Statements {
		v, err := ev.evalStatement(stmt, ev.Env.Store)
		if err != nil {
			return nil, out.String(), err
		}
		last = v
		lastErr = err
	}
	return last, out.String(), lastErr
}

func TestLiteralValuesRoundTrip(t *testing.T) {
	v, _, err := runAll(t, "1;")
	require.Nil(t, err)
	assert.Equal(t, "1", v.ValueString())

	v, _, err = runAll(t, `"hi";`)
	require.Nil(t, err)
	assert.Equal(t, "hi", v.ValueString())

	v, _, err = runAll(t, "true;")
	require.Nil(t, err)
	assert.Equal(t, "true", v.ValueString())
}

func TestTruthyOnlyAcceptsBooleanTrue(t *testing.T) {
	assert.True(t, Truthy(&Boolean{Value: true}))
	assert.False(t, Truthy(&Boolean{Value: false}))
	assert.False(t, Truthy(&Number{Value: 0}))
	assert.False(t, Truthy(&String{Value: ""}))
	assert.False(t, Truthy(&Void{}))
}

func TestShortCircuitOrSkipsRightOperand(t *testing.T) {
	_, out, err := runAll(t, `
func boom(): boolean {
	print("should not run");
	return true;
}
true || boom();
`)
	require.Nil(t, err)
	assert.Empty(t, out)
}

func TestShortCircuitAndSkipsRightOperand(t *testing.T) {
	_, out, err := runAll(t, `
func boom(): boolean {
	print("should not run");
	return true;
}
false && boom();
`)
	require.Nil(t, err)
	assert.Empty(t, out)
}

func TestOrEvaluatesRightWhenLeftIsFalse(t *testing.T) {
	v, _, err := runAll(t, `false || true;`)
	require.Nil(t, err)
	assert.Equal(t, "true", v.ValueString())
}

func TestAndEvaluatesRightWhenLeftIsTrue(t *testing.T) {
	v, _, err := runAll(t, `true && false;`)
	require.Nil(t, err)
	assert.Equal(t, "false", v.ValueString())
}

func TestDivisionByZeroIsAnError(t *testing.T) {
	_, _, err := runAll(t, `1 / 0;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestModuloByZeroIsAnError(t *testing.T) {
	_, _, err := runAll(t, `1 % 0;`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestConstReassignmentIsRejectedAtRuntime(t *testing.T) {
	_, _, err := runAll(t, "const x = 1;\nx = 2;")
	require.NotNil(t, err)
	assert.Equal(t, report.Lexical, err.Kind)
}

func TestMutableReassignmentSucceeds(t *testing.T) {
	v, _, err := runAll(t, "let x = 1;\nx = 2;\nx;")
	require.Nil(t, err)
	assert.Equal(t, "2", v.ValueString())
}

func TestCompoundAssignmentAppliesTheBaseOperator(t *testing.T) {
	v, _, err := runAll(t, "let x = 10;\nx -= 4;\nx;")
	require.Nil(t, err)
	assert.Equal(t, "6", v.ValueString())
}

func TestShadowingAnOuterNameIsNotNameInUse(t *testing.T) {
	v, _, err := runAll(t, `
let x = 1;
func f(): number {
	let x = 2;
	return x;
}
f();
`)
	require.Nil(t, err)
	assert.Equal(t, "2", v.ValueString())
}

func TestRedeclarationInTheSameScopeIsNameInUse(t *testing.T) {
	_, _, err := runAll(t, "let x = 1;\nlet x = 2;")
	require.NotNil(t, err)
	assert.Equal(t, report.NameInUse, err.Kind)
}

func TestFunctionClosureCapturesDefiningScope(t *testing.T) {
	v, _, err := runAll(t, `
let base = 10;
func addBase(n: number): number {
	return n + base;
}
addBase(5);
`)
	require.Nil(t, err)
	assert.Equal(t, "15", v.ValueString())
}

func TestFunctionArityUsesMinRequiredAndMaxParams(t *testing.T) {
	prog := mustParse(t, `
func add(a: number, b: number = 1): number {
	return a + b;
}
`)
	ev := New(env.New(false), &bytes.Buffer{})
	_, err := ev.evalStatement(prog.Statements[0], ev.Env.Store)
	require.Nil(t, err)

	fnVal, ok := ev.Env.Store.GetValue("add")
	require.True(t, ok)
	fn := fnVal.(*Function)
	assert.Equal(t, 1, fn.MinRequired())
	assert.Equal(t, 2, fn.MaxParams())
}

func TestRecursiveFunctionCallsResolve(t *testing.T) {
	v, _, err := runAll(t, `
func fact(n: number): number {
	if (n <= 1) {
		return 1;
	}
	return n * fact(n - 1);
}
fact(5);
`)
	require.Nil(t, err)
	assert.Equal(t, "120", v.ValueString())
}

func TestReturnEnvelopeUnwrapsOnceAtCallBoundary(t *testing.T) {
	v, _, err := runAll(t, `
func early(): number {
	return 1;
	return 2;
}
early();
`)
	require.Nil(t, err)
	assert.Equal(t, "1", v.ValueString())
}

func TestNumberToStringMethod(t *testing.T) {
	v, _, err := runAll(t, `42.toString();`)
	require.Nil(t, err)
	assert.Equal(t, "42", v.ValueString())
}

func TestArrayIndexing(t *testing.T) {
	v, _, err := runAll(t, `[10, 20, 30][1];`)
	require.Nil(t, err)
	assert.Equal(t, "20", v.ValueString())
}

func TestArrayIndexOutOfRangeIsAnError(t *testing.T) {
	_, _, err := runAll(t, `[1, 2][5];`)
	require.NotNil(t, err)
	assert.Equal(t, report.ExpectType, err.Kind)
}

func TestHashMapLiteralFields(t *testing.T) {
	v, _, err := runAll(t, `{ x: 1, y: 2 };`)
	require.Nil(t, err)
	hm, ok := v.(*HashMap)
	require.True(t, ok)
	assert.Equal(t, "1", hm.Fields["x"].ValueString())
	assert.Equal(t, "2", hm.Fields["y"].ValueString())
}

func TestPrintBuiltinWritesToStdout(t *testing.T) {
	_, out, err := runAll(t, `print("hello");`)
	require.Nil(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestDebugBuiltinIsSilentOutsideDebugMode(t *testing.T) {
	prog := mustParse(t, `debug("quiet");`)
	var out bytes.Buffer
	ev := New(env.New(false), &out)
	_, err := ev.evalStatement(prog.Statements[0], ev.Env.Store)
	require.Nil(t, err)
	assert.Empty(t, out.String())
}

func TestDebugBuiltinPrintsInDebugMode(t *testing.T) {
	prog := mustParse(t, `debug("loud");`)
	var out bytes.Buffer
	ev := New(env.New(true), &out)
	_, err := ev.evalStatement(prog.Statements[0], ev.Env.Store)
	require.Nil(t, err)
	assert.Equal(t, "loud\n", out.String())
}

func TestUnknownIdentifierIsAnEvalError(t *testing.T) {
	_, _, err := runAll(t, `nope;`)
	require.NotNil(t, err)
	assert.Equal(t, report.UnknownIdentifier, err.Kind)
}

func TestEqualityComparesByValueAcrossMatchingTypes(t *testing.T) {
	v, _, err := runAll(t, `1 == 1;`)
	require.Nil(t, err)
	assert.Equal(t, "true", v.ValueString())

	v, _, err = runAll(t, `"a" != "b";`)
	require.Nil(t, err)
	assert.Equal(t, "true", v.ValueString())
}

func TestExponentOperator(t *testing.T) {
	v, _, err := runAll(t, `2 ** 10;`)
	require.Nil(t, err)
	assert.Equal(t, "1024", v.ValueString())
}
