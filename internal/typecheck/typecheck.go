// Package typecheck walks the AST against a type-level Environment,
// rejecting programs whose Data Types don't line up (spec.md §4.G). It
// mirrors internal/eval's dispatch-by-node shape and per-statement error
// isolation so the two passes agree on scoping and control flow, but
// leaves mutability (const-reassignment) to the evaluator's Lexical
// diagnostic, since that is a runtime-binding property, not a type.
package typecheck

import (
	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/env"
	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/token"
	"github.com/sflynlang/sflync/internal/types"
)

// arityInfo records the minimum (required) and maximum (total) argument
// count for a named function, derived from which parameters carry a
// default. types.Type's Function variant only carries parameter types, not
// which ones are optional, so this is tracked alongside it.
type arityInfo struct {
	min, max int
}

// Checker walks a Program's statements against an Environment's type
// namespace. Grounded on original_source/compiler/checker.rs for the
// per-declaration rule set and on internal/eval's Evaluator for its
// Store-based scoping shape.
type Checker struct {
	Env   *env.Environment
	arity map[string]arityInfo
}

// New constructs a Checker over e.
func New(e *env.Environment) *Checker {
	return &Checker{Env: e, arity: map[string]arityInfo{}}
}

// Run checks every top-level statement. An error aborts only the
// statement that produced it; checking continues with the next one
// (spec.md §4.G, mirroring the evaluator's isolation). It returns the
// process exit status: 0 if nothing was logged, 1 otherwise.
func (c *Checker) Run(prog *ast.Program) int {
	for _, stmt := range prog.Statements {
		if _, err := c.checkStatement(stmt, c.Env.Store); err != nil {
			c.Env.AddError(err)
		}
	}
	if c.Env.HasErrors() {
		return 1
	}
	return 0
}

func (c *Checker) checkStatement(stmt ast.Statement, scope *env.Store) (types.Type, *report.Diagnostic) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return c.checkExpression(s.Expr, scope)
	case *ast.Return:
		if s.Value == nil {
			return types.TVoid, nil
		}
		return c.checkExpression(s.Value, scope)
	case *ast.Function:
		return c.checkFunctionStatement(s, scope)
	case *ast.Variable:
		return c.checkVariableStatement(s, scope)
	case *ast.Interface:
		// Parsed but never consumed by the checker (spec.md §9 open question).
		return types.TVoid, nil
	default:
		return types.Type{}, report.UnknownTokenError(stmt.Pos(), stmt.String())
	}
}

// checkBody checks a braced statement sequence, rejecting any statement
// that follows a `return` as dead code, and reports the body's type as the
// type of its return expression (Void if control falls off the end).
func (c *Checker) checkBody(body []ast.Statement, scope *env.Store) (types.Type, *report.Diagnostic) {
	bodyType := types.TVoid
	returned := false
	for _, stmt := range body {
		if returned {
			return types.Type{}, report.LexError(stmt.Pos(), "This will never read.")
		}
		t, err := c.checkStatement(stmt, scope)
		if err != nil {
			return types.Type{}, err
		}
		if _, ok := stmt.(*ast.Return); ok {
			returned = true
			bodyType = t
		}
	}
	return bodyType, nil
}

func (c *Checker) checkFunctionStatement(s *ast.Function, scope *env.Store) (types.Type, *report.Diagnostic) {
	if env.IsBuiltin(s.Name) {
		return types.Type{}, report.NameInUseError(s.Position, s.Name, position.Position{})
	}
	if scope.HasTypeLocal(s.Name) {
		pos, _ := scope.DeclPosition(s.Name)
		return types.Type{}, report.NameInUseError(s.Position, s.Name, pos)
	}

	fnScope := scope.Child()
	params := make([]types.Type, len(s.Params))
	min := 0
	for i, p := range s.Params {
		if env.IsBuiltin(p.Name) {
			return types.Type{}, report.NameInUseError(p.Position, p.Name, position.Position{})
		}
		if fnScope.HasTypeLocal(p.Name) {
			pos, _ := fnScope.DeclPosition(p.Name)
			return types.Type{}, report.NameInUseError(p.Position, p.Name, pos)
		}
		pt := typeExprToType(p.Type)
		if p.Default == nil {
			min++
		} else {
			dt, err := c.checkExpression(p.Default, fnScope)
			if err != nil {
				return types.Type{}, err
			}
			if !dt.Equal(pt) {
				return types.Type{}, report.TypeError(p.Default.Pos(), pt.String(), dt.String())
			}
		}
		fnScope.AddType(p.Name, pt, p.Position)
		params[i] = pt
	}

	retType := typeExprToType(s.ReturnType)
	fnType := types.NewFunction(params, retType)

	// Bind before checking the body so a recursive call resolves.
	scope.AddType(s.Name, fnType, s.Position)
	c.arity[s.Name] = arityInfo{min: min, max: len(s.Params)}

	bodyType, err := c.checkBody(s.Body, fnScope)
	if err != nil {
		return types.Type{}, err
	}
	if s.ReturnType.Name != "" && !bodyType.Equal(retType) {
		return types.Type{}, report.TypeError(s.Position, retType.String(), bodyType.String())
	}
	return fnType, nil
}

func (c *Checker) checkVariableStatement(s *ast.Variable, scope *env.Store) (types.Type, *report.Diagnostic) {
	if env.IsBuiltin(s.Name) {
		return types.Type{}, report.NameInUseError(s.Position, s.Name, position.Position{})
	}
	if scope.HasTypeLocal(s.Name) {
		pos, _ := scope.DeclPosition(s.Name)
		return types.Type{}, report.NameInUseError(s.Position, s.Name, pos)
	}

	hasDeclared := s.Type.Name != ""
	var declared types.Type
	if hasDeclared {
		declared = typeExprToType(s.Type)
	}

	final := types.TVoid
	if s.Value != nil {
		t, err := c.checkExpression(s.Value, scope)
		if err != nil {
			return types.Type{}, err
		}
		final = t
		if hasDeclared && !declared.Equal(t) {
			return types.Type{}, report.TypeError(s.Position, declared.String(), t.String())
		}
	} else if hasDeclared {
		final = declared
	}

	scope.AddType(s.Name, final, s.Position)
	return final, nil
}

func (c *Checker) checkExpression(expr ast.Expression, scope *env.Store) (types.Type, *report.Diagnostic) {
	switch e := expr.(type) {
	case *ast.Argument:
		return typeExprToType(e.Type), nil
	case *ast.Assignment:
		return c.checkAssignment(e, scope)
	case *ast.Boolean:
		return types.TBoolean, nil
	case *ast.Call:
		return c.checkCall(e, scope)
	case *ast.Identifier:
		t, ok := scope.GetType(e.Name)
		if !ok {
			return types.Type{}, report.UnknownIdentifierError(e.Position, e.Name)
		}
		return t, nil
	case *ast.If:
		return c.checkIf(e, scope)
	case *ast.Infix:
		return c.checkInfix(e, scope)
	case *ast.Method:
		return c.checkMethod(e, scope)
	case *ast.Number:
		return types.TNumber, nil
	case *ast.Prefix:
		return c.checkPrefix(e, scope)
	case *ast.String:
		return types.TString, nil
	case *ast.Array:
		return c.checkArray(e, scope)
	case *ast.HashMap:
		return c.checkHashMap(e, scope)
	case *ast.Group:
		return c.checkExpression(e.Inner, scope)
	case *ast.Index:
		return c.checkIndex(e, scope)
	default:
		return types.Type{}, report.UnknownTokenError(expr.Pos(), expr.String())
	}
}

func (c *Checker) checkAssignment(a *ast.Assignment, scope *env.Store) (types.Type, *report.Diagnostic) {
	ident, ok := a.Target.(*ast.Identifier)
	if !ok {
		return types.Type{}, report.UnknownTokenError(a.Position, a.Target.String())
	}
	targetType, ok := scope.GetType(ident.Name)
	if !ok {
		return types.Type{}, report.UnknownIdentifierError(ident.Position, ident.Name)
	}
	valType, err := c.checkExpression(a.Value, scope)
	if err != nil {
		return types.Type{}, err
	}
	if a.Operator != token.Assign && !targetType.Equal(types.TNumber) {
		return types.Type{}, report.TypeError(a.Position, "number", targetType.String())
	}
	if !targetType.Equal(valType) {
		return types.Type{}, report.TypeError(a.Position, targetType.String(), valType.String())
	}
	return targetType, nil
}

func (c *Checker) checkIf(n *ast.If, scope *env.Store) (types.Type, *report.Diagnostic) {
	condType, err := c.checkExpression(n.Condition, scope)
	if err != nil {
		return types.Type{}, err
	}
	if !condType.Equal(types.TBoolean) {
		return types.Type{}, report.TypeError(n.Condition.Pos(), "boolean", condType.String())
	}
	thenType, err := c.checkBody(n.Then, scope.Child())
	if err != nil {
		return types.Type{}, err
	}
	if n.Else == nil {
		return types.TVoid, nil
	}
	elseType, err := c.checkBody(n.Else, scope.Child())
	if err != nil {
		return types.Type{}, err
	}
	if !thenType.Equal(elseType) {
		return types.Type{}, report.TypeError(n.Position, thenType.String(), elseType.String())
	}
	return thenType, nil
}

func (c *Checker) checkInfix(n *ast.Infix, scope *env.Store) (types.Type, *report.Diagnostic) {
	lt, err := c.checkExpression(n.Left, scope)
	if err != nil {
		return types.Type{}, err
	}
	rt, err := c.checkExpression(n.Right, scope)
	if err != nil {
		return types.Type{}, err
	}
	switch n.Operator {
	case token.Plus:
		if lt.Equal(types.TString) && rt.Equal(types.TString) {
			return types.TString, nil
		}
		if !lt.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Left.Pos(), "number", lt.String())
		}
		if !rt.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Right.Pos(), "number", rt.String())
		}
		return types.TNumber, nil
	case token.Minus, token.Asterisk, token.Slash, token.Percent, token.Exponent:
		if !lt.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Left.Pos(), "number", lt.String())
		}
		if !rt.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Right.Pos(), "number", rt.String())
		}
		return types.TNumber, nil
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		if !lt.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Left.Pos(), "number", lt.String())
		}
		if !rt.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Right.Pos(), "number", rt.String())
		}
		return types.TBoolean, nil
	case token.Eq, token.NotEq:
		if !lt.Equal(rt) {
			return types.Type{}, report.TypeError(n.Position, lt.String(), rt.String())
		}
		return types.TBoolean, nil
	case token.Or, token.And:
		if !lt.Equal(types.TBoolean) {
			return types.Type{}, report.TypeError(n.Left.Pos(), "boolean", lt.String())
		}
		if !rt.Equal(types.TBoolean) {
			return types.Type{}, report.TypeError(n.Right.Pos(), "boolean", rt.String())
		}
		return types.TBoolean, nil
	default:
		return types.Type{}, report.UnknownTokenError(n.Position, n.Operator.String())
	}
}

// checkPrefix fills in the rule spec.md §4.G leaves implicit: `-` requires
// a Number operand, `!` requires a Boolean one.
func (c *Checker) checkPrefix(n *ast.Prefix, scope *env.Store) (types.Type, *report.Diagnostic) {
	t, err := c.checkExpression(n.Operand, scope)
	if err != nil {
		return types.Type{}, err
	}
	switch n.Operator {
	case token.Minus:
		if !t.Equal(types.TNumber) {
			return types.Type{}, report.TypeError(n.Position, "number", t.String())
		}
		return types.TNumber, nil
	case token.Bang:
		if !t.Equal(types.TBoolean) {
			return types.Type{}, report.TypeError(n.Position, "boolean", t.String())
		}
		return types.TBoolean, nil
	default:
		return types.Type{}, report.UnknownTokenError(n.Position, n.Operator.String())
	}
}

func (c *Checker) checkCall(call *ast.Call, scope *env.Store) (types.Type, *report.Diagnostic) {
	if ident, ok := call.Callee.(*ast.Identifier); ok && env.IsBuiltin(ident.Name) {
		if len(call.Args) != 1 {
			return types.Type{}, report.ArityError(call.Position, 1, len(call.Args))
		}
		argType, err := c.checkExpression(call.Args[0], scope)
		if err != nil {
			return types.Type{}, err
		}
		if !argType.Equal(types.TString) {
			return types.Type{}, report.TypeError(call.Args[0].Pos(), "string", argType.String())
		}
		return types.TVoid, nil
	}

	calleeType, err := c.checkExpression(call.Callee, scope)
	if err != nil {
		return types.Type{}, err
	}
	if calleeType.Tag != types.Function {
		return types.Type{}, report.TypeError(call.Callee.Pos(), "function", calleeType.String())
	}

	min, max := len(calleeType.Params), len(calleeType.Params)
	if ident, ok := call.Callee.(*ast.Identifier); ok {
		if info, ok := c.arity[ident.Name]; ok {
			min, max = info.min, info.max
		}
	}
	if len(call.Args) < min || len(call.Args) > max {
		return types.Type{}, report.ArityError(call.Position, max, len(call.Args))
	}
	for i, a := range call.Args {
		at, err := c.checkExpression(a, scope)
		if err != nil {
			return types.Type{}, err
		}
		if i < len(calleeType.Params) && !at.Equal(calleeType.Params[i]) {
			return types.Type{}, report.TypeError(a.Pos(), calleeType.Params[i].String(), at.String())
		}
	}
	return *calleeType.Return, nil
}

// checkMethod resolves the (currently fixed) method table: a Number
// receiver exposes `toString(): string` (spec.md §4.H).
func (c *Checker) checkMethod(m *ast.Method, scope *env.Store) (types.Type, *report.Diagnostic) {
	recvType, err := c.checkExpression(m.Receiver, scope)
	if err != nil {
		return types.Type{}, err
	}
	ident, ok := m.Member.(*ast.Identifier)
	if !ok {
		return types.Type{}, report.TokenError(m.Member.Pos(), "method name", m.Member.String())
	}
	if recvType.Equal(types.TNumber) && ident.Name == "toString" {
		return types.NewFunction(nil, types.TString), nil
	}
	return types.Type{}, report.UnknownIdentifierError(m.Position, ident.Name)
}

func (c *Checker) checkArray(a *ast.Array, scope *env.Store) (types.Type, *report.Diagnostic) {
	if len(a.Elements) == 0 {
		return types.NewArray(types.TUnknown), nil
	}
	first, err := c.checkExpression(a.Elements[0], scope)
	if err != nil {
		return types.Type{}, err
	}
	for _, e := range a.Elements[1:] {
		t, err := c.checkExpression(e, scope)
		if err != nil {
			return types.Type{}, err
		}
		if !t.Equal(first) {
			return types.Type{}, report.TypeError(e.Pos(), first.String(), t.String())
		}
	}
	return types.NewArray(first), nil
}

func (c *Checker) checkHashMap(h *ast.HashMap, scope *env.Store) (types.Type, *report.Diagnostic) {
	fields := make(map[string]types.Type, len(h.Fields))
	for _, f := range h.Fields {
		t, err := c.checkExpression(f.Value, scope)
		if err != nil {
			return types.Type{}, err
		}
		fields[f.Name] = t
	}
	return types.NewHashMap(fields), nil
}

func (c *Checker) checkIndex(idx *ast.Index, scope *env.Store) (types.Type, *report.Diagnostic) {
	baseType, err := c.checkExpression(idx.Base, scope)
	if err != nil {
		return types.Type{}, err
	}
	if baseType.Tag != types.Array {
		return types.Type{}, report.TypeError(idx.Base.Pos(), "array", baseType.String())
	}
	indexType, err := c.checkExpression(idx.Index, scope)
	if err != nil {
		return types.Type{}, err
	}
	if !indexType.Equal(types.TNumber) {
		return types.Type{}, report.TypeError(idx.Index.Pos(), "number", indexType.String())
	}
	return *baseType.Elem, nil
}

func typeExprToType(t ast.TypeExpr) types.Type {
	var base types.Type
	switch t.Name {
	case "boolean":
		base = types.TBoolean
	case "string":
		base = types.TString
	case "number":
		base = types.TNumber
	case "void":
		base = types.TVoid
	case "":
		base = types.TUnknown
	default:
		base = types.NewIdentifier(t.Name)
	}
	if t.IsArray {
		return types.NewArray(base)
	}
	return base
}
