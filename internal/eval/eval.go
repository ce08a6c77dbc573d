package eval

import (
	"fmt"
	"io"

	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/env"
	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/token"
	"github.com/sflynlang/sflync/internal/types"
)

// Evaluator walks a Program's statements against an Environment, writing
// builtin I/O to Stdout. Grounded on original_source/compiler/evaluator.rs
// for control flow (the Return envelope, unwrapped exactly once per call)
// and on funvibe-funxy/internal/evaluator for the general dispatch-by-node
// shape of a tree-walking interpreter over a shared Store.
type Evaluator struct {
	Env    *env.Environment
	Stdout io.Writer
}

// New constructs an Evaluator writing to stdout.
func New(e *env.Environment, stdout io.Writer) *Evaluator {
	return &Evaluator{Env: e, Stdout: stdout}
}

// Run evaluates every top-level statement. An error aborts only the
// statement that produced it; evaluation continues with the next one
// (spec.md §4.H). It returns the process exit status: 0 if nothing was
// logged, 1 otherwise.
func (ev *Evaluator) Run(prog *ast.Program) int {
	for _, stmt := range prog.Statements {
		if _, err := ev.evalStatement(stmt, ev.Env.Store); err != nil {
			ev.Env.AddError(err)
		}
	}
	if ev.Env.HasErrors() {
		return 1
	}
	return 0
}

func (ev *Evaluator) evalStatement(stmt ast.Statement, scope *env.Store) (Object, *report.Diagnostic) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return ev.evalExpression(s.Expr, scope)
	case *ast.Return:
		var val Object = &Void{Position: s.Position}
		if s.Value != nil {
			v, err := ev.evalExpression(s.Value, scope)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &Return{Inner: val, Position: s.Position}, nil
	case *ast.Function:
		return ev.evalFunctionStatement(s, scope)
	case *ast.Variable:
		return ev.evalVariableStatement(s, scope)
	case *ast.Interface:
		// Parsed but not consumed by the evaluator (spec.md §9 open question).
		return &Void{Position: s.Position}, nil
	default:
		return nil, report.UnknownTokenError(stmt.Pos(), stmt.String())
	}
}

// evalBody evaluates a braced statement sequence in scope, returning as
// soon as a Return envelope surfaces, unwrapped exactly once.
func (ev *Evaluator) evalBody(body []ast.Statement, scope *env.Store) (Object, *report.Diagnostic) {
	var last Object
	for _, stmt := range body {
		v, err := ev.evalStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		if ret, ok := v.(*Return); ok {
			return ret.Inner, nil
		}
		last = v
	}
	if last == nil {
		return &Unknown{}, nil
	}
	return &Void{}, nil
}

func (ev *Evaluator) evalFunctionStatement(s *ast.Function, scope *env.Store) (Object, *report.Diagnostic) {
	if env.IsBuiltin(s.Name) {
		return nil, report.NameInUseError(s.Position, s.Name, position.Position{})
	}
	if scope.HasValueLocal(s.Name) {
		pos, _ := scope.DeclPosition(s.Name)
		return nil, report.NameInUseError(s.Position, s.Name, pos)
	}

	fnScope := scope.Child()
	fn := &Function{
		Params:     map[string]Object{},
		ParamTypes: map[string]types.Type{},
		ReturnType: typeExprToType(s.ReturnType),
		Body:       s.Body,
		Closure:    fnScope,
		Position:   s.Position,
	}
	for _, p := range s.Params {
		val, err := ev.evalArgumentDecl(p, fnScope)
		if err != nil {
			return nil, err
		}
		fn.ParamOrder = append(fn.ParamOrder, p.Name)
		fn.Params[p.Name] = val
		fn.ParamTypes[p.Name] = typeExprToType(p.Type)
	}

	scope.AddValueDecl(s.Name, fn, false)
	return fn, nil
}

func (ev *Evaluator) evalVariableStatement(s *ast.Variable, scope *env.Store) (Object, *report.Diagnostic) {
	if env.IsBuiltin(s.Name) {
		return nil, report.NameInUseError(s.Position, s.Name, position.Position{})
	}
	if scope.HasValueLocal(s.Name) {
		pos, _ := scope.DeclPosition(s.Name)
		return nil, report.NameInUseError(s.Position, s.Name, pos)
	}
	var val Object = &Void{Position: s.Position}
	if s.Value != nil {
		v, err := ev.evalExpression(s.Value, scope)
		if err != nil {
			return nil, err
		}
		val = v
	}
	scope.AddValueDecl(s.Name, val, s.Mutable)
	return val, nil
}

// evalArgumentDecl binds an Argument's name in scope: to its evaluated
// default if one is present, or to Unknown otherwise (spec.md §4.H).
func (ev *Evaluator) evalArgumentDecl(a *ast.Argument, scope *env.Store) (Object, *report.Diagnostic) {
	if env.IsBuiltin(a.Name) {
		return nil, report.NameInUseError(a.Position, a.Name, position.Position{})
	}
	if scope.HasValueLocal(a.Name) {
		pos, _ := scope.DeclPosition(a.Name)
		return nil, report.NameInUseError(a.Position, a.Name, pos)
	}
	var val Object = &Unknown{Position: a.Position}
	if a.Default != nil {
		v, err := ev.evalExpression(a.Default, scope)
		if err != nil {
			return nil, err
		}
		val = v
	}
	scope.AddValue(a.Name, val)
	return val, nil
}

func (ev *Evaluator) evalExpression(expr ast.Expression, scope *env.Store) (Object, *report.Diagnostic) {
	switch e := expr.(type) {
	case *ast.Argument:
		return ev.evalArgumentDecl(e, scope)
	case *ast.Assignment:
		return ev.evalAssignment(e, scope)
	case *ast.Boolean:
		return &Boolean{Value: e.Value, Position: e.Position}, nil
	case *ast.Call:
		return ev.evalCall(e, scope)
	case *ast.Identifier:
		return ev.evalIdentifier(e, scope)
	case *ast.If:
		return ev.evalIf(e, scope)
	case *ast.Infix:
		return ev.evalInfix(e, scope)
	case *ast.Method:
		return ev.evalMethod(e, scope)
	case *ast.Number:
		return &Number{Value: int64(e.Value), Position: e.Position}, nil
	case *ast.Prefix:
		return ev.evalPrefix(e, scope)
	case *ast.String:
		return &String{Value: e.Value, Position: e.Position}, nil
	case *ast.Array:
		return ev.evalArray(e, scope)
	case *ast.HashMap:
		return ev.evalHashMap(e, scope)
	case *ast.Group:
		return ev.evalExpression(e.Inner, scope)
	case *ast.Index:
		return ev.evalIndex(e, scope)
	default:
		return nil, report.UnknownTokenError(expr.Pos(), expr.String())
	}
}

func (ev *Evaluator) evalIdentifier(id *ast.Identifier, scope *env.Store) (Object, *report.Diagnostic) {
	if v, ok := scope.GetValue(id.Name); ok {
		return v.(Object), nil
	}
	return nil, report.UnknownIdentifierError(id.Position, id.Name)
}

func (ev *Evaluator) evalIf(n *ast.If, scope *env.Store) (Object, *report.Diagnostic) {
	cond, err := ev.evalExpression(n.Condition, scope)
	if err != nil {
		return nil, err
	}
	body := n.Else
	if Truthy(cond) {
		body = n.Then
	}
	// A Return from the taken branch stays wrapped; the call frame unwraps it.
	branchScope := scope.Child()
	for _, stmt := range body {
		v, err := ev.evalStatement(stmt, branchScope)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(*Return); ok {
			return v, nil
		}
	}
	return &Void{Position: n.Position}, nil
}

func (ev *Evaluator) evalAssignment(a *ast.Assignment, scope *env.Store) (Object, *report.Diagnostic) {
	ident, ok := a.Target.(*ast.Identifier)
	if !ok {
		return nil, report.UnknownTokenError(a.Position, a.Target.String())
	}
	rhs, err := ev.evalExpression(a.Value, scope)
	if err != nil {
		return nil, err
	}

	val := rhs
	if a.Operator != token.Assign {
		cur, ok := scope.GetValue(ident.Name)
		if !ok {
			return nil, report.UnknownIdentifierError(ident.Position, ident.Name)
		}
		val, err = applyCompound(a.Operator, cur.(Object), rhs, a.Position)
		if err != nil {
			return nil, err
		}
	}

	if !scope.HasValue(ident.Name) {
		return nil, report.UnknownIdentifierError(ident.Position, ident.Name)
	}
	if !scope.IsMutable(ident.Name) {
		return nil, report.LexError(a.Position, fmt.Sprintf("cannot assign to const %q", ident.Name))
	}
	scope.SetValue(ident.Name, val)
	return val, nil
}

func applyCompound(op token.Kind, cur, rhs Object, pos position.Position) (Object, *report.Diagnostic) {
	base := op
	switch op {
	case token.PlusAssign:
		base = token.Plus
	case token.MinusAssign:
		base = token.Minus
	case token.AsteriskAssign:
		base = token.Asterisk
	case token.SlashAssign:
		base = token.Slash
	case token.PercentAssign:
		base = token.Percent
	case token.ExponentAssign:
		base = token.Exponent
	}
	return evalInfixValues(base, cur, rhs, pos)
}

func (ev *Evaluator) evalInfix(n *ast.Infix, scope *env.Store) (Object, *report.Diagnostic) {
	l, err := ev.evalExpression(n.Left, scope)
	if err != nil {
		return nil, err
	}
	// || and && short-circuit: the right operand is only evaluated when its
	// value could still change the result.
	if n.Operator == token.Or || n.Operator == token.And {
		lb, ok := l.(*Boolean)
		if !ok {
			return nil, report.TypeError(n.Left.Pos(), "boolean", l.Type().String())
		}
		if n.Operator == token.Or && lb.Value {
			return &Boolean{Value: true, Position: n.Position}, nil
		}
		if n.Operator == token.And && !lb.Value {
			return &Boolean{Value: false, Position: n.Position}, nil
		}
		r, err := ev.evalExpression(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return evalInfixValues(n.Operator, l, r, n.Position)
	}
	r, err := ev.evalExpression(n.Right, scope)
	if err != nil {
		return nil, err
	}
	return evalInfixValues(n.Operator, l, r, n.Position)
}

func evalInfixValues(op token.Kind, l, r Object, pos position.Position) (Object, *report.Diagnostic) {
	switch op {
	case token.Plus:
		if ls, ok := l.(*String); ok {
			if rs, ok := r.(*String); ok {
				return &String{Value: ls.Value + rs.Value, Position: pos}, nil
			}
		}
		ln, rn := l.(*Number), r.(*Number)
		return &Number{Value: ln.Value + rn.Value, Position: pos}, nil
	case token.Minus:
		ln, rn := l.(*Number), r.(*Number)
		return &Number{Value: ln.Value - rn.Value, Position: pos}, nil
	case token.Asterisk:
		ln, rn := l.(*Number), r.(*Number)
		return &Number{Value: ln.Value * rn.Value, Position: pos}, nil
	case token.Slash:
		ln, rn := l.(*Number), r.(*Number)
		if rn.Value == 0 {
			return nil, report.TypeError(pos, "nonzero number", "0")
		}
		return &Number{Value: ln.Value / rn.Value, Position: pos}, nil
	case token.Percent:
		ln, rn := l.(*Number), r.(*Number)
		if rn.Value == 0 {
			return nil, report.TypeError(pos, "nonzero number", "0")
		}
		return &Number{Value: ln.Value % rn.Value, Position: pos}, nil
	case token.Exponent:
		ln, rn := l.(*Number), r.(*Number)
		return &Number{Value: intPow(ln.Value, rn.Value), Position: pos}, nil
	case token.Lt:
		ln, rn := l.(*Number), r.(*Number)
		return &Boolean{Value: ln.Value < rn.Value, Position: pos}, nil
	case token.LtEq:
		ln, rn := l.(*Number), r.(*Number)
		return &Boolean{Value: ln.Value <= rn.Value, Position: pos}, nil
	case token.Gt:
		ln, rn := l.(*Number), r.(*Number)
		return &Boolean{Value: ln.Value > rn.Value, Position: pos}, nil
	case token.GtEq:
		ln, rn := l.(*Number), r.(*Number)
		return &Boolean{Value: ln.Value >= rn.Value, Position: pos}, nil
	case token.Eq:
		return &Boolean{Value: objectsEqual(l, r), Position: pos}, nil
	case token.NotEq:
		return &Boolean{Value: !objectsEqual(l, r), Position: pos}, nil
	case token.Or:
		lb, rb := l.(*Boolean), r.(*Boolean)
		return &Boolean{Value: lb.Value || rb.Value, Position: pos}, nil
	case token.And:
		lb, rb := l.(*Boolean), r.(*Boolean)
		return &Boolean{Value: lb.Value && rb.Value, Position: pos}, nil
	default:
		return nil, report.UnknownTokenError(pos, op.String())
	}
}

func objectsEqual(l, r Object) bool {
	switch lv := l.(type) {
	case *Number:
		rv, ok := r.(*Number)
		return ok && lv.Value == rv.Value
	case *String:
		rv, ok := r.(*String)
		return ok && lv.Value == rv.Value
	case *Boolean:
		rv, ok := r.(*Boolean)
		return ok && lv.Value == rv.Value
	case *Void:
		_, ok := r.(*Void)
		return ok
	default:
		return false
	}
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		exp = 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func (ev *Evaluator) evalPrefix(n *ast.Prefix, scope *env.Store) (Object, *report.Diagnostic) {
	v, err := ev.evalExpression(n.Operand, scope)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case token.Minus:
		num := v.(*Number)
		return &Number{Value: -num.Value, Position: n.Position}, nil
	case token.Bang:
		return &Boolean{Value: !Truthy(v), Position: n.Position}, nil
	default:
		return nil, report.UnknownTokenError(n.Position, n.Operator.String())
	}
}

func (ev *Evaluator) evalCall(c *ast.Call, scope *env.Store) (Object, *report.Diagnostic) {
	if ident, ok := c.Callee.(*ast.Identifier); ok && env.IsBuiltin(ident.Name) {
		return ev.evalBuiltinCall(ident.Name, c, scope)
	}

	calleeObj, err := ev.evalExpression(c.Callee, scope)
	if err != nil {
		return nil, err
	}
	callable, ok := calleeObj.(Callable)
	if !ok {
		return nil, report.UnknownIdentifierError(c.Position, c.Callee.String())
	}

	args := make([]Object, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.evalExpression(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return callable.Invoke(ev, args, c.Position)
}

func (ev *Evaluator) evalBuiltinCall(name string, c *ast.Call, scope *env.Store) (Object, *report.Diagnostic) {
	args := make([]Object, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.evalExpression(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	s := ""
	if len(args) > 0 {
		if str, ok := args[0].(*String); ok {
			s = str.Value
		}
	}
	switch name {
	case "print":
		fmt.Fprintln(ev.Stdout, s)
	case "debug":
		if ev.Env.DebugMode {
			fmt.Fprintln(ev.Stdout, s)
		}
	}
	return &Void{Position: c.Position}, nil
}

func (ev *Evaluator) evalMethod(m *ast.Method, scope *env.Store) (Object, *report.Diagnostic) {
	recv, err := ev.evalExpression(m.Receiver, scope)
	if err != nil {
		return nil, err
	}
	methodScope := scope.Child()
	if num, ok := recv.(*Number); ok {
		seedNumberMethods(methodScope, num)
	}
	return ev.evalExpression(m.Member, methodScope)
}

func (ev *Evaluator) evalArray(a *ast.Array, scope *env.Store) (Object, *report.Diagnostic) {
	elems := make([]Object, len(a.Elements))
	for i, e := range a.Elements {
		v, err := ev.evalExpression(e, scope)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &Array{Elements: elems, Position: a.Position}, nil
}

func (ev *Evaluator) evalHashMap(h *ast.HashMap, scope *env.Store) (Object, *report.Diagnostic) {
	fields := make(map[string]Object, len(h.Fields))
	for _, f := range h.Fields {
		v, err := ev.evalExpression(f.Value, scope)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = v
	}
	return &HashMap{Fields: fields, Position: h.Position}, nil
}

func (ev *Evaluator) evalIndex(i *ast.Index, scope *env.Store) (Object, *report.Diagnostic) {
	base, err := ev.evalExpression(i.Base, scope)
	if err != nil {
		return nil, err
	}
	idx, err := ev.evalExpression(i.Index, scope)
	if err != nil {
		return nil, err
	}
	arr, ok := base.(*Array)
	if !ok {
		return nil, report.TypeError(i.Position, "array", base.Type().String())
	}
	n, ok := idx.(*Number)
	if !ok {
		return nil, report.TypeError(i.Position, "number", idx.Type().String())
	}
	if n.Value < 0 || int(n.Value) >= len(arr.Elements) {
		return nil, report.TypeError(i.Position, "index in range", n.ValueString())
	}
	return arr.Elements[n.Value], nil
}

// seedNumberMethods materializes the number-method table (spec.md §4.H:
// "initially { toString: () => String }") into scope, bound against the
// specific receiver num.
func seedNumberMethods(scope *env.Store, num *Number) {
	scope.AddValue("toString", &NativeFunction{
		Name:       "toString",
		Arity:      0,
		ReturnType: types.TString,
		Position:   num.Position,
		Fn: func(args []Object) (Object, *report.Diagnostic) {
			return &String{Value: num.ValueString(), Position: num.Position}, nil
		},
	})
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
		// Omitted entirely (no `: Type` clause) — spec.md §4.E default.
		base = types.TUnknown
	default:
		base = types.NewIdentifier(t.Name)
	}
	if t.IsArray {
		return types.NewArray(base)
	}
	return base
}
