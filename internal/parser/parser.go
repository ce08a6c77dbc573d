// Package parser implements a Pratt/precedence-climbing expression parser
// wrapped by a recursive-descent statement dispatcher, grounded on the
// teacher's protocompile parser's token-vector-plus-cursor shape
// (parser/lexer.go, ast/parser.go) and on spec.md §4.E.
package parser

import (
	"github.com/sflynlang/sflync/internal/ast"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/token"
)

// Parser holds the full token vector and a zero-based cursor into it. The
// vector always ends with exactly one EndOfFile token, which every
// primitive operation below falls back to once the cursor runs past the
// real tokens.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New constructs a Parser over a complete token vector (as produced by
// internal/lexer.Lex).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes nothing itself; it consumes the given tokens into a Program.
// The parser is all-or-nothing per run: the first error aborts.
func Parse(tokens []token.Token) (*ast.Program, *report.Diagnostic) {
	p := New(tokens)
	return p.parseProgram()
}

func (p *Parser) lastReal() token.Token {
	return p.tokens[len(p.tokens)-1]
}

// at returns the token at absolute index idx, or an UnknownPosition error
// anchored at the last real token if idx runs past the vector.
func (p *Parser) at(idx int) (token.Token, *report.Diagnostic) {
	if idx < 0 || idx >= len(p.tokens) {
		return token.Token{}, report.UnknownPositionError(p.lastReal().Position)
	}
	return p.tokens[idx], nil
}

func (p *Parser) current() (token.Token, *report.Diagnostic) { return p.at(p.pos) }
func (p *Parser) peek() (token.Token, *report.Diagnostic)    { return p.at(p.pos + 1) }

// currentKind is a convenience for call sites that only care about the
// Kind and are content to treat an out-of-range cursor as EndOfFile.
func (p *Parser) currentKind() token.Kind {
	t, err := p.current()
	if err != nil {
		return token.EndOfFile
	}
	return t.Kind
}

func (p *Parser) peekKind() token.Kind {
	t, err := p.peek()
	if err != nil {
		return token.EndOfFile
	}
	return t.Kind
}

// advance returns the current token, then moves the cursor forward by one
// (clamped at the end of the vector).
func (p *Parser) advance() (token.Token, *report.Diagnostic) {
	t, err := p.current()
	if err != nil {
		return t, err
	}
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t, nil
}

// requireCurrent checks that the current token is kind and consumes it, or
// produces an ExpectToken diagnostic naming what was actually found.
func (p *Parser) requireCurrent(kind token.Kind) *report.Diagnostic {
	cur, err := p.current()
	if err != nil {
		return err
	}
	if cur.Kind != kind {
		return report.TokenError(cur.Position, kind.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return err
	}
	return nil
}

// skipEndOfLine consumes any run of EndOfLine tokens.
func (p *Parser) skipEndOfLine() {
	for p.currentKind() == token.EndOfLine {
		_, _ = p.advance()
	}
}

// skipOptionalSemicolon consumes a single trailing `;`, if present: every
// statement form in spec.md §4.E treats it as optional, since EOL/EOF also
// terminate.
func (p *Parser) skipOptionalSemicolon() {
	if p.currentKind() == token.Semicolon {
		_, _ = p.advance()
	}
}

func (p *Parser) parseProgram() (*ast.Program, *report.Diagnostic) {
	prog := &ast.Program{}
	p.skipEndOfLine()
	for p.currentKind() != token.EndOfFile {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
		p.skipOptionalSemicolon()
		p.skipEndOfLine()
	}
	return prog, nil
}

// parseStatement dispatches on the leading token. `interface` is not a
// reserved word (spec.md §6.3's keyword table omits it), so it is
// recognized contextually: an identifier spelled "interface" immediately
// followed by another identifier starts an interface declaration.
func (p *Parser) parseStatement() (ast.Statement, *report.Diagnostic) {
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	switch cur.Kind {
	case token.Func:
		return p.parseFunctionStatement()
	case token.Return:
		return p.parseReturnStatement()
	case token.Let, token.Const:
		return p.parseVariableStatement()
	case token.Identifier:
		if cur.Literal == "interface" && p.peekKind() == token.Identifier {
			return p.parseInterfaceStatement()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() (ast.Statement, *report.Diagnostic) {
	expr, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expr: expr, Position: expr.Pos()}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, *report.Diagnostic) {
	start, err := p.advance() // consume 'return'
	if err != nil {
		return nil, err
	}
	switch p.currentKind() {
	case token.Semicolon, token.EndOfLine, token.EndOfFile, token.RBrace:
		return &ast.Return{Value: nil, Position: start.Position}, nil
	}
	value, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.Return{Value: value, Position: start.Position.Join(value.Pos())}, nil
}

// parseVariableStatement parses `let`/`const` by delegating the right-hand
// side to the ordinary expression parser. A typed declaration comes back
// structurally an Argument, exactly as a function parameter does (spec.md
// §4.E: the `name: Type [= expr]` shape is shared by both positions); an
// untyped one comes back as `name = expr` (an Assignment) or a bare name.
func (p *Parser) parseVariableStatement() (ast.Statement, *report.Diagnostic) {
	start, err := p.current()
	if err != nil {
		return nil, err
	}
	mutable := start.Kind == token.Let
	if _, err := p.advance(); err != nil { // consume let/const
		return nil, err
	}
	decl, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	arg, ok := decl.(*ast.Argument)
	if !ok {
		// `let name = expr` and a bare `let name` carry no type annotation.
		arg = &ast.Argument{}
		switch d := decl.(type) {
		case *ast.Identifier:
			arg.Name = d.Name
		case *ast.Assignment:
			ident, isIdent := d.Target.(*ast.Identifier)
			if !isIdent || d.Operator != token.Assign {
				return nil, report.TokenError(decl.Pos(), "argument declaration", decl.String())
			}
			arg.Name, arg.Default = ident.Name, d.Value
		default:
			return nil, report.TokenError(decl.Pos(), "argument declaration", decl.String())
		}
	}
	return &ast.Variable{
		Mutable:  mutable,
		Name:     arg.Name,
		Type:     arg.Type,
		Value:    arg.Default,
		Position: start.Position.Join(decl.Pos()),
	}, nil
}

// parseFunctionStatement parses `func name(params)[: Type] { body }` by
// parsing `name(params)` as an ordinary expression and requiring it to be
// structurally Call(Identifier, [Argument]) — spec.md §4.E's own
// description of how the signature is recognized.
func (p *Parser) parseFunctionStatement() (ast.Statement, *report.Diagnostic) {
	start, err := p.advance() // consume 'func'
	if err != nil {
		return nil, err
	}
	sig, err := p.parseExpression(callPrec - 1)
	if err != nil {
		return nil, err
	}
	call, ok := sig.(*ast.Call)
	if !ok {
		return nil, report.TokenError(sig.Pos(), "function signature", sig.String())
	}
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return nil, report.TokenError(call.Callee.Pos(), "function name", call.Callee.String())
	}
	params := make([]*ast.Argument, len(call.Args))
	for i, a := range call.Args {
		arg, ok := a.(*ast.Argument)
		if !ok {
			return nil, report.TokenError(a.Pos(), "parameter declaration", a.String())
		}
		params[i] = arg
	}

	retType := ast.TypeExpr{} // omitted return type defaults to Unknown (spec.md §4.E)
	if p.currentKind() == token.Colon {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		retType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Name:       ident.Name,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Position:   start.Position,
	}, nil
}

func (p *Parser) parseInterfaceStatement() (ast.Statement, *report.Diagnostic) {
	start, err := p.advance() // consume the "interface" identifier
	if err != nil {
		return nil, err
	}
	nameTok, err := p.advance() // the interface's name
	if err != nil {
		return nil, err
	}
	if err := p.requireCurrent(token.LBrace); err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	var members []*ast.Argument
	for p.currentKind() != token.RBrace && p.currentKind() != token.EndOfFile {
		memberTok, err := p.advance() // consume the member name
		if err != nil {
			return nil, err
		}
		if err := p.requireCurrent(token.Colon); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		members = append(members, &ast.Argument{Name: memberTok.Literal, Type: typ, Position: memberTok.Position})
		p.skipOptionalSemicolon()
		p.skipEndOfLine()
	}
	if err := p.requireCurrent(token.RBrace); err != nil {
		return nil, err
	}
	return &ast.Interface{Name: nameTok.Literal, Members: members, Position: start.Position}, nil
}

// parseBlock parses `{ stmt... }`, consuming both braces.
func (p *Parser) parseBlock() ([]ast.Statement, *report.Diagnostic) {
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.LBrace {
		return nil, report.TokenError(cur.Position, token.LBrace.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	p.skipEndOfLine()
	var stmts []ast.Statement
	for p.currentKind() != token.RBrace && p.currentKind() != token.EndOfFile {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipOptionalSemicolon()
		p.skipEndOfLine()
	}
	cur, err = p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RBrace {
		return nil, report.TokenError(cur.Position, token.RBrace.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return stmts, nil
}

// parseTypeExpr reads one type-name token (a type keyword, or an
// identifier naming an interface), then an optional trailing `[]`.
func (p *Parser) parseTypeExpr() (ast.TypeExpr, *report.Diagnostic) {
	cur, err := p.current()
	if err != nil {
		return ast.TypeExpr{}, err
	}
	var name string
	switch cur.Kind {
	case token.Boolean:
		name = "boolean"
	case token.StringType:
		name = "string"
	case token.NumberType:
		name = "number"
	case token.Void:
		name = "void"
	case token.Identifier:
		name = cur.Literal
	default:
		return ast.TypeExpr{}, report.TokenError(cur.Position, "type name", cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return ast.TypeExpr{}, err
	}
	isArray := false
	if p.currentKind() == token.LBracket && p.peekKind() == token.RBracket {
		if _, err := p.advance(); err != nil { // consume '['
			return ast.TypeExpr{}, err
		}
		if _, err := p.advance(); err != nil { // consume ']'
			return ast.TypeExpr{}, err
		}
		isArray = true
	}
	return ast.TypeExpr{Name: name, IsArray: isArray, Position: cur.Position}, nil
}

// parseExpression is the Pratt loop: parse one prefix form, then keep
// extending it with infix/call/index/method/assignment suffixes as long as
// the next token's binding power exceeds min.
func (p *Parser) parseExpression(min precedence) (ast.Expression, *report.Diagnostic) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		cur, err := p.current()
		if err != nil {
			return nil, err
		}
		prec := precedenceOf(cur.Kind)
		if prec <= min {
			break
		}
		switch {
		case cur.Kind == token.LParen:
			left, err = p.parseCall(left)
		case cur.Kind == token.LBracket:
			left, err = p.parseIndex(left)
		case cur.Kind == token.Dot:
			left, err = p.parseMethod(left)
		case isAssignment(cur.Kind):
			left, err = p.parseAssignment(left, cur.Kind)
		case isInfix(cur.Kind):
			left, err = p.parseInfix(left, cur.Kind, prec)
		default:
			return left, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expression, *report.Diagnostic) {
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	switch cur.Kind {
	case token.NumberLit:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Number{Value: cur.Number, Position: cur.Position}, nil
	case token.StringLit:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.String{Value: cur.Literal, Position: cur.Position}, nil
	case token.True:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Boolean{Value: true, Position: cur.Position}, nil
	case token.False:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Boolean{Value: false, Position: cur.Position}, nil
	case token.Identifier:
		if p.peekKind() == token.Colon {
			return p.parseArgument()
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: cur.Literal, Position: cur.Position}, nil
	case token.Minus, token.Bang:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpression(prefixPrec)
		if err != nil {
			return nil, err
		}
		return &ast.Prefix{Operator: cur.Kind, Operand: operand, Position: cur.Position.Join(operand.Pos())}, nil
	case token.LParen:
		return p.parseGroup()
	case token.LBracket:
		return p.parseArrayLiteral()
	case token.LBrace:
		return p.parseHashMapLiteral()
	case token.If:
		return p.parseIfExpression()
	default:
		return nil, report.UnknownTokenError(cur.Position, cur.Literal)
	}
}

// parseArgument parses `name: Type [= expr]`, the shared shape for
// function parameters and `let`/`const` right-hand sides.
func (p *Parser) parseArgument() (ast.Expression, *report.Diagnostic) {
	nameTok, err := p.advance() // consume the name
	if err != nil {
		return nil, err
	}
	if _, err := p.advance(); err != nil { // consume ':'
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	var def ast.Expression
	pos := nameTok.Position.Join(typ.Position)
	if p.currentKind() == token.Assign {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		def, err = p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		pos = pos.Join(def.Pos())
	}
	return &ast.Argument{Name: nameTok.Literal, Type: typ, Default: def, Position: pos}, nil
}

func (p *Parser) parseGroup() (ast.Expression, *report.Diagnostic) {
	start, err := p.advance() // consume '('
	if err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	inner, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RParen {
		return nil, report.TokenError(cur.Position, token.RParen.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Group{Inner: inner, Position: start.Position.Join(cur.Position)}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, *report.Diagnostic) {
	start, err := p.advance() // consume '['
	if err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	var elems []ast.Expression
	for p.currentKind() != token.RBracket {
		el, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		p.skipEndOfLine()
		if p.currentKind() == token.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipEndOfLine()
			continue
		}
		break
	}
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RBracket {
		return nil, report.TokenError(cur.Position, token.RBracket.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Array{Elements: elems, Position: start.Position.Join(cur.Position)}, nil
}

func (p *Parser) parseHashMapLiteral() (ast.Expression, *report.Diagnostic) {
	start, err := p.advance() // consume '{'
	if err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	var fields []ast.HashMapField
	for p.currentKind() != token.RBrace {
		nameTok, err := p.current()
		if err != nil {
			return nil, err
		}
		if nameTok.Kind != token.Identifier {
			return nil, report.TokenError(nameTok.Position, "field name", nameTok.Kind.String())
		}
		if _, err := p.advance(); err != nil { // consume the field name
			return nil, err
		}
		if err := p.requireCurrent(token.Colon); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.HashMapField{Name: nameTok.Literal, Value: val})
		p.skipEndOfLine()
		if p.currentKind() == token.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipEndOfLine()
			continue
		}
		break
	}
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RBrace {
		return nil, report.TokenError(cur.Position, token.RBrace.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.HashMap{Fields: fields, Position: start.Position.Join(cur.Position)}, nil
}

func (p *Parser) parseIfExpression() (ast.Expression, *report.Diagnostic) {
	start, err := p.advance() // consume 'if'
	if err != nil {
		return nil, err
	}
	if err := p.requireCurrent(token.LParen); err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RParen {
		return nil, report.TokenError(cur.Position, token.RParen.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBody []ast.Statement
	saved := p.pos
	p.skipEndOfLine()
	if p.currentKind() == token.Else {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		if p.currentKind() == token.If {
			stmt, err := p.parseIfExpression()
			if err != nil {
				return nil, err
			}
			elseBody = []ast.Statement{&ast.ExpressionStatement{Expr: stmt, Position: stmt.Pos()}}
		} else {
			elseBody, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	} else {
		p.pos = saved
	}
	return &ast.If{Condition: cond, Then: thenBody, Else: elseBody, Position: start.Position}, nil
}

func (p *Parser) parseCall(left ast.Expression) (ast.Expression, *report.Diagnostic) {
	if _, err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	p.skipEndOfLine()
	var args []ast.Expression
	for p.currentKind() != token.RParen {
		arg, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipEndOfLine()
		if p.currentKind() == token.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipEndOfLine()
			continue
		}
		break
	}
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RParen {
		return nil, report.TokenError(cur.Position, token.RParen.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Call{Callee: left, Args: args, Position: left.Pos().Join(cur.Position)}, nil
}

func (p *Parser) parseIndex(left ast.Expression) (ast.Expression, *report.Diagnostic) {
	if _, err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	p.skipEndOfLine()
	idx, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	p.skipEndOfLine()
	cur, err := p.current()
	if err != nil {
		return nil, err
	}
	if cur.Kind != token.RBracket {
		return nil, report.TokenError(cur.Position, token.RBracket.String(), cur.Kind.String())
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Index{Base: left, Index: idx, Position: left.Pos().Join(cur.Position)}, nil
}

// parseMethod parses `recv.member`. The member is a single primary term
// (ordinarily a bare Identifier) without its own suffix extensions: a
// trailing call like `recv.toString()` is produced by the outer loop
// wrapping the whole Method node in a Call, not by the member absorbing it.
func (p *Parser) parseMethod(left ast.Expression) (ast.Expression, *report.Diagnostic) {
	if _, err := p.advance(); err != nil { // consume '.'
		return nil, err
	}
	member, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	return &ast.Method{Receiver: left, Member: member, Position: left.Pos().Join(member.Pos())}, nil
}

// parseAssignment is right-associative: it recurses at assignmentPrec-1 so
// a chain like `x = y = z` nests as `x = (y = z)`.
func (p *Parser) parseAssignment(left ast.Expression, op token.Kind) (ast.Expression, *report.Diagnostic) {
	if _, err := p.advance(); err != nil { // consume the operator
		return nil, err
	}
	value, err := p.parseExpression(assignmentPrec - 1)
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Target: left, Operator: op, Value: value, Position: left.Pos().Join(value.Pos())}, nil
}

// parseInfix is left-associative: it recurses at the operator's own
// precedence, so a same-precedence run like `a - b - c` nests as
// `(a - b) - c`.
func (p *Parser) parseInfix(left ast.Expression, op token.Kind, prec precedence) (ast.Expression, *report.Diagnostic) {
	if _, err := p.advance(); err != nil { // consume the operator
		return nil, err
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.Infix{Left: left, Operator: op, Right: right, Position: left.Pos().Join(right.Pos())}, nil
}
