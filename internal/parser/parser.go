package parser

import (
	"strconv"

	"olive/internal/ast"
	"olive/internal/diag"
	"olive/internal/lexer"
	"olive/internal/token"
)

type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []*diag.Error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// init cur/peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole source file and returns the first syntax error, if
// any.
func Parse(src string) (*ast.Program, error) {
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return prog, nil
}

// Errors returns lexical errors followed by syntax errors.
func (p *Parser) Errors() []*diag.Error {
	errs := append([]*diag.Error{}, p.l.Errors()...)
	return append(errs, p.errors...)
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0 || len(p.l.Errors()) > 0
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, diag.Syntax(pos, format, args...))
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.cur.Kind != kind {
		p.errorf(p.cur.Pos, "expected %s, got %s (%q)", kind, p.cur.Kind, p.cur.Lexeme)
	}
	tok := p.cur
	p.nextToken()
	return tok
}

// ---------- Top-level ----------

func (p *Parser) ParseProgram() *ast.Program {
	body := &ast.Block{BlockPos: p.cur.Pos}

	for p.cur.Kind != token.EOF && !p.failed() {
		if p.cur.Kind == token.Newline {
			p.nextToken()
			continue
		}
		if p.cur.Kind == token.Indent {
			p.errorf(p.cur.Pos, "unexpected indentation")
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			body.Stmts = append(body.Stmts, stmt)
		}
	}

	return &ast.Program{Body: body}
}

// parseBlock parses the indented suite that follows a header line.
func (p *Parser) parseBlock() *ast.Block {
	p.expect(token.Newline)
	block := &ast.Block{BlockPos: p.cur.Pos}
	if p.cur.Kind != token.Indent {
		p.errorf(p.cur.Pos, "expected an indented block")
		return block
	}
	p.nextToken()

	for p.cur.Kind != token.Dedent && p.cur.Kind != token.EOF && !p.failed() {
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	p.expect(token.Dedent)
	return block
}

// ---------- Statements ----------

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.Let:
		return p.parseImmutableBinding()
	case token.Function:
		return p.parseFunctionDeclaration()
	case token.While:
		return p.parseWhileStatement()
	case token.For:
		return p.parseForStatement()
	case token.If:
		return p.parseIfStatement()
	case token.Break:
		s := &ast.BreakStatement{BreakPos: p.cur.Pos}
		p.nextToken()
		p.expect(token.Newline)
		return s
	case token.Pass:
		s := &ast.PassStatement{PassPos: p.cur.Pos}
		p.nextToken()
		p.expect(token.Newline)
		return s
	case token.Return:
		return p.parseReturnStatement()
	default:
		return p.parseSimpleStatement()
	}
}

func (p *Parser) parseImmutableBinding() ast.Stmt {
	letTok := p.expect(token.Let)

	var targets []*ast.IdExpression
	for {
		if p.cur.Kind != token.Ident {
			p.errorf(p.cur.Pos, "expected identifier after 'let', got %s", p.cur.Kind)
			return nil
		}
		targets = append(targets, &ast.IdExpression{Name: p.cur.Lexeme, NamePos: p.cur.Pos})
		p.nextToken()
		if p.cur.Kind != token.Comma {
			break
		}
		p.nextToken()
	}

	p.expect(token.Assign)
	sources := p.parseExprList()
	p.expect(token.Newline)

	return &ast.ImmutableBinding{
		Targets: targets,
		Sources: sources,
		LetPos:  letTok.Pos,
	}
}

// parseSimpleStatement handles mutable bindings and expression statements,
// which both start with an expression.
func (p *Parser) parseSimpleStatement() ast.Stmt {
	exprs := p.parseExprList()

	if p.cur.Kind != token.Assign {
		p.expect(token.Newline)
		if len(exprs) != 1 {
			p.errorf(exprs[0].Pos(), "expected '=' after target list")
			return nil
		}
		return &ast.ExpressionStatement{Expr: exprs[0]}
	}

	assignTok := p.cur
	p.nextToken()
	for _, target := range exprs {
		switch target.(type) {
		case *ast.IdExpression, *ast.SubscriptExpression:
		default:
			p.errorf(target.Pos(), "cannot assign to this expression")
			return nil
		}
	}
	sources := p.parseExprList()
	p.expect(token.Newline)

	return &ast.MutableBinding{
		Targets:   exprs,
		Sources:   sources,
		AssignPos: assignTok.Pos,
	}
}

func (p *Parser) parseWhileStatement() ast.Stmt {
	whileTok := p.expect(token.While)
	test := p.parseExpr()
	body := p.parseBlock()

	return &ast.WhileStatement{
		Test:     test,
		Body:     body,
		WhilePos: whileTok.Pos,
	}
}

func (p *Parser) parseForStatement() ast.Stmt {
	forTok := p.expect(token.For)
	if p.cur.Kind != token.Ident {
		p.errorf(p.cur.Pos, "expected loop variable after 'for'")
		return nil
	}
	v := &ast.IdExpression{Name: p.cur.Lexeme, NamePos: p.cur.Pos}
	p.nextToken()
	p.expect(token.In)
	source := p.parseExpr()
	body := p.parseBlock()

	return &ast.ForStatement{
		Var:    v,
		Source: source,
		Body:   body,
		ForPos: forTok.Pos,
	}
}

func (p *Parser) parseIfStatement() ast.Stmt {
	ifTok := p.expect(token.If)
	stmt := &ast.IfStatement{IfPos: ifTok.Pos}

	test := p.parseExpr()
	stmt.Cases = append(stmt.Cases, &ast.Case{Test: test, Body: p.parseBlock()})

	for p.cur.Kind == token.Else && !p.failed() {
		p.nextToken()
		if p.cur.Kind == token.If {
			p.nextToken()
			test := p.parseExpr()
			stmt.Cases = append(stmt.Cases, &ast.Case{Test: test, Body: p.parseBlock()})
			continue
		}
		stmt.Alternate = p.parseBlock()
		break
	}

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	retTok := p.expect(token.Return)
	stmt := &ast.ReturnStatement{ReturnPos: retTok.Pos}
	if p.cur.Kind != token.Newline {
		stmt.Value = p.parseExpr()
	}
	p.expect(token.Newline)
	return stmt
}

func (p *Parser) parseFunctionDeclaration() ast.Stmt {
	p.expect(token.Function)
	if p.cur.Kind != token.Ident {
		p.errorf(p.cur.Pos, "expected function name, got %s", p.cur.Kind)
		return nil
	}
	nameTok := p.cur
	p.nextToken()

	p.expect(token.LParen)
	var params []*ast.Parameter
	for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
		if p.cur.Kind != token.Ident {
			p.errorf(p.cur.Pos, "expected parameter name, got %s", p.cur.Kind)
			return nil
		}
		params = append(params, &ast.Parameter{Name: p.cur.Lexeme, NamePos: p.cur.Pos})
		p.nextToken()
		if p.cur.Kind != token.Comma {
			break
		}
		p.nextToken()
	}
	p.expect(token.RParen)

	annotation := p.parseAnnotation()
	body := p.parseBlock()

	return &ast.FunctionDeclaration{
		Name:       nameTok.Lexeme,
		NamePos:    nameTok.Pos,
		Params:     params,
		Annotation: annotation,
		Body:       body,
	}
}

// parseAnnotation parses `:: T1, T2 -> R` where either side may be `_`.
func (p *Parser) parseAnnotation() *ast.Annotation {
	colonTok := p.expect(token.ColonColon)
	a := &ast.Annotation{ColonPos: colonTok.Pos}

	if p.cur.Kind == token.Underscore {
		a.NoParams = true
		p.nextToken()
	} else {
		for {
			a.Params = append(a.Params, p.parseType())
			if p.cur.Kind != token.Comma {
				break
			}
			p.nextToken()
		}
	}

	p.expect(token.Arrow)

	if p.cur.Kind == token.Underscore {
		a.NoResult = true
		p.nextToken()
	} else {
		a.Result = p.parseType()
	}
	return a
}

// ---------- Types ----------

func (p *Parser) parseType() ast.TypeNode {
	tok := p.cur
	switch tok.Kind {
	case token.NumberType, token.BoolType, token.StringType, token.None, token.Ident:
		p.nextToken()
		return &ast.NamedType{Name: tok.Lexeme, NamePos: tok.Pos}

	case token.LBracket:
		p.nextToken()
		elem := p.parseType()
		p.expect(token.RBracket)
		return &ast.MatrixType{Elem: elem, LBrackPos: tok.Pos}

	case token.LParen:
		p.nextToken()
		t := &ast.TupleType{LParenPos: tok.Pos}
		for {
			t.Elems = append(t.Elems, p.parseType())
			if p.cur.Kind != token.Comma {
				break
			}
			p.nextToken()
		}
		p.expect(token.RParen)
		return t

	case token.LBrace:
		p.nextToken()
		first := p.parseType()
		if p.cur.Kind == token.Colon {
			p.nextToken()
			value := p.parseType()
			p.expect(token.RBrace)
			return &ast.DictionaryType{Key: first, Value: value, LBracePos: tok.Pos}
		}
		p.expect(token.RBrace)
		return &ast.SetType{Elem: first, LBracePos: tok.Pos}

	default:
		p.errorf(tok.Pos, "expected type, got %s", tok.Kind)
		p.nextToken()
		return &ast.NamedType{Name: tok.Lexeme, NamePos: tok.Pos}
	}
}

// ---------- Expressions ----------

func (p *Parser) parseExprList() []ast.Expr {
	exprs := []ast.Expr{p.parseExpr()}
	for p.cur.Kind == token.Comma {
		p.nextToken()
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) binary(opTok token.Token, left, right ast.Expr) ast.Expr {
	return &ast.BinaryExpression{
		OpPos: opTok.Pos,
		Op:    opTok.Kind,
		Left:  left,
		Right: right,
	}
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.cur.Kind == token.Or {
		opTok := p.cur
		p.nextToken()
		left = p.binary(opTok, left, p.parseAnd())
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.cur.Kind == token.And {
		opTok := p.cur
		p.nextToken()
		left = p.binary(opTok, left, p.parseEquality())
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.cur.Kind == token.Eq || p.cur.Kind == token.NotEq {
		opTok := p.cur
		p.nextToken()
		left = p.binary(opTok, left, p.parseRelational())
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.cur.Kind == token.Lt || p.cur.Kind == token.LtEq ||
		p.cur.Kind == token.Gt || p.cur.Kind == token.GtEq {
		opTok := p.cur
		p.nextToken()
		left = p.binary(opTok, left, p.parseAdditive())
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		opTok := p.cur
		p.nextToken()
		left = p.binary(opTok, left, p.parseMultiplicative())
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.cur.Kind == token.Star || p.cur.Kind == token.Slash ||
		p.cur.Kind == token.Percent || p.cur.Kind == token.DivMod {
		opTok := p.cur
		p.nextToken()
		left = p.binary(opTok, left, p.parseUnary())
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.Not || p.cur.Kind == token.Minus {
		opTok := p.cur
		p.nextToken()
		return &ast.UnaryExpression{
			Op:      opTok.Kind,
			OpPos:   opTok.Pos,
			Operand: p.parseUnary(),
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch p.cur.Kind {
		case token.LParen:
			callee, ok := expr.(*ast.IdExpression)
			if !ok {
				return expr
			}
			lparen := p.cur
			p.nextToken()
			var args []ast.Expr
			if p.cur.Kind != token.RParen {
				args = p.parseExprList()
			}
			p.expect(token.RParen)
			expr = &ast.FunctionCallExpression{Callee: callee, Args: args, LParenPos: lparen.Pos}

		case token.LBracket:
			lbrack := p.cur
			p.nextToken()
			index := p.parseExpr()
			p.expect(token.RBracket)
			expr = &ast.SubscriptExpression{Base: expr, Index: index, LBrackPos: lbrack.Pos}

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur

	switch tok.Kind {
	case token.Number:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid number literal %q", tok.Lexeme)
		}
		return &ast.NumberLiteral{Value: v, Raw: tok.Lexeme, LitPos: tok.Pos}

	case token.True, token.False:
		p.nextToken()
		return &ast.BooleanLiteral{Value: tok.Kind == token.True, LitPos: tok.Pos}

	case token.String:
		p.nextToken()
		return &ast.StringLiteral{Value: tok.Lexeme, LitPos: tok.Pos}

	case token.StringPart, token.InterpStart, token.StringEnd:
		return p.parseInterpolatedString()

	case token.None:
		p.nextToken()
		return &ast.NoneLiteral{LitPos: tok.Pos}

	case token.Ident:
		p.nextToken()
		return &ast.IdExpression{Name: tok.Lexeme, NamePos: tok.Pos}

	case token.LParen:
		return p.parseParenthesized()

	case token.LBracket:
		return p.parseBracketed()

	case token.LBrace:
		return p.parseBraced()

	default:
		if tok.Kind == token.Illegal {
			p.errorf(tok.Pos, "unexpected character %q", tok.Lexeme)
		} else {
			p.errorf(tok.Pos, "unexpected %s in expression", tok.Kind)
		}
		p.nextToken()
		return &ast.NoneLiteral{LitPos: tok.Pos}
	}
}

// parseParenthesized handles grouping, tuples and ranges that exclude their
// start: `(e)`, `(a, b)`, `(a ... b]`.
func (p *Parser) parseParenthesized() ast.Expr {
	open := p.expect(token.LParen)
	first := p.parseExpr()

	switch p.cur.Kind {
	case token.Ellipsis:
		return p.parseRangeRest(open, first, false)
	case token.Comma:
		elems := []ast.Expr{first}
		for p.cur.Kind == token.Comma {
			p.nextToken()
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RParen)
		return &ast.TupleExpression{Elems: elems, LParenPos: open.Pos}
	default:
		p.expect(token.RParen)
		return first
	}
}

// parseBracketed handles matrices and ranges that include their start.
func (p *Parser) parseBracketed() ast.Expr {
	open := p.expect(token.LBracket)
	if p.cur.Kind == token.RBracket {
		p.nextToken()
		return &ast.MatrixExpression{LBrackPos: open.Pos}
	}

	first := p.parseExpr()
	if p.cur.Kind == token.Ellipsis {
		return p.parseRangeRest(open, first, true)
	}

	elems := []ast.Expr{first}
	for p.cur.Kind == token.Comma {
		p.nextToken()
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBracket)
	return &ast.MatrixExpression{Elems: elems, LBrackPos: open.Pos}
}

func (p *Parser) parseRangeRest(open token.Token, start ast.Expr, inclusiveStart bool) ast.Expr {
	p.expect(token.Ellipsis)
	end := p.parseExpr()

	var step ast.Expr
	if p.cur.Kind == token.By {
		p.nextToken()
		step = p.parseExpr()
	} else {
		step = &ast.NumberLiteral{Value: 1, Raw: "1", LitPos: end.Pos()}
	}

	var inclusiveEnd bool
	switch p.cur.Kind {
	case token.RBracket:
		inclusiveEnd = true
	case token.RParen:
		inclusiveEnd = false
	default:
		p.errorf(p.cur.Pos, "expected ']' or ')' to close range, got %s", p.cur.Kind)
	}
	p.nextToken()

	return &ast.RangeExpression{
		Start:          start,
		Step:           step,
		End:            end,
		InclusiveStart: inclusiveStart,
		InclusiveEnd:   inclusiveEnd,
		OpenPos:        open.Pos,
	}
}

// parseBraced handles sets `{a, b}` and dictionaries `{k: v}`.
func (p *Parser) parseBraced() ast.Expr {
	open := p.expect(token.LBrace)
	if p.cur.Kind == token.RBrace {
		p.nextToken()
		return &ast.SetExpression{LBracePos: open.Pos}
	}

	first := p.parseExpr()
	if p.cur.Kind != token.Colon {
		elems := []ast.Expr{first}
		for p.cur.Kind == token.Comma {
			p.nextToken()
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RBrace)
		return &ast.SetExpression{Elems: elems, LBracePos: open.Pos}
	}

	dict := &ast.DictionaryExpression{LBracePos: open.Pos}
	key := first
	for {
		p.expect(token.Colon)
		dict.Entries = append(dict.Entries, &ast.KeyValue{Key: key, Value: p.parseExpr()})
		if p.cur.Kind != token.Comma {
			break
		}
		p.nextToken()
		key = p.parseExpr()
	}
	p.expect(token.RBrace)
	return dict
}

func (p *Parser) parseInterpolatedString() ast.Expr {
	startPos := p.cur.Pos
	var parts []ast.InterpolationPart

	for {
		switch p.cur.Kind {
		case token.StringPart:
			parts = append(parts, &ast.TextPart{Value: p.cur.Lexeme})
			p.nextToken()
		case token.InterpStart:
			p.nextToken()
			expr := p.parseExpr()
			parts = append(parts, &ast.Interpolation{Expr: expr})
			if p.cur.Kind != token.InterpEnd {
				p.errorf(p.cur.Pos, "expected '}' to close interpolation")
				return &ast.StringInterpolation{Parts: parts, LitPos: startPos}
			}
			p.nextToken()
		case token.StringEnd:
			p.nextToken()
			return &ast.StringInterpolation{Parts: parts, LitPos: startPos}
		default:
			p.errorf(p.cur.Pos, "unexpected token in interpolated string: %s", p.cur.Kind)
			return &ast.StringInterpolation{Parts: parts, LitPos: startPos}
		}
	}
}
