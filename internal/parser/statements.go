package parser

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/pkg/token"
)

var assignOps = map[token.Kind]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	prevNoStructLit := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = prevNoStructLit }()
	start := p.expect(token.LBRACE).Span
	b := &ast.BlockStmt{Sp: start}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		b.Stmts = append(b.Stmts, p.parseStmtSafely())
	}
	end := p.expect(token.RBRACE)
	b.Sp = joinSpan(start, end.Span)
	return b
}

func (p *Parser) parseStmtSafely() (s ast.Stmt) {
	defer p.recover()
	return p.parseStmt()
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.LET:
		return p.parseLet()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		sp := p.cur.Span
		p.next()
		p.expect(token.SEMI)
		return &ast.BreakStmt{Sp: sp}
	case token.CONTINUE:
		sp := p.cur.Span
		p.next()
		p.expect(token.SEMI)
		return &ast.ContinueStmt{Sp: sp}
	case token.DEFER:
		sp := p.cur.Span
		p.next()
		call := p.parseExpr(LOWEST)
		p.expect(token.SEMI)
		return &ast.DeferStmt{Call: call, Sp: sp}
	case token.IF:
		if p.peekIs(token.LET) {
			return p.parseIfLet()
		}
		return p.parseIfStmt()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.LOOP:
		return p.parseLoop()
	case token.UNSAFE:
		sp := p.cur.Span
		p.next()
		return &ast.UnsafeStmt{Body: p.parseBlock(), Sp: sp}
	case token.LBRACE:
		return p.parseBlock()
	}
	return p.parseExprOrAssignStmt()
}

func (p *Parser) parseLet() ast.Stmt {
	start := p.expect(token.LET).Span
	mutable := p.consumeBang()
	name := p.expect(token.IDENT).Literal
	var typ ast.TypeExpr
	if p.curIs(token.COLON) {
		p.next()
		typ = p.parseType()
	}
	p.expect(token.ASSIGN)
	val := p.parseExpr(LOWEST)
	p.expect(token.SEMI)
	return &ast.LetStmt{Name: name, Mutable: mutable, Type: typ, Value: val, Sp: start}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.expect(token.RETURN).Span
	if p.curIs(token.SEMI) {
		p.next()
		return &ast.ReturnStmt{Sp: start}
	}
	v := p.parseExpr(LOWEST)
	p.expect(token.SEMI)
	return &ast.ReturnStmt{Value: v, Sp: start}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	e := p.parseIfExpr().(*ast.IfExpr)
	// a trailing `;` is optional after a block-form `if` used as a statement
	if p.curIs(token.SEMI) {
		p.next()
	}
	return &ast.ExprStmt{X: e, Sp: e.Sp}
}

func (p *Parser) parseIfLet() ast.Stmt {
	start := p.expect(token.IF).Span
	p.expect(token.LET)
	pat := p.parsePattern()
	p.expect(token.ASSIGN)
	val := p.parseExprNoStructLit()
	var guard ast.Expr
	if p.curIs(token.IF) {
		p.next()
		guard = p.parseExprNoStructLit()
	}
	then := p.parseBlock()
	s := &ast.IfLetStmt{Pattern: pat, Value: val, Guard: guard, Then: then, Sp: start}
	if p.curIs(token.ELSE) {
		p.next()
		if p.curIs(token.IF) && p.peekIs(token.LET) {
			s.Else = p.parseIfLet()
		} else {
			s.Else = p.parseBlock()
		}
	}
	return s
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.expect(token.FOR).Span
	binding := p.expect(token.IDENT).Literal
	p.expect(token.IN)
	iter := p.parseExprNoStructLit()
	body := p.parseBlock()
	return &ast.ForStmt{Binding: binding, Iter: iter, Body: body, Sp: start}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.expect(token.WHILE).Span
	cond := p.parseExprNoStructLit()
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Sp: start}
}

func (p *Parser) parseLoop() ast.Stmt {
	start := p.cur.Span
	p.next() // "loop"
	body := p.parseBlock()
	return &ast.LoopStmt{Body: body, Sp: start}
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur.Span
	x := p.parseExpr(LOWEST)
	if assignOps[p.cur.Kind] {
		op := p.cur.Kind
		p.next()
		val := p.parseExpr(LOWEST)
		p.expect(token.SEMI)
		return &ast.AssignStmt{Target: x, Op: op, Value: val, Sp: start}
	}
	// A block-like expression (if/match/block) needs no semicolon, and
	// neither does the last expression of a block, which becomes the
	// block's value; any other expression statement requires one.
	if p.curIs(token.SEMI) {
		p.next()
		return &ast.ExprStmt{X: x, Sp: start}
	}
	if isBlockLike(x) || p.curIs(token.RBRACE) {
		return &ast.ExprStmt{X: x, Sp: start}
	}
	p.fail(diag.ParseMissingDelim, p.cur.Span, "expected ';' after expression statement")
	return nil
}

func isBlockLike(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IfExpr, *ast.MatchExpr, *ast.BlockExpr:
		return true
	}
	return false
}
