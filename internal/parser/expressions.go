package parser

import (
	"strconv"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/pkg/token"
)

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return LOWEST
}

// parseExpr is the Pratt-parser entry point: a prefix term followed by
// zero or more infix continuations bound by precedence.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for {
		prec, ok := precedences[p.cur.Kind]
		if !ok || prec <= minPrec {
			break
		}
		left = p.parseInfix(left, prec)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case token.INT:
		p.next()
		v, _ := strconv.ParseInt(strings.ReplaceAll(tok.Literal, "_", ""), 10, 64)
		return &ast.IntLiteral{Value: v, Suffix: tok.Suffix, Sp: tok.Span}
	case token.FLOAT:
		p.next()
		v, _ := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
		return &ast.FloatLiteral{Value: v, Suffix: tok.Suffix, Sp: tok.Span}
	case token.STRING:
		p.next()
		return &ast.StringLiteral{Value: tok.Literal, Sp: tok.Span}
	case token.INTERP_STRING:
		p.next()
		return p.parseInterpString(tok)
	case token.TRUE:
		p.next()
		return &ast.BoolLiteral{Value: true, Sp: tok.Span}
	case token.FALSE:
		p.next()
		return &ast.BoolLiteral{Value: false, Sp: tok.Span}
	case token.NIL:
		p.next()
		return &ast.NilLiteral{Sp: tok.Span}
	case token.IDENT:
		p.next()
		id := &ast.Ident{Name: tok.Literal, Sp: tok.Span}
		if p.curIs(token.LBRACE) && !p.noStructLit {
			return p.parseStructLiteral(id)
		}
		return id
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.BANG, token.MINUS:
		p.next()
		operand := p.parseExpr(UNARY)
		return &ast.UnaryExpr{Op: tok.Kind, Operand: operand, Sp: joinSpan(tok.Span, operand.Span())}
	case token.STAR:
		p.next()
		operand := p.parseExpr(UNARY)
		return &ast.UnaryExpr{Op: tok.Kind, Operand: operand, Sp: joinSpan(tok.Span, operand.Span())}
	case token.AMP:
		p.next()
		// `&x!` and `&!x` both take a mutable borrow, mirroring the two
		// accepted reference-type spellings.
		prefixMut := p.consumeBang()
		operand := p.parseExpr(UNARY)
		mut := prefixMut || p.consumeBang()
		return &ast.UnaryExpr{Op: token.AMP, Operand: operand, RefMut: mut, Sp: joinSpan(tok.Span, operand.Span())}
	case token.IF:
		return p.parseIfExpr()
	case token.MATCH:
		return p.parseMatchExpr()
	case token.LBRACE:
		return &ast.BlockExpr{Block: p.parseBlock()}
	case token.AWAIT:
		p.next()
		operand := p.parseExpr(UNARY)
		return &ast.AwaitExpr{Operand: operand, Sp: joinSpan(tok.Span, operand.Span())}
	case token.GO:
		p.next()
		callee := p.parseExpr(CALLPREC)
		call, ok := callee.(*ast.CallExpr)
		if !ok {
			p.fail(diag.ParseUnexpectedToken, callee.Span(), "'go' requires a call expression (§5)")
		}
		return &ast.GoExpr{Call: call, Sp: joinSpan(tok.Span, callee.Span())}
	case token.DOTDOT, token.DOTDOTEQ:
		return p.parseRangeFrom(nil)
	default:
		p.fail(diag.ParseUnexpectedToken, tok.Span, "unexpected token "+tok.Kind.String()+" in expression")
		return nil
	}
}

func (p *Parser) parseInterpString(tok token.Token) ast.Expr {
	lit := &ast.InterpStringLiteral{Sp: tok.Span}
	s := tok.Literal
	for {
		i := strings.IndexByte(s, '{')
		if i < 0 {
			lit.Parts = append(lit.Parts, ast.InterpStringPart{Text: s})
			break
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			lit.Parts = append(lit.Parts, ast.InterpStringPart{Text: s})
			break
		}
		if i > 0 {
			lit.Parts = append(lit.Parts, ast.InterpStringPart{Text: s[:i]})
		}
		inner := s[i+1 : i+j]
		sub := New(tok.Span.File, lexer.New(tok.Span.File, inner), p.sink)
		lit.Parts = append(lit.Parts, ast.InterpStringPart{Expr: sub.parseExpr(LOWEST)})
		s = s[i+j+1:]
	}
	return lit
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.cur.Span
	p.next()
	prev := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = prev }()
	if p.curIs(token.RPAREN) {
		end := p.cur.Span
		p.next()
		return &ast.TupleLiteralExpr{Sp: joinSpan(start, end)}
	}
	first := p.parseExpr(LOWEST)
	if !p.curIs(token.COMMA) {
		p.expect(token.RPAREN)
		return first
	}
	elems := []ast.Expr{first}
	for p.curIs(token.COMMA) {
		p.next()
		if p.curIs(token.RPAREN) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	end := p.expect(token.RPAREN)
	return &ast.TupleLiteralExpr{Elems: elems, Sp: joinSpan(start, end.Span)}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.cur.Span
	p.next()
	prev := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = prev }()
	if p.curIs(token.RBRACKET) {
		end := p.cur.Span
		p.next()
		return &ast.ArrayLiteralExpr{Sp: joinSpan(start, end)}
	}
	first := p.parseExpr(LOWEST)
	if p.curIs(token.SEMI) {
		p.next()
		count := p.parseExpr(LOWEST)
		end := p.expect(token.RBRACKET)
		return &ast.ArrayLiteralExpr{Repeat: first, Count: count, Sp: joinSpan(start, end.Span)}
	}
	elems := []ast.Expr{first}
	for p.curIs(token.COMMA) {
		p.next()
		if p.curIs(token.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	end := p.expect(token.RBRACKET)
	return &ast.ArrayLiteralExpr{Elems: elems, Sp: joinSpan(start, end.Span)}
}

func (p *Parser) parseRangeFrom(from ast.Expr) ast.Expr {
	inclusive := p.curIs(token.DOTDOTEQ)
	start := p.cur.Span
	p.next()
	var to ast.Expr
	if !rangeTerminator(p.cur.Kind) {
		to = p.parseExpr(RANGE)
	}
	sp := start
	if from != nil {
		sp = joinSpan(from.Span(), sp)
	}
	return &ast.RangeExpr{From: from, To: to, Inclusive: inclusive, Sp: sp}
}

func rangeTerminator(k token.Kind) bool {
	switch k {
	case token.RPAREN, token.RBRACKET, token.RBRACE, token.SEMI, token.COMMA, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	switch p.cur.Kind {
	case token.LPAREN:
		return p.parseCall(left)
	case token.LBRACKET:
		return p.parseIndex(left)
	case token.DOT:
		return p.parseFieldOrMethod(left)
	case token.COLONCOLON:
		return p.parseVariantRef(left)
	case token.DOTDOT, token.DOTDOTEQ:
		return p.parseRangeFrom(left)
	case token.AS:
		p.next()
		target := p.parseType()
		return &ast.CastExpr{Operand: left, Target: target, Sp: joinSpan(left.Span(), target.Span())}
	default:
		op := p.cur.Kind
		p.next()
		right := p.parseExpr(prec)
		return &ast.BinaryExpr{Op: op, Left: left, Right: right, Sp: joinSpan(left.Span(), right.Span())}
	}
}

// parseExprNoStructLit reads a `match`/`if`/`while`/`for` header
// expression, where `Name {` must open the construct's block rather than
// a struct literal. Parenthesized and nested-brace positions restore the
// normal rule.
func (p *Parser) parseExprNoStructLit() ast.Expr {
	prev := p.noStructLit
	p.noStructLit = true
	e := p.parseExpr(LOWEST)
	p.noStructLit = prev
	return e
}

func (p *Parser) parseStructLiteral(name *ast.Ident) ast.Expr {
	p.expect(token.LBRACE)
	prev := p.noStructLit
	p.noStructLit = false
	lit := &ast.StructLiteralExpr{Type: name.Name, Sp: name.Sp}
	for !p.curIs(token.RBRACE) {
		fname := p.expect(token.IDENT).Literal
		p.expect(token.COLON)
		value := p.parseExpr(LOWEST)
		lit.Fields = append(lit.Fields, ast.StructLiteralField{Name: fname, Value: value})
		if p.curIs(token.COMMA) {
			p.next()
		} else if !p.curIs(token.RBRACE) {
			p.fail(diag.ParseMissingDelim, p.cur.Span, "expected ',' or '}' in struct literal")
		}
	}
	end := p.expect(token.RBRACE)
	p.noStructLit = prev
	lit.Sp = joinSpan(name.Sp, end.Span)
	return lit
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.next()
	prev := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = prev }()
	var args []ast.Expr
	for !p.curIs(token.RPAREN) {
		args = append(args, p.parseExpr(LOWEST))
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	end := p.expect(token.RPAREN)
	return &ast.CallExpr{Callee: callee, Args: args, Sp: joinSpan(callee.Span(), end.Span)}
}

func (p *Parser) parseIndex(recv ast.Expr) ast.Expr {
	p.next()
	prev := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = prev }()
	idx := p.parseExpr(LOWEST)
	end := p.expect(token.RBRACKET)
	return &ast.IndexExpr{Receiver: recv, Index: idx, Sp: joinSpan(recv.Span(), end.Span)}
}

func (p *Parser) parseFieldOrMethod(recv ast.Expr) ast.Expr {
	p.next()
	name := p.expect(token.IDENT).Literal
	if p.curIs(token.LPAREN) {
		p.next()
		var args []ast.Expr
		for !p.curIs(token.RPAREN) {
			args = append(args, p.parseExpr(LOWEST))
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		end := p.expect(token.RPAREN)
		return &ast.MethodCallExpr{Receiver: recv, Method: name, Args: args, Sp: joinSpan(recv.Span(), end.Span)}
	}
	return &ast.FieldAccessExpr{Receiver: recv, Field: name, Sp: recv.Span()}
}

// parseVariantRef handles `x::Variant` resolving to an enum variant
// constructor (§4.4). `left` must be an identifier naming the enum.
func (p *Parser) parseVariantRef(left ast.Expr) ast.Expr {
	p.next()
	enumIdent, ok := left.(*ast.Ident)
	if !ok {
		p.fail(diag.ParseUnexpectedToken, left.Span(), "'::' requires an enum type name on the left")
	}
	variant := p.expect(token.IDENT).Literal
	var args []ast.Expr
	if p.curIs(token.LPAREN) {
		p.next()
		for !p.curIs(token.RPAREN) {
			args = append(args, p.parseExpr(LOWEST))
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		p.next()
	}
	return &ast.VariantExpr{Enum: enumIdent.Name, Variant: variant, Args: args, Sp: left.Span()}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.expect(token.IF).Span
	cond := p.parseExprNoStructLit()
	then := p.parseBlock()
	e := &ast.IfExpr{Cond: cond, Then: then, Sp: start}
	if p.curIs(token.ELSE) {
		p.next()
		if p.curIs(token.IF) {
			e.Else = p.parseIfExpr()
		} else {
			e.Else = p.parseBlock()
		}
	}
	return e
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.expect(token.MATCH).Span
	scrutinee := p.parseExprNoStructLit()
	p.expect(token.LBRACE)
	m := &ast.MatchExpr{Scrutinee: scrutinee, Sp: start}
	for !p.curIs(token.RBRACE) {
		arm := p.parseMatchArm()
		m.Arms = append(m.Arms, arm)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return m
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	arm := &ast.MatchArm{}
	if p.curIs(token.IDENT) && p.cur.Literal == "_" {
		p.next()
		arm.Wildcard = true
	} else {
		arm.Pattern = p.parsePattern()
	}
	if p.curIs(token.IF) {
		p.next()
		arm.Guard = p.parseExpr(LOWEST)
	}
	p.expect(token.FATARROW)
	if p.curIs(token.LBRACE) {
		arm.Body = p.parseBlock()
	} else {
		arm.Body = p.parseExpr(LOWEST)
	}
	return arm
}

func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur.Span
	if p.curIs(token.IDENT) {
		name := p.cur.Literal
		// Both `Enum::Variant` and the equivalent `Enum.Variant` call
		// form are accepted in pattern position (§4.4).
		if p.peekIs(token.COLONCOLON) || p.peekIs(token.DOT) {
			p.next()
			p.next()
			variant := p.expect(token.IDENT).Literal
			vp := &ast.VariantPattern{Enum: name, Variant: variant, Sp: start}
			if p.curIs(token.LPAREN) {
				p.next()
				for !p.curIs(token.RPAREN) {
					vp.Bindings = append(vp.Bindings, p.expect(token.IDENT).Literal)
					if p.curIs(token.COMMA) {
						p.next()
					}
				}
				p.next()
			}
			return vp
		}
	}
	// Falls back to a type pattern (union-typed match) or a literal pattern.
	if typeStartsHere(p.cur.Kind) {
		t := p.parseType()
		binding := ""
		if p.curIs(token.IDENT) {
			binding = p.expect(token.IDENT).Literal
		}
		return &ast.TypePattern{Type: t, Binding: binding, Sp: start}
	}
	v := p.parseExpr(LOWEST)
	return &ast.LiteralPattern{Value: v, Sp: start}
}

func typeStartsHere(k token.Kind) bool {
	switch k {
	case token.AMP, token.STAR, token.LBRACKET, token.FN:
		return true
	}
	return false
}
