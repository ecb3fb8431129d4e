package parser

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/pkg/token"
)

// parseType parses one type-as-written (§4.2 grammar for types): union,
// intersection, conditional, generic application, slice/array/tuple/
// reference forms, and function types.
func (p *Parser) parseType() ast.TypeExpr {
	t := p.parseTypeUnary()

	// conditional: T extends U ? X : Y
	if p.curIs(token.IDENT) && p.cur.Literal == "extends" {
		start := t.Span()
		p.next()
		u := p.parseTypeUnary()
		p.expect(token.QUESTION)
		then := p.parseType()
		p.expect(token.COLON)
		els := p.parseType()
		return &ast.ConditionalType{Checked: t, Extends: u, Then: then, Else: els, Sp: joinSpan(start, els.Span())}
	}

	if p.curIs(token.PIPE) {
		members := []ast.TypeExpr{t}
		for p.curIs(token.PIPE) {
			p.next()
			members = append(members, p.parseTypeUnary())
		}
		return &ast.UnionType{Members: flattenUnion(members), Sp: t.Span()}
	}
	if p.curIs(token.AMP) {
		members := []ast.TypeExpr{t}
		for p.curIs(token.AMP) {
			p.next()
			members = append(members, p.parseTypeUnary())
		}
		return &ast.IntersectionType{Members: members, Sp: t.Span()}
	}
	return t
}

// flattenUnion implements elaboration-time union flattening (§4.5 "Nested
// unions are flattened during elaboration"); done at parse time here
// since the AST has no separate flattening pass.
func flattenUnion(members []ast.TypeExpr) []ast.TypeExpr {
	var out []ast.TypeExpr
	for _, m := range members {
		if u, ok := m.(*ast.UnionType); ok {
			out = append(out, flattenUnion(u.Members)...)
		} else {
			out = append(out, m)
		}
	}
	return out
}

func (p *Parser) parseTypeUnary() ast.TypeExpr {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.AMP:
		p.next()
		// Both spellings of a mutable reference are accepted: the postfix
		// `&T!` and the prefix `&!T`.
		prefixMut := p.consumeBang()
		if p.curIs(token.LBRACKET) {
			p.next()
			elem := p.parseType()
			p.expect(token.RBRACKET)
			mut := prefixMut || p.consumeBang()
			return &ast.SliceType{Elem: elem, Mutable: mut, Sp: start}
		}
		elem := p.parseTypeUnary()
		mut := prefixMut || p.consumeBang()
		return &ast.RefType{Elem: elem, Mutable: mut, Sp: start}
	case token.STAR:
		p.next()
		elem := p.parseTypeUnary()
		mut := p.consumeBang()
		return &ast.RawPtrType{Elem: elem, Mutable: mut, Sp: start}
	case token.LBRACKET:
		p.next()
		elem := p.parseType()
		p.expect(token.SEMI)
		size := p.parseExpr(LOWEST)
		p.expect(token.RBRACKET)
		return &ast.ArrayType{Elem: elem, Size: size, Sp: start}
	case token.LPAREN:
		p.next()
		if p.curIs(token.RPAREN) {
			p.next()
			return &ast.TupleType{Sp: start}
		}
		var elems []ast.TypeExpr
		elems = append(elems, p.parseType())
		for p.curIs(token.COMMA) {
			p.next()
			elems = append(elems, p.parseType())
		}
		end := p.expect(token.RPAREN)
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.TupleType{Elems: elems, Sp: joinSpan(start, end.Span)}
	case token.FN:
		p.next()
		p.expect(token.LPAREN)
		var params []ast.TypeExpr
		for !p.curIs(token.RPAREN) {
			params = append(params, p.parseType())
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		p.expect(token.RPAREN)
		var result ast.TypeExpr
		if p.curIs(token.COLON) {
			p.next()
			result = p.parseType()
		}
		return &ast.FuncType{Params: params, Result: result, Sp: start}
	case token.IDENT:
		if p.cur.Literal == "infer" {
			p.next()
			name := p.expect(token.IDENT)
			return &ast.InferType{Name: name.Literal, Sp: start}
		}
		name := p.expect(token.IDENT)
		nt := &ast.NamedType{Name: name.Literal, Sp: start}
		if p.curIs(token.LT) {
			p.next()
			for !p.curIs(token.GT) {
				nt.Args = append(nt.Args, p.parseType())
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			p.next()
		}
		return nt
	default:
		p.fail(diag.ParseUnexpectedToken, p.cur.Span, "expected a type, found "+p.cur.Kind.String())
		return nil
	}
}

func (p *Parser) consumeBang() bool {
	if p.curIs(token.BANG) {
		p.next()
		return true
	}
	return false
}

func joinSpan(a, b token.Span) token.Span {
	return token.Span{File: a.File, Start: a.Start, End: b.End}
}
