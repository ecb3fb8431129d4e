package parser

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/pkg/token"
)

// parseImport handles every form in §6.4 / §4.3:
//
//	import "<path>"
//	import * as <ident> from "<path>"
//	import { <names> } from "<path>"
func (p *Parser) parseImport() *ast.ImportDecl {
	start := p.expect(token.IMPORT).Span

	if p.curIs(token.STRING) {
		path := p.cur.Literal
		end := p.cur.Span
		p.next()
		p.expect(token.SEMI)
		return &ast.ImportDecl{Path: path, Sp: joinSpan(start, end)}
	}

	if p.curIs(token.STAR) {
		p.next()
		p.expect(token.AS)
		alias := p.expect(token.IDENT).Literal
		p.expectIdentLiteral("from")
		path := p.expect(token.STRING).Literal
		end := p.expect(token.SEMI).Span
		return &ast.ImportDecl{Path: path, StarAlias: alias, Sp: joinSpan(start, end)}
	}

	if p.curIs(token.LBRACE) {
		p.next()
		names := map[string]string{}
		for !p.curIs(token.RBRACE) {
			name := p.expect(token.IDENT).Literal
			alias := name
			if p.curIs(token.AS) {
				p.next()
				alias = p.expect(token.IDENT).Literal
			}
			names[name] = alias
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		p.expect(token.RBRACE)
		p.expectIdentLiteral("from")
		path := p.expect(token.STRING).Literal
		end := p.expect(token.SEMI).Span
		return &ast.ImportDecl{Path: path, Names: names, Sp: joinSpan(start, end)}
	}

	p.fail(diag.ParseUnexpectedToken, p.cur.Span, "malformed import directive")
	return nil
}

func (p *Parser) expectIdentLiteral(lit string) {
	if p.cur.Kind != token.IDENT || p.cur.Literal != lit {
		p.fail(diag.ParseMissingDelim, p.cur.Span, "expected '"+lit+"'")
	}
	p.next()
}

func (p *Parser) parseDecl() ast.Decl {
	exported := false
	if p.curIs(token.EXPORT) {
		exported = true
		p.next()
	}
	switch p.cur.Kind {
	case token.FN:
		return p.parseFunctionOrExternalMethod(exported)
	case token.ASYNC:
		p.next()
		if !p.curIs(token.FN) {
			p.fail(diag.ParseUnexpectedToken, p.cur.Span, "'async' must be followed by 'fn'")
		}
		d := p.parseFunctionOrExternalMethod(exported)
		switch fn := d.(type) {
		case *ast.FunctionDecl:
			fn.Async = true
		case *ast.MethodDecl:
			fn.Async = true
		}
		return d
	case token.STRUCT:
		return p.parseStruct(exported)
	case token.ENUM:
		return p.parseEnum(exported)
	case token.CONTRACT:
		return p.parseContract(exported)
	case token.TYPE:
		return p.parseTypeAlias(exported)
	case token.CONST:
		return p.parseConst(exported)
	case token.EXTERN:
		return p.parseExternFunction(exported)
	case token.IDENT:
		if p.cur.Literal == "policy" {
			return p.parsePolicy()
		}
	}
	p.fail(diag.ParseUnexpectedToken, p.cur.Span, "expected a declaration, found "+p.cur.Kind.String())
	return nil
}

func (p *Parser) parseTypeParams() []*ast.TypeParam {
	if !p.curIs(token.LT) {
		return nil
	}
	p.next()
	var tps []*ast.TypeParam
	for !p.curIs(token.GT) {
		start := p.cur.Span
		name := p.expect(token.IDENT).Literal
		tp := &ast.TypeParam{Name: name, Sp: start}
		if p.curIs(token.COLON) {
			p.next()
			tp.Bounds = append(tp.Bounds, p.parseType())
		}
		tps = append(tps, tp)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.next()
	return tps
}

// parseParams implements §4.2's parameter grammar: grouping
// `(a, b, c: T)`, default values `(a: T = expr)`, and a single trailing
// variadic `xs: ...T`.
func (p *Parser) parseParams() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for !p.curIs(token.RPAREN) {
		var names []string
		var spans []token.Span
		for {
			spans = append(spans, p.cur.Span)
			names = append(names, p.expect(token.IDENT).Literal)
			if p.curIs(token.COMMA) && p.peekNameBeforeColon() {
				p.next()
				continue
			}
			break
		}
		variadic := false
		if p.curIs(token.COLON) {
			p.next()
		}
		typ := p.parseVariadicOrType(&variadic)
		for i, n := range names {
			param := &ast.Param{Name: n, Type: typ, Variadic: variadic && i == len(names)-1, Sp: spans[i]}
			if i == len(names)-1 && p.curIs(token.ASSIGN) {
				p.next()
				param.Default = p.parseExpr(LOWEST)
			}
			params = append(params, param)
		}
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parseVariadicOrType parses the type of a parameter, recognizing the
// `...T` variadic marker (lexed as a DOTDOT token then a DOT token,
// followed by a type) and setting *variadic accordingly.
func (p *Parser) parseVariadicOrType(variadic *bool) ast.TypeExpr {
	if p.curIs(token.DOTDOT) && p.peekIs(token.DOT) {
		p.next()
		p.next()
		*variadic = true
		return p.parseType()
	}
	return p.parseType()
}

// peekNameBeforeColon looks ahead past a comma to see whether another bare
// name (not yet typed) follows, implementing `(a, b, c: T)` grouping: a
// comma continues the group whenever the token after it is an identifier;
// what follows that identifier is not inspected.
func (p *Parser) peekNameBeforeColon() bool {
	return p.peekIs(token.IDENT)
}

func (p *Parser) parseFunctionOrExternalMethod(exported bool) ast.Decl {
	start := p.expect(token.FN).Span

	// Go-style external method: fn (r: &T!) name(...) — a bare function
	// declaration always starts with its name, never with '(', so seeing
	// LPAREN here unambiguously means a receiver clause (§4.2).
	if p.curIs(token.LPAREN) {
		p.next()
		recvName := p.expect(token.IDENT).Literal
		p.expect(token.COLON)
		recvType := p.parseType()
		p.expect(token.RPAREN)
		name := p.expect(token.IDENT).Literal
		params := p.parseParams()
		result := p.parseOptionalResult()
		body := p.parseBlock()
		mutable := false
		if rt, ok := recvType.(*ast.RefType); ok {
			mutable = rt.Mutable
		}
		return &ast.MethodDecl{
			Receiver: &ast.Param{Name: recvName, Type: recvType, Sp: start}, ReceiverMutable: mutable,
			Name: name, Exported: exported, Params: params, Result: result, Body: body, External: true,
			Sp: start,
		}
	}

	name := p.expect(token.IDENT).Literal
	typeParams := p.parseTypeParams()
	params := p.parseParams()
	mutable := p.consumeBang() // inline mutable method marker after the parameter list (§4.2)
	result := p.parseOptionalResult()
	body := p.parseBlock()
	if mutable {
		return &ast.MethodDecl{Name: name, Exported: exported, TypeParams: typeParams, Params: params, Result: result, Body: body, ReceiverMutable: true, Sp: start}
	}
	return &ast.FunctionDecl{Name: name, Exported: exported, TypeParams: typeParams, Params: params, Result: result, Body: body, Sp: start}
}

func (p *Parser) parseOptionalResult() ast.TypeExpr {
	if p.curIs(token.COLON) {
		p.next()
		return p.parseType()
	}
	return nil
}

func (p *Parser) parseStruct(exported bool) ast.Decl {
	start := p.expect(token.STRUCT).Span
	name := p.expect(token.IDENT).Literal
	typeParams := p.parseTypeParams()
	var impls []string
	if p.curIs(token.IMPL) {
		p.next()
		impls = append(impls, p.expect(token.IDENT).Literal)
		for p.curIs(token.AMP) {
			p.next()
			impls = append(impls, p.expect(token.IDENT).Literal)
		}
	}
	p.expect(token.LBRACE)
	d := &ast.StructDecl{Name: name, Exported: exported, TypeParams: typeParams, Impls: impls, Sp: start}
	for !p.curIs(token.RBRACE) {
		if p.curIs(token.FN) {
			d.Methods = append(d.Methods, p.parseInlineMethod())
			continue
		}
		fExported := false
		if p.curIs(token.EXPORT) {
			fExported = true
			p.next()
		}
		fname := p.expect(token.IDENT).Literal
		p.expect(token.COLON)
		ftyp := p.parseType()
		if p.curIs(token.COMMA) {
			p.next()
		} else if !p.curIs(token.RBRACE) {
			p.fail(diag.ParseMissingDelim, p.cur.Span, "expected ',' or '}' after struct field")
		}
		d.Fields = append(d.Fields, &ast.FieldDecl{Name: fname, Exported: fExported, Type: ftyp})
	}
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseInlineMethod() *ast.MethodDecl {
	start := p.expect(token.FN).Span
	name := p.expect(token.IDENT).Literal
	typeParams := p.parseTypeParams()
	params := p.parseParams()
	mutable := p.consumeBang()
	result := p.parseOptionalResult()
	body := p.parseBlock()
	return &ast.MethodDecl{Name: name, TypeParams: typeParams, Params: params, Result: result, Body: body, ReceiverMutable: mutable, Sp: start}
}

func (p *Parser) parseEnum(exported bool) ast.Decl {
	start := p.expect(token.ENUM).Span
	name := p.expect(token.IDENT).Literal
	typeParams := p.parseTypeParams()
	p.expect(token.LBRACE)
	d := &ast.EnumDecl{Name: name, Exported: exported, TypeParams: typeParams, Sp: start}
	for !p.curIs(token.RBRACE) {
		vStart := p.cur.Span
		vname := p.expect(token.IDENT).Literal
		v := &ast.EnumVariant{Name: vname, Sp: vStart}
		if p.curIs(token.LPAREN) {
			p.next()
			for !p.curIs(token.RPAREN) {
				v.Payload = append(v.Payload, p.parseType())
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			p.next()
		}
		d.Variants = append(d.Variants, v)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseContract(exported bool) ast.Decl {
	start := p.expect(token.CONTRACT).Span
	name := p.expect(token.IDENT).Literal
	p.expect(token.LBRACE)
	d := &ast.ContractDecl{Name: name, Exported: exported, Sp: start}
	for !p.curIs(token.RBRACE) {
		mStart := p.expect(token.FN).Span
		mname := p.expect(token.IDENT).Literal
		params := p.parseParams()
		mutable := p.consumeBang() // receiver polarity: `!` marks a &Self! method (§3.5)
		result := p.parseOptionalResult()
		p.expect(token.SEMI)
		d.Methods = append(d.Methods, &ast.ContractMethodSig{Name: mname, ReceiverMutable: mutable, Params: params, Result: result, Sp: mStart})
	}
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseTypeAlias(exported bool) ast.Decl {
	start := p.expect(token.TYPE).Span
	name := p.expect(token.IDENT).Literal
	typeParams := p.parseTypeParams()
	p.expect(token.ASSIGN)
	underlying := p.parseType()
	p.expect(token.SEMI)
	return &ast.TypeAliasDecl{Name: name, Exported: exported, TypeParams: typeParams, Underlying: underlying, Sp: start}
}

func (p *Parser) parseConst(exported bool) ast.Decl {
	start := p.expect(token.CONST).Span
	name := p.expect(token.IDENT).Literal
	var typ ast.TypeExpr
	if p.curIs(token.COLON) {
		p.next()
		typ = p.parseType()
	}
	p.expect(token.ASSIGN)
	val := p.parseExpr(LOWEST)
	p.expect(token.SEMI)
	return &ast.ConstDecl{Name: name, Exported: exported, Type: typ, Value: val, Sp: start}
}

func (p *Parser) parsePolicy() ast.Decl {
	start := p.cur.Span
	p.next() // the literal "policy" keyword-like identifier
	pname := p.expect(token.IDENT).Literal
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
	p.expect(token.SEMI)
	return &ast.PolicyDecl{Name: pname, Args: args, Sp: start}
}

func (p *Parser) parseExternFunction(exported bool) ast.Decl {
	start := p.expect(token.EXTERN).Span
	p.expect(token.FN)
	name := p.expect(token.IDENT).Literal
	params := p.parseParams()
	result := p.parseOptionalResult()
	p.expect(token.SEMI)
	return &ast.ExternFunctionDecl{Name: name, Exported: exported, Params: params, Result: result, Sp: start}
}
