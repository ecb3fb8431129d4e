// Package parser implements C2: a hand-written recursive-descent and
// Pratt (operator-precedence) parser that turns one file's token stream
// into an internal/ast.File. It never resolves names or types (§4.2).
package parser

import (
	"fmt"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/pkg/token"
)

// Precedence levels, low to high, per §6.3. `..`/`..=` bind between
// comparison and `|`.
const (
	_ int = iota
	LOWEST
	LOR      // ||
	LAND     // &&
	EQUALITY // == !=
	COMPARE  // < <= > >=
	RANGE    // .. ..=
	BITOR    // |
	BITXOR   // ^
	BITAND   // &
	SHIFT    // << >>
	SUM      // + -
	PRODUCT  // * / %
	CAST     // as
	UNARY    // ! - * &
	CALLPREC // calls / field / index
)

var precedences = map[token.Kind]int{
	token.OROR: LOR, token.ANDAND: LAND,
	token.EQ: EQUALITY, token.NE: EQUALITY,
	token.LT: COMPARE, token.LE: COMPARE, token.GT: COMPARE, token.GE: COMPARE,
	token.DOTDOT: RANGE, token.DOTDOTEQ: RANGE,
	token.PIPE: BITOR, token.CARET: BITXOR, token.AMP: BITAND,
	token.SHL: SHIFT, token.SHR: SHIFT,
	token.PLUS: SUM, token.MINUS: SUM,
	token.STAR: PRODUCT, token.SLASH: PRODUCT, token.PERCENT: PRODUCT,
	token.AS: CAST,
	token.LPAREN: CALLPREC, token.LBRACKET: CALLPREC, token.DOT: CALLPREC, token.COLONCOLON: CALLPREC,
}

// stopSet is the set of tokens the panic-mode recovery synchronizes to —
// either a statement terminator or the start of the next declaration,
// per §7's "panic-and-recover strategy to stopping punctuation".
var stopSet = map[token.Kind]bool{
	token.SEMI: true, token.RBRACE: true, token.EOF: true,
	token.FN: true, token.STRUCT: true, token.ENUM: true, token.CONTRACT: true,
	token.TYPE: true, token.CONST: true, token.IMPORT: true, token.EXPORT: true,
}

// parseError is the panic payload used for statement-boundary recovery.
type parseError struct{ diag *diag.Diagnostic }

// Parser turns a token stream into an ast.File, collecting every error it
// can isolate rather than stopping at the first one (§7). noStructLit
// suppresses struct-literal parsing while a `match`/`if`/`while`/`for`
// header expression is being read, where a `{` opens the construct's own
// block instead.
type Parser struct {
	file string
	l    *lexer.Lexer
	sink *diag.Sink

	cur  token.Token
	peek token.Token

	noStructLit bool
}

// New creates a Parser reading from l and reporting into sink.
func New(file string, l *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{file: file, l: l, sink: sink}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.fail(diag.ParseMissingDelim, p.cur.Span, fmt.Sprintf("expected %s, found %s", k, p.cur.Kind))
	}
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) fail(code diag.Code, span token.Span, msg string) {
	panic(parseError{diag: &diag.Diagnostic{Severity: diag.Error, Code: code, Message: msg, Primary: span}})
}

// synchronize discards tokens until a stop token is found, implementing
// the parser's panic-mode error recovery (§7). It always consumes at
// least one token so a failure that occurs exactly on a stop token (e.g.
// a stray '}') cannot leave the cursor stuck and the caller's loop
// spinning.
func (p *Parser) synchronize() {
	p.next()
	for !stopSet[p.cur.Kind] {
		p.next()
	}
	if p.cur.Kind == token.SEMI || p.cur.Kind == token.RBRACE {
		p.next()
	}
}

// ParseFile parses an entire file's declarations. It never returns a
// non-nil error; failures are reported into sink and the file's Decls may
// be incomplete.
func ParseFile(path, src string, sink *diag.Sink) *ast.File {
	l := lexer.New(path, src)
	for _, le := range l.Errors() {
		sink.Errorf(diag.LexUnterminatedLiteral, token.Span{File: path, Start: le.Pos, End: le.Pos}, "%s", le.Message)
	}
	p := New(path, l, sink)
	return p.parseFile()
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{Path: p.file}
	for !p.curIs(token.EOF) {
		if p.curIs(token.IMPORT) {
			if imp := p.parseImportSafely(); imp != nil {
				f.Imports = append(f.Imports, imp)
			}
			continue
		}
		if d := p.parseDeclSafely(); d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	return f
}

func (p *Parser) parseImportSafely() (imp *ast.ImportDecl) {
	defer p.recover()
	return p.parseImport()
}

func (p *Parser) parseDeclSafely() (d ast.Decl) {
	defer p.recover()
	return p.parseDecl()
}

// recover turns a panic(parseError) into a recorded diagnostic and a
// synchronized cursor, so the caller's loop can continue past the bad
// declaration/statement instead of aborting the whole file (§7). The
// named return of the deferring function keeps its zero value, which is
// exactly the "incomplete but safe to skip" result the caller expects.
func (p *Parser) recover() {
	if r := recover(); r != nil {
		pe, ok := r.(parseError)
		if !ok {
			panic(r)
		}
		p.sink.Add(pe.diag)
		p.synchronize()
	}
}
