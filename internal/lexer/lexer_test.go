package lexer

import (
	"testing"

	"github.com/vexlang/vexc/pkg/token"
)

func TestNextTokenBasics(t *testing.T) {
	input := `fn main(): i32 {
	let x = 42;
	return x;
}
`
	tests := []struct {
		literal string
		kind    token.Kind
	}{
		{"fn", token.FN},
		{"main", token.IDENT},
		{"(", token.LPAREN},
		{")", token.RPAREN},
		{":", token.COLON},
		{"i32", token.IDENT},
		{"{", token.LBRACE},
		{"let", token.LET},
		{"x", token.IDENT},
		{"=", token.ASSIGN},
		{"42", token.INT},
		{";", token.SEMI},
		{"return", token.RETURN},
		{"x", token.IDENT},
		{";", token.SEMI},
		{"}", token.RBRACE},
		{"", token.EOF},
	}

	l := New("main.vx", input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d]: kind wrong. expected=%s, got=%s (literal=%q)", i, tt.kind, tok.Kind, tok.Literal)
		}
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d]: literal wrong. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
	}
}

func TestOperatorsAndCompoundForms(t *testing.T) {
	input := `+= == .. ..= :: -> => ! &&`
	expected := []token.Kind{
		token.PLUS_ASSIGN, token.EQ, token.DOTDOT, token.DOTDOTEQ,
		token.COLONCOLON, token.ARROW, token.FATARROW, token.BANG, token.ANDAND, token.EOF,
	}
	l := New("t.vx", input)
	for i, k := range expected {
		tok := l.NextToken()
		if tok.Kind != k {
			t.Fatalf("tok[%d]: expected %s got %s", i, k, tok.Kind)
		}
	}
}

func TestMutabilityMarkerIsPostfixBang(t *testing.T) {
	l := New("t.vx", `&T! x`)
	tok := l.NextToken()
	if tok.Kind != token.AMP {
		t.Fatalf("expected AMP got %s", tok.Kind)
	}
	tok = l.NextToken()
	if tok.Kind != token.IDENT || tok.Literal != "T" {
		t.Fatalf("expected ident T got %v", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.BANG {
		t.Fatalf("expected BANG got %s", tok.Kind)
	}
}

func TestIntegerSuffix(t *testing.T) {
	l := New("t.vx", `42u64 3.14f32`)
	tok := l.NextToken()
	if tok.Kind != token.INT || tok.Literal != "42" || tok.Suffix != "u64" {
		t.Fatalf("got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.FLOAT || tok.Literal != "3.14" || tok.Suffix != "f32" {
		t.Fatalf("got %+v", tok)
	}
}

func TestInterpolatedStringLiteral(t *testing.T) {
	l := New("t.vx", `f"hi"`)
	tok := l.NextToken()
	if tok.Kind != token.INTERP_STRING || tok.Literal != "hi" {
		t.Fatalf("got %+v", tok)
	}
}

func TestUnterminatedStringProducesLexError(t *testing.T) {
	l := New("t.vx", `"abc`)
	l.NextToken()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(l.Errors()))
	}
}

func TestUnterminatedBlockCommentProducesLexError(t *testing.T) {
	l := New("t.vx", `/* never closed`)
	l.NextToken()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(l.Errors()))
	}
}

func TestContractKeywordSynonym(t *testing.T) {
	if token.Lookup("trait") != token.CONTRACT {
		t.Fatalf("trait must lex as the contract keyword (§9 open question a)")
	}
	if token.Lookup("contract") != token.CONTRACT {
		t.Fatalf("contract must lex as CONTRACT")
	}
}

func TestSpansTrackLineAndColumn(t *testing.T) {
	l := New("t.vx", "let x\n= 1;")
	l.NextToken() // let
	l.NextToken() // x
	eq := l.NextToken()
	if eq.Span.Start.Line != 2 {
		t.Fatalf("expected line 2, got %d", eq.Span.Start.Line)
	}
}

func TestTokenizeHelper(t *testing.T) {
	toks, errs := Tokenize("t.vx", "let x = 1;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("last token should be EOF")
	}
}
