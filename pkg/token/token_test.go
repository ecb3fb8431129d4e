package token

import (
	"testing"
)

func TestPositionString(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		expected string
	}{
		{"simple position", Position{Line: 1, Column: 5}, "1:5"},
		{"larger numbers", Position{Line: 123, Column: 456}, "123:456"},
		{"offset does not render", Position{Line: 10, Column: 20, Offset: 100}, "10:20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.expected {
				t.Errorf("Position.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSpanString(t *testing.T) {
	s := Span{File: "main.vx", Start: Position{Line: 3, Column: 7}}
	if got, want := s.String(), "main.vx:3:7"; got != want {
		t.Errorf("Span.String() = %q, want %q", got, want)
	}
	anon := Span{Start: Position{Line: 3, Column: 7}}
	if got, want := anon.String(), "3:7"; got != want {
		t.Errorf("fileless Span.String() = %q, want %q", got, want)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected string
	}{
		{"keyword", FN, "fn"},
		{"identifier", IDENT, "IDENT"},
		{"compound operator", DOTDOTEQ, "..="},
		{"mutability marker", BANG, "!"},
		{"attribute opener", HASH_LBRACKET, "#["},
		{"unknown kind", Kind(9999), "Kind(9999)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	if !INT.IsLiteral() || INT.IsKeyword() {
		t.Errorf("INT should classify as a literal only")
	}
	if !MATCH.IsKeyword() || MATCH.IsLiteral() {
		t.Errorf("MATCH should classify as a keyword only")
	}
	if PLUS.IsKeyword() || PLUS.IsLiteral() {
		t.Errorf("PLUS should be neither keyword nor literal")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		ident    string
		expected Kind
	}{
		{"fn", FN},
		{"contract", CONTRACT},
		{"trait", CONTRACT}, // accepted synonym, canonicalized
		{"unsafe", UNSAFE},
		{"banana", IDENT},
		{"Fn", IDENT}, // keywords are case-sensitive
	}

	for _, tt := range tests {
		if got := Lookup(tt.ident); got != tt.expected {
			t.Errorf("Lookup(%q) = %v, want %v", tt.ident, got, tt.expected)
		}
	}
}
