package diag

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"

	"github.com/vexlang/vexc/pkg/token"
)

func span(file string, line, startCol, endCol int) token.Span {
	return token.Span{
		File:  file,
		Start: token.Position{Line: line, Column: startCol},
		End:   token.Position{Line: line, Column: endCol},
	}
}

func TestFormatRendersSnippetWithCaret(t *testing.T) {
	src := "fn main(): i32 {\n\tlet x = \"no\";\n\treturn x;\n}\n"
	d := &Diagnostic{
		Severity: Error,
		Code:     TypeMismatch,
		Message:  "cannot assign String to target of type i32",
		Primary:  span("main.vx", 2, 10, 14),
		Secondary: []Label{
			{Span: span("main.vx", 1, 12, 15), Message: "declared result is i32"},
		},
		Suggestion: "change the declared result to String or convert the value",
	}

	snaps.MatchSnapshot(t, d.Format(src))
}

func TestSinkSeverityRules(t *testing.T) {
	s := NewSink()
	s.Warnf(ExhaustivenessGap, span("a.vx", 1, 1, 2), "shadowed arm")
	assert.False(t, s.HasErrors(), "warnings alone must not fail compilation")
	assert.Equal(t, 0, s.ExitCode())

	s.Errorf(TypeMismatch, span("a.vx", 2, 1, 2), "mismatch")
	assert.True(t, s.HasErrors())
	assert.Equal(t, 1, s.ExitCode())
	assert.Len(t, s.All(), 2)
}

func TestMergePreservesCallerOrder(t *testing.T) {
	a, b, combined := NewSink(), NewSink(), NewSink()
	a.Errorf(TypeMismatch, span("a.vx", 1, 1, 2), "first")
	b.Errorf(TypeMismatch, span("b.vx", 1, 1, 2), "second")

	combined.Merge(a)
	combined.Merge(b)

	all := combined.All()
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)
}

func TestFormatOutOfRangeLineOmitsSnippet(t *testing.T) {
	d := &Diagnostic{Severity: Error, Code: ParseUnexpectedToken, Message: "unexpected token", Primary: span("x.vx", 99, 1, 2)}
	out := d.Format("one line only\n")
	assert.NotContains(t, out, "|")
}
