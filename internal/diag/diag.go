// Package diag implements the compiler's structured diagnostic sink: the
// severities, stable error codes, and source-snippet formatting shared by
// every pass (§6.8, §7 of the language core specification).
package diag

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/pkg/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Code is a stable, machine-readable diagnostic identifier, grouped by the
// pass kind that raises it (§7).
type Code string

const (
	// Lexer.
	LexUnterminatedLiteral Code = "lex/unterminated-literal"
	LexBadByte             Code = "lex/bad-byte"
	LexBadEscape           Code = "lex/bad-escape"

	// Parser.
	ParseUnexpectedToken Code = "parse/unexpected-token"
	ParseMissingDelim    Code = "parse/missing-delimiter"

	// Module resolver.
	ImportNotFound   Code = "import/not-found"
	ImportCycleBad   Code = "import/manifest-cycle"
	ReExportNotFound Code = "import/reexport-not-found"

	// Name/type resolver.
	ResolveUnknownName  Code = "resolve/unknown-name"
	ResolvePrivateAccess Code = "resolve/private-access"
	ResolveAmbiguous    Code = "resolve/ambiguous"
	ResolveArityMismatch Code = "resolve/arity-mismatch"

	// Type checker.
	TypeMismatch       Code = "type/mismatch"
	TypeBadCast        Code = "type/bad-cast"
	TypeNotCallable    Code = "type/not-callable"
	TypeWrongArity     Code = "type/wrong-arity"
	InferenceUnresolved Code = "infer/unresolved-literal"
	InferenceAmbiguous  Code = "infer/ambiguous-generic"
	ContractUnsatisfied Code = "contract/unsatisfied-bound"
	ContractMissingMethod Code = "contract/missing-method"
	ContractWrongPolarity Code = "contract/wrong-receiver-polarity"
	OperatorNoOverload  Code = "operator/no-overload"
	OperatorMixedNumeric Code = "operator/mixed-numeric"
	ExhaustivenessGap   Code = "match/non-exhaustive"
	CyclicType          Code = "type/cyclic"

	// Borrow checker.
	ImmutabilityViolation Code = "borrow/immutability"
	MoveUseAfterMove      Code = "borrow/use-after-move"
	AliasingViolation     Code = "borrow/aliasing"
	LifetimeViolation     Code = "borrow/lifetime"

	// Monomorphizer.
	MonomorphizationOverflow Code = "mono/overflow"

	// Intrinsics.
	IntrinsicBadArgs Code = "intrinsic/bad-args"
)

// Label attaches a short message to a secondary span.
type Label struct {
	Span    token.Span
	Message string
}

// Diagnostic is one structured compiler message (§6.8).
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Message    string
	Primary    token.Span
	Secondary  []Label
	Suggestion string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s[%s]: %s at %s", d.Severity, d.Code, d.Message, d.Primary)
}

// Format renders the diagnostic with the offending source line and a caret.
func (d *Diagnostic) Format(source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)
	fmt.Fprintf(&b, "  --> %s\n", d.Primary)

	if line := sourceLine(source, d.Primary.Start.Line); line != "" {
		gutter := fmt.Sprintf("%4d | ", d.Primary.Start.Line)
		fmt.Fprintf(&b, "%s%s\n", gutter, line)
		b.WriteString(strings.Repeat(" ", len(gutter)+d.Primary.Start.Column-1))
		width := d.Primary.End.Column - d.Primary.Start.Column
		if width < 1 {
			width = 1
		}
		b.WriteString(strings.Repeat("^", width))
		b.WriteString("\n")
	}
	for _, l := range d.Secondary {
		fmt.Fprintf(&b, "  note: %s at %s\n", l.Message, l.Span)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&b, "  help: %s\n", d.Suggestion)
	}
	return b.String()
}

func sourceLine(source string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Sink accumulates diagnostics from every pass. A Sink is not safe for
// concurrent writes from multiple goroutines without external locking; the
// driver gives each parallel front-end worker its own Sink and merges them
// (§5: "single-writer-multi-reader locking").
type Sink struct {
	diags []*Diagnostic
}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Add(d *Diagnostic) { s.diags = append(s.diags, d) }

func (s *Sink) Errorf(code Code, span token.Span, format string, args ...any) {
	s.Add(&Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Primary: span})
}

func (s *Sink) Warnf(code Code, span token.Span, format string, args ...any) {
	s.Add(&Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Primary: span})
}

// HasErrors reports whether any accumulated diagnostic has Error severity.
// Only error diagnostics fail compilation (§6.8).
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (s *Sink) All() []*Diagnostic { return s.diags }

// Merge appends another sink's diagnostics, preserving order by the
// caller's merge sequence (the driver merges per-file sinks in a
// deterministic file order, never goroutine completion order, so
// diagnostic output does not depend on scheduling).
func (s *Sink) Merge(other *Sink) {
	s.diags = append(s.diags, other.diags...)
}

// ExitCode implements §6.8: 0 on success, non-zero on any error diagnostic.
func (s *Sink) ExitCode() int {
	if s.HasErrors() {
		return 1
	}
	return 0
}
