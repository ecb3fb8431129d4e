package printer_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/pkg/printer"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	sink := diag.NewSink()
	f := parser.ParseFile("test.vx", src, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())
	return f
}

// Formatting is a fixpoint: format(parse(format(parse(src)))) equals
// format(parse(src)), and the formatted text always re-parses cleanly.
func TestFormatRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"function", `fn add(a: i32, b: i32): i32 { return a + b; }
`},
		{"generic function", `fn id<T>(x: T): T { return x; }
`},
		{"bounded generic", `fn largest<T: Comparable>(xs: &[T]): T { return xs[0]; }
`},
		{"struct with impl and method", `struct Point impl Describable {
	x: i32,
	y: i32,
	fn describe(): i32 { return self.x; }
	fn shift(dx: i32)!: i32 { self.x += dx; return self.x; }
}
`},
		{"external method", `fn (p: &Point!) translate(dx: i32): i32 { p.x = p.x + dx; return p.x; }
`},
		{"enum and match", `enum Shape { Circle(i32), Rect(i32, i32) }
fn area(s: Shape): i32 {
	return match s { Shape::Circle(r) => r * r, Shape::Rect(w, h) => w * h, };
}
`},
		{"contract", `contract Counter {
	fn value(): i32;
	fn bump(n: i32)!: i32;
}
`},
		{"imports", `import "./util";
import * as fmt from "std/fmt";
import { helper, join as cat } from "./strings";
fn main(): i32 { return 0; }
`},
		{"control flow", `fn f(n: i32): i32 {
	let! total = 0;
	for i in 0..n { total += i; }
	while total > 100 { total -= 10; }
	loop { break; }
	return total;
}
`},
		{"struct literal and cast", `struct P { x: i32, y: i32 }
fn main(): i32 { let a = P { x: 1, y: 2 }; return a.x as i32; }
`},
		{"defer and references", `extern fn release(h: i32): ();
fn g(): i32 {
	let! x = 0;
	defer release(0);
	let r = &x;
	return *r;
}
`},
		{"async await", `async fn fetch(): i32 { return 1; }
async fn work(): i32 { let v = await fetch(); return v; }
`},
		{"const and alias", `const LIMIT: i32 = 64;
type Pair = (i32, i32);
type Id<T> = T;
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := printer.Format(parse(t, tc.src))
			second := printer.Format(parse(t, first))
			assert.Equal(t, first, second, "format is not a fixpoint:\n%s", first)
		})
	}
}

func TestFormatCanonicalOutput(t *testing.T) {
	src := `import "./util";

struct Point impl Describable { x: i32, y: i32,
	fn describe(): i32 { return self.x; } }

enum IpAddr { V4(u8,u8,u8,u8), V6(String) }

fn main(): i32 {
  let a = IpAddr.V4(127,0,0,1);
  match a {
    IpAddr.V4(_,_,_,d) => { return d as i32; },
    IpAddr.V6(_) => { return 0; },
  }
}
`
	snaps.MatchSnapshot(t, printer.Format(parse(t, src)))
}

func TestFormatNormalizesDotVariantPatterns(t *testing.T) {
	src := `enum E { A(i32), B }
fn f(e: E): i32 {
	return match e { E.A(n) => n, E.B => 0, };
}
`
	out := printer.Format(parse(t, src))
	assert.Contains(t, out, "E::A(n)", "dot-form patterns print in canonical :: form")
}
