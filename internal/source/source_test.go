package source

import "testing"

func TestProgramAddIsIdempotentOnCycles(t *testing.T) {
	p := NewProgram("main")
	first := &Module{Name: "a"}
	second := &Module{Name: "a-but-different"}

	p.Add("a", first)
	p.Add("a", second) // simulates re-discovering "a" via a cycle

	got, ok := p.Get("a")
	if !ok || got != first {
		t.Fatalf("Add should keep the first registration; got %+v", got)
	}
}

func TestProgramOrderIsDeterministic(t *testing.T) {
	p := NewProgram("main")
	p.Add("c", &Module{Name: "c"})
	p.Add("a", &Module{Name: "a"})
	p.Add("b", &Module{Name: "b"})

	order := p.Order()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("Order() = %v, want %v", order, want)
		}
	}
}

func TestProgramHas(t *testing.T) {
	p := NewProgram("main")
	if p.Has("x") {
		t.Fatalf("empty program should not have 'x'")
	}
	p.Add("x", &Module{Name: "x"})
	if !p.Has("x") {
		t.Fatalf("program should have 'x' after Add")
	}
}
